package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
)

type QuoteRepo struct{ db *DB }

func NewQuoteRepo(db *DB) *QuoteRepo { return &QuoteRepo{db: db} }

func (r *QuoteRepo) HasExchange(ctx context.Context, day time.Time) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM exchange_rates WHERE rate_date=?`, domain.FormatDay(day))
}

func (r *QuoteRepo) HasGold(ctx context.Context, day time.Time) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM gold_rates WHERE rate_date=?`, domain.FormatDay(day))
}

func (r *QuoteRepo) exists(ctx context.Context, q, day string) (bool, error) {
	var one int
	err := r.db.SQL.QueryRowContext(ctx, q, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *QuoteRepo) UpsertExchange(ctx context.Context, q domain.ExchangeQuotation) error {
	const up = `
        INSERT INTO exchange_rates(rate_date, currency_pair, bid, ask, mid, source, scraped_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(rate_date) DO UPDATE SET
          currency_pair=excluded.currency_pair,
          bid=excluded.bid, ask=excluded.ask, mid=excluded.mid,
          source=excluded.source, scraped_at=excluded.scraped_at`
	_, err := r.db.SQL.ExecContext(ctx, up,
		domain.FormatDay(q.RateDate), string(q.Pair), q.Bid, q.Ask, q.Mid,
		string(q.Source), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *QuoteRepo) GetExchange(ctx context.Context, day time.Time) (domain.ExchangeQuotation, error) {
	const q = `
        SELECT rate_date, currency_pair, bid, ask, mid, source
        FROM exchange_rates WHERE rate_date=?`
	var out domain.ExchangeQuotation
	var rateDate, pair, source string
	err := r.db.SQL.QueryRowContext(ctx, q, domain.FormatDay(day)).
		Scan(&rateDate, &pair, &out.Bid, &out.Ask, &out.Mid, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExchangeQuotation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ExchangeQuotation{}, err
	}
	out.RateDate, err = domain.ParseDay(rateDate)
	if err != nil {
		return domain.ExchangeQuotation{}, err
	}
	out.Pair = domain.CurrencyPair(pair)
	out.Source = domain.Source(source)
	return out, nil
}

func (r *QuoteRepo) UpsertGold(ctx context.Context, q domain.GoldQuotation) error {
	const up = `
        INSERT INTO gold_rates(rate_date, usd, zwg, zar, gbp, eur, bwp, aud, pm_fix,
                               digital_token_usd, digital_token_zwg, source, source_url, scraped_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(rate_date) DO UPDATE SET
          usd=excluded.usd, zwg=excluded.zwg, zar=excluded.zar,
          gbp=excluded.gbp, eur=excluded.eur, bwp=excluded.bwp,
          aud=excluded.aud, pm_fix=excluded.pm_fix,
          digital_token_usd=excluded.digital_token_usd,
          digital_token_zwg=excluded.digital_token_zwg,
          source=excluded.source, source_url=excluded.source_url,
          scraped_at=excluded.scraped_at`
	_, err := r.db.SQL.ExecContext(ctx, up,
		domain.FormatDay(q.RateDate),
		q.USD, q.ZWG, q.ZAR, q.GBP, q.EUR, q.BWP, q.AUD, q.PMFix,
		q.DigitalTokenUSD, q.DigitalTokenZWG,
		string(q.Source), q.SourceURL, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *QuoteRepo) GetGold(ctx context.Context, day time.Time) (domain.GoldQuotation, error) {
	const q = `
        SELECT rate_date, usd, zwg, zar, gbp, eur, bwp, aud, pm_fix,
               digital_token_usd, digital_token_zwg, source, source_url
        FROM gold_rates WHERE rate_date=?`
	var out domain.GoldQuotation
	var rateDate, source string
	var sourceURL sql.NullString
	err := r.db.SQL.QueryRowContext(ctx, q, domain.FormatDay(day)).
		Scan(&rateDate, &out.USD, &out.ZWG, &out.ZAR, &out.GBP, &out.EUR,
			&out.BWP, &out.AUD, &out.PMFix,
			&out.DigitalTokenUSD, &out.DigitalTokenZWG, &source, &sourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.GoldQuotation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.GoldQuotation{}, err
	}
	out.RateDate, err = domain.ParseDay(rateDate)
	if err != nil {
		return domain.GoldQuotation{}, err
	}
	out.Source = domain.Source(source)
	out.SourceURL = sourceURL.String
	return out, nil
}
