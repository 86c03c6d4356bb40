package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SyncResult reports what one synchronization attempt did.
type SyncResult struct {
	Inserted   bool
	SnapshotID string
	AsOf       time.Time
}

// Synchronizer projects a captured quotation into the shared snapshot
// collection. The collection has other producers, so a new snapshot starts
// as a field-for-field copy of the current one and only the fields this
// pipeline owns are overwritten; documents are inserted, never updated.
type Synchronizer struct {
	log *zap.Logger
}

func NewSynchronizer(log *zap.Logger) *Synchronizer {
	return &Synchronizer{log: log}
}

// Sync inserts a snapshot for the exchange quotation's rate date. If the
// current snapshot already carries that date the call is an idempotent
// no-op. Gold ratios are derived only when the gold quotation's date matches
// the exchange date; otherwise the carried-forward prior values stand.
func (s *Synchronizer) Sync(ctx context.Context, session SnapshotSession, exchange domain.ExchangeQuotation, gold *domain.GoldQuotation) (SyncResult, error) {
	day := domain.Day(exchange.RateDate)
	log := s.log.With(zap.String("date", domain.FormatDay(day)))

	current, err := session.Current(ctx)
	haveCurrent := true
	if errors.Is(err, domain.ErrNoSnapshot) {
		haveCurrent = false
	} else if err != nil {
		return SyncResult{}, fmt.Errorf("read current snapshot: %w", err)
	}

	if haveCurrent && domain.SameDay(current.AsOf, day) {
		log.Info("sync.skipped_already_current")
		return SyncResult{Inserted: false, AsOf: day}, nil
	}

	fields := domain.SnapshotFields{}
	if haveCurrent {
		fields = current.Fields.Clone()
	}
	fields[domain.FieldDate] = day
	fields[domain.FieldBid] = exchange.Bid
	fields[domain.FieldAsk] = exchange.Ask
	fields[domain.FieldMid] = exchange.Mid

	if gold != nil {
		if domain.SameDay(gold.RateDate, day) {
			if r, ok := ratio(gold.ZWG, gold.USD); ok {
				fields[domain.FieldGold] = r
			} else {
				log.Info("sync.gold_ratio_unavailable")
			}
			if r, ok := ratio(gold.DigitalTokenZWG, gold.DigitalTokenUSD); ok {
				fields[domain.FieldEGold] = r
			} else {
				log.Info("sync.token_ratio_unavailable")
			}
		} else {
			log.Info("sync.gold_date_mismatch",
				zap.String("gold_date", domain.FormatDay(gold.RateDate)))
		}
	}

	id, err := session.Insert(ctx, fields)
	if err != nil {
		return SyncResult{}, fmt.Errorf("insert snapshot: %w", err)
	}
	log.Info("sync.inserted", zap.String("snapshot_id", id))
	return SyncResult{Inserted: true, SnapshotID: id, AsOf: day}, nil
}

// ratio is num/den rounded to 4 decimal places, computed only when both
// inputs are present and the denominator is strictly positive.
func ratio(num, den *float64) (float64, bool) {
	if num == nil || den == nil || *den <= 0 {
		return 0, false
	}
	r, _ := decimal.NewFromFloat(*num).Div(decimal.NewFromFloat(*den)).Round(4).Float64()
	return r, true
}
