package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/garikaib/rates-scrapper/internal/domain"

	"go.uber.org/zap"
)

// FeedInput is an operator back-entry for one date, typically keyed in from
// a published image when the scrape missed a day. Gold prices are optional;
// the digital-token pair must be given together or not at all.
type FeedInput struct {
	Date     string
	Bid      float64
	Ask      float64
	Mid      float64
	GoldUSD  *float64
	GoldZWG  *float64
	GoldZAR  *float64
	GoldGBP  *float64
	GoldEUR  *float64
	TokenUSD *float64
	TokenZWG *float64
}

// Feed persists a manual quotation, synchronizes it remotely and invalidates
// cache entries for the fed date. Unlike a scheduled run it neither consults
// the business-day gate nor notifies.
func (c *Controller) Feed(ctx context.Context, in FeedInput) (SyncResult, error) {
	day, err := domain.ParseDay(in.Date)
	if err != nil {
		return SyncResult{}, fmt.Errorf("parse feed date %q: %w", in.Date, err)
	}
	if in.Bid <= 0 || in.Ask <= 0 || in.Mid <= 0 {
		return SyncResult{}, errors.New("feed requires positive bid, ask and mid")
	}
	if (in.TokenUSD == nil) != (in.TokenZWG == nil) {
		return SyncResult{}, errors.New("digital token prices must be fed as a pair")
	}

	exchange := domain.ExchangeQuotation{
		RateDate: day,
		Pair:     domain.PairUSDZWG,
		Bid:      in.Bid,
		Ask:      in.Ask,
		Mid:      in.Mid,
		Source:   domain.SourceManual,
	}
	if err := c.store.UpsertExchange(ctx, exchange); err != nil {
		return SyncResult{}, fmt.Errorf("persist exchange quotation: %w", err)
	}

	var gold *domain.GoldQuotation
	candidate := domain.GoldQuotation{
		RateDate:        day,
		USD:             in.GoldUSD,
		ZWG:             in.GoldZWG,
		ZAR:             in.GoldZAR,
		GBP:             in.GoldGBP,
		EUR:             in.GoldEUR,
		DigitalTokenUSD: in.TokenUSD,
		DigitalTokenZWG: in.TokenZWG,
		Source:          domain.SourceManual,
	}
	if !candidate.Empty() {
		if err := c.store.UpsertGold(ctx, candidate); err != nil {
			return SyncResult{}, fmt.Errorf("persist gold quotation: %w", err)
		}
		gold = &candidate
	}
	c.log.Info("feed.persisted",
		zap.String("date", domain.FormatDay(day)),
		zap.Bool("gold", gold != nil))

	session, release, err := c.dialer.Dial(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("dial remote store: %w", err)
	}
	defer release()

	res, err := c.sync.Sync(ctx, session, exchange, gold)
	if err != nil {
		return SyncResult{}, err
	}
	if res.Inserted {
		if _, err := c.invalidator.InvalidateForDate(ctx, day); err != nil {
			c.log.Warn("feed.invalidate_failed", zap.Error(err))
		}
	}
	return res, nil
}
