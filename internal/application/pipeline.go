package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"

	"go.uber.org/zap"
)

// Controller sequences one pipeline invocation: gate, extract, persist,
// synchronize, invalidate, audit. Extraction and synchronization failures
// degrade the run; only a local store failure aborts it.
type Controller struct {
	gate        *BusinessDayGate
	extractor   SourceExtractor
	store       QuotationStore
	runs        RunLog
	dialer      SnapshotDialer
	sync        *Synchronizer
	invalidator CacheInvalidator
	notifier    Notifier
	log         *zap.Logger

	clock Clock
	loc   *time.Location
}

type Option func(*Controller)

func WithClock(c Clock) Option { return func(p *Controller) { p.clock = c } }
func WithLocation(l *time.Location) Option { return func(p *Controller) { p.loc = l } }

func NewController(gate *BusinessDayGate, extractor SourceExtractor, store QuotationStore, runs RunLog,
	dialer SnapshotDialer, sync *Synchronizer, invalidator CacheInvalidator, notifier Notifier,
	log *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		gate:        gate,
		extractor:   extractor,
		store:       store,
		runs:        runs,
		dialer:      dialer,
		sync:        sync,
		invalidator: invalidator,
		notifier:    notifier,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = realClock{}
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	return c
}

// Run executes one invocation for the current date. force bypasses the
// already-captured check. Exactly one run record is appended on every
// terminal state.
func (c *Controller) Run(ctx context.Context, force bool) (domain.RunRecord, error) {
	now := c.clock.Now().In(c.loc)
	today := domain.Day(now)
	log := c.log.With(zap.String("run_date", domain.FormatDay(today)))
	log.Info("run.start", zap.Bool("force", force))

	rec := domain.RunRecord{RunDate: today, RunTime: now}
	var notes []string

	if !c.gate.IsBusinessDay(ctx, today) {
		log.Info("run.skipped_non_business_day")
		rec.Status = domain.RunSkippedNonBusinessDay
		return c.finish(ctx, rec, notes)
	}

	if !force {
		haveExchange, err := c.store.HasExchange(ctx, today)
		if err != nil {
			return rec, fmt.Errorf("check exchange capture: %w", err)
		}
		haveGold, err := c.store.HasGold(ctx, today)
		if err != nil {
			return rec, fmt.Errorf("check gold capture: %w", err)
		}
		if haveExchange && haveGold {
			log.Info("run.skipped_already_captured")
			rec.Status = domain.RunSkippedAlreadyCaptured
			return c.finish(ctx, rec, notes)
		}
	}

	exchange, gold := c.extract(ctx, today, &notes)

	if exchange != nil {
		if err := c.store.UpsertExchange(ctx, *exchange); err != nil {
			return rec, fmt.Errorf("persist exchange quotation: %w", err)
		}
		rec.ExchangeCaptured = true
		rec.ExchangeSource = exchange.Source
	}
	if gold != nil {
		if err := c.store.UpsertGold(ctx, *gold); err != nil {
			return rec, fmt.Errorf("persist gold quotation: %w", err)
		}
		rec.GoldCaptured = true
		rec.GoldSource = gold.Source
	}

	if exchange != nil {
		c.syncAndPropagate(ctx, today, *exchange, gold, &notes)
	} else {
		notes = append(notes, "no exchange quotation, sync skipped")
	}

	rec.Status = domain.RunDone
	return c.finish(ctx, rec, notes)
}

// extract runs the primary page extraction and, when it yields no usable
// gold quotation, the document fallback. Missing rate dates default to the
// run date.
func (c *Controller) extract(ctx context.Context, today time.Time, notes *[]string) (*domain.ExchangeQuotation, *domain.GoldQuotation) {
	exchange, gold, err := c.extractor.ExtractWeb(ctx)
	if err != nil {
		c.log.Warn("run.web_extraction_failed", zap.Error(err))
		*notes = append(*notes, fmt.Sprintf("web extraction failed: %v", err))
	}
	if exchange != nil && exchange.RateDate.IsZero() {
		exchange.RateDate = today
	}
	if gold != nil && gold.Empty() {
		gold = nil
	}
	if gold == nil {
		fallback, err := c.extractor.ExtractGoldDocument(ctx, today)
		if err != nil {
			c.log.Warn("run.document_fallback_failed", zap.Error(err))
			*notes = append(*notes, fmt.Sprintf("document fallback failed: %v", err))
		}
		gold = fallback
	}
	if gold != nil && gold.RateDate.IsZero() {
		gold.RateDate = today
	}
	return exchange, gold
}

// syncAndPropagate dials the remote store for the duration of the sync step.
// Notification and cache invalidation run only when a snapshot was actually
// inserted; both are best effort.
func (c *Controller) syncAndPropagate(ctx context.Context, today time.Time, exchange domain.ExchangeQuotation, gold *domain.GoldQuotation, notes *[]string) {
	session, release, err := c.dialer.Dial(ctx)
	if err != nil {
		c.log.Warn("run.remote_unreachable", zap.Error(err))
		*notes = append(*notes, fmt.Sprintf("remote unreachable: %v", err))
		return
	}
	defer release()

	res, err := c.sync.Sync(ctx, session, exchange, gold)
	if err != nil {
		c.log.Warn("run.sync_failed", zap.Error(err))
		*notes = append(*notes, fmt.Sprintf("sync failed: %v", err))
		return
	}
	if !res.Inserted {
		*notes = append(*notes, "sync skipped, snapshot already current")
		return
	}

	if err := c.notifier.Notify(ctx, exchange, gold); err != nil {
		c.log.Warn("run.notify_failed", zap.Error(err))
		*notes = append(*notes, fmt.Sprintf("notify failed: %v", err))
	}
	count, err := c.invalidator.InvalidateForDate(ctx, today)
	if err != nil {
		c.log.Warn("run.invalidate_failed", zap.Error(err))
		*notes = append(*notes, fmt.Sprintf("invalidate failed: %v", err))
		return
	}
	c.log.Info("run.cache_invalidated", zap.Int("keys", count))
}

// finish appends the run record and is the single exit point for terminal
// states.
func (c *Controller) finish(ctx context.Context, rec domain.RunRecord, notes []string) (domain.RunRecord, error) {
	rec.Notes = strings.Join(notes, "; ")
	id, err := c.runs.Append(ctx, rec)
	if err != nil {
		return rec, fmt.Errorf("append run record: %w", err)
	}
	rec.ID = id
	c.log.Info("run.finished",
		zap.String("run_id", id),
		zap.String("status", string(rec.Status)),
		zap.Bool("exchange_captured", rec.ExchangeCaptured),
		zap.Bool("gold_captured", rec.GoldCaptured))
	return rec, nil
}
