package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pipelineFixture struct {
	oracle      *fakeOracle
	extractor   *fakeExtractor
	store       *fakeStore
	runs        *fakeRunLog
	session     *fakeSession
	dialer      *fakeDialer
	invalidator *fakeInvalidator
	notifier    *fakeNotifier
}

func newPipelineFixture() *pipelineFixture {
	session := &fakeSession{}
	return &pipelineFixture{
		oracle:      &fakeOracle{},
		extractor:   &fakeExtractor{},
		store:       newFakeStore(),
		runs:        &fakeRunLog{},
		session:     session,
		dialer:      &fakeDialer{session: session},
		invalidator: &fakeInvalidator{},
		notifier:    &fakeNotifier{},
	}
}

func (f *pipelineFixture) controller(t *testing.T, at time.Time) *Controller {
	t.Helper()
	log := zap.NewNop()
	return NewController(
		NewBusinessDayGate(f.oracle, log),
		f.extractor,
		f.store,
		f.runs,
		f.dialer,
		NewSynchronizer(log),
		f.invalidator,
		f.notifier,
		log,
		WithClock(fakeClock{t: at}),
	)
}

func webQuotes(t *testing.T, day string) (*domain.ExchangeQuotation, *domain.GoldQuotation) {
	t.Helper()
	d, err := domain.ParseDay(day)
	require.NoError(t, err)
	exchange := &domain.ExchangeQuotation{
		RateDate: d,
		Pair:     domain.PairUSDZWG,
		Bid:      25.3605,
		Ask:      26.6611,
		Mid:      26.0108,
		Source:   domain.SourceWebpage,
	}
	gold := &domain.GoldQuotation{
		RateDate: d,
		USD:      domain.Float(4671.87),
		ZWG:      domain.Float(121519.17),
		Source:   domain.SourceWebpage,
	}
	return exchange, gold
}

func Test_Run_WeekendSkipsWithoutExtraction(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	c := f.controller(t, time.Date(2025, 12, 13, 8, 15, 0, 0, time.UTC)) // Saturday

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunSkippedNonBusinessDay, rec.Status)
	require.Zero(t, f.extractor.webCalls)
	require.Len(t, f.runs.recs, 1)
	require.Equal(t, domain.RunSkippedNonBusinessDay, f.runs.recs[0].Status)
}

func Test_Run_HolidaySkipsWithoutExtraction(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	f.oracle.holidays = map[string]bool{"2025-12-25": true}
	c := f.controller(t, time.Date(2025, 12, 25, 8, 15, 0, 0, time.UTC)) // Thursday

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunSkippedNonBusinessDay, rec.Status)
	require.Zero(t, f.extractor.webCalls)
}

func Test_Run_AlreadyCapturedSkips(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	exchange, gold := webQuotes(t, "2025-12-09")
	require.NoError(t, f.store.UpsertExchange(context.Background(), *exchange))
	require.NoError(t, f.store.UpsertGold(context.Background(), *gold))
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC)) // Tuesday

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunSkippedAlreadyCaptured, rec.Status)
	require.Zero(t, f.extractor.webCalls)
	require.Len(t, f.runs.recs, 1)
}

func Test_Run_ForceBypassesAlreadyCaptured(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	exchange, gold := webQuotes(t, "2025-12-09")
	require.NoError(t, f.store.UpsertExchange(context.Background(), *exchange))
	require.NoError(t, f.store.UpsertGold(context.Background(), *gold))
	f.extractor.webExchange, f.extractor.webGold = webQuotes(t, "2025-12-09")
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, domain.RunDone, rec.Status)
	require.Equal(t, 1, f.extractor.webCalls)
}

func Test_Run_FullCapture(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	f.extractor.webExchange, f.extractor.webGold = webQuotes(t, "2025-12-09")
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunDone, rec.Status)
	require.True(t, rec.ExchangeCaptured)
	require.True(t, rec.GoldCaptured)
	require.Equal(t, domain.SourceWebpage, rec.ExchangeSource)
	require.Equal(t, domain.SourceWebpage, rec.GoldSource)

	day, err := domain.ParseDay("2025-12-09")
	require.NoError(t, err)
	stored, err := f.store.GetExchange(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, 25.3605, stored.Bid)

	require.Zero(t, f.extractor.docCalls)
	require.Len(t, f.session.inserted, 1)
	require.Equal(t, 1, f.notifier.calls)
	require.Len(t, f.invalidator.dates, 1)
	require.Equal(t, "2025-12-09", domain.FormatDay(f.invalidator.dates[0]))
	require.Equal(t, 1, f.dialer.releases)
}

func Test_Run_PartialCaptureExchangeOnly(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	exchange, _ := webQuotes(t, "2025-12-09")
	f.extractor.webExchange = exchange
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunDone, rec.Status)
	require.True(t, rec.ExchangeCaptured)
	require.False(t, rec.GoldCaptured)
	require.Equal(t, 1, f.extractor.docCalls)
	require.Len(t, f.session.inserted, 1)
}

func Test_Run_DocumentFallbackFillsGold(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	exchange, _ := webQuotes(t, "2025-12-09")
	f.extractor.webExchange = exchange
	d, err := domain.ParseDay("2025-12-09")
	require.NoError(t, err)
	f.extractor.docGold = &domain.GoldQuotation{
		RateDate: d,
		USD:      domain.Float(4671.87),
		ZWG:      domain.Float(121519.17),
		Source:   domain.SourcePDF,
	}
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.True(t, rec.GoldCaptured)
	require.Equal(t, domain.SourcePDF, rec.GoldSource)
	require.Equal(t, "2025-12-09", domain.FormatDay(f.extractor.docDay))

	stored, err := f.store.GetGold(context.Background(), d)
	require.NoError(t, err)
	require.Equal(t, domain.SourcePDF, stored.Source)
}

func Test_Run_EmptyWebGoldTriggersFallback(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	exchange, _ := webQuotes(t, "2025-12-09")
	d, err := domain.ParseDay("2025-12-09")
	require.NoError(t, err)
	f.extractor.webExchange = exchange
	f.extractor.webGold = &domain.GoldQuotation{RateDate: d, Source: domain.SourceWebpage}
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, f.extractor.docCalls)
	require.False(t, rec.GoldCaptured)
}

func Test_Run_SyncSkipSuppressesNotifyAndInvalidate(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	f.extractor.webExchange, f.extractor.webGold = webQuotes(t, "2025-12-09")
	d, err := domain.ParseDay("2025-12-09")
	require.NoError(t, err)
	f.session.current = &domain.Snapshot{
		ID:     "snap-0",
		AsOf:   d,
		Fields: domain.SnapshotFields{domain.FieldDate: d},
	}
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunDone, rec.Status)
	require.Empty(t, f.session.inserted)
	require.Zero(t, f.notifier.calls)
	require.Empty(t, f.invalidator.dates)
	require.Contains(t, rec.Notes, "sync skipped")
}

func Test_Run_RemoteUnreachableDegrades(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	f.extractor.webExchange, f.extractor.webGold = webQuotes(t, "2025-12-09")
	f.dialer.err = errors.New("server selection timeout")
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunDone, rec.Status)
	require.True(t, rec.ExchangeCaptured)
	require.Contains(t, rec.Notes, "remote unreachable")
	require.Zero(t, f.notifier.calls)

	day, err := domain.ParseDay("2025-12-09")
	require.NoError(t, err)
	_, err = f.store.GetExchange(context.Background(), day)
	require.NoError(t, err)
}

func Test_Run_ExtractionFailureStillWritesRunRecord(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	f.extractor.webErr = errors.New("navigation timeout")
	f.extractor.docErr = errors.New("document missing")
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, domain.RunDone, rec.Status)
	require.False(t, rec.ExchangeCaptured)
	require.False(t, rec.GoldCaptured)
	require.Contains(t, rec.Notes, "web extraction failed")
	require.Contains(t, rec.Notes, "no exchange quotation, sync skipped")
	require.Len(t, f.runs.recs, 1)
	require.Zero(t, f.dialer.dials)
}

func Test_Run_StoreFailureIsFatal(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	f.store.err = errors.New("disk full")
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	_, err := c.Run(context.Background(), false)
	require.Error(t, err)
	require.Empty(t, f.runs.recs)
}

func Test_Run_MissingRateDateDefaultsToRunDate(t *testing.T) {
	t.Parallel()
	f := newPipelineFixture()
	f.extractor.webExchange = &domain.ExchangeQuotation{
		Pair:   domain.PairUSDZWG,
		Bid:    25.3605,
		Ask:    26.6611,
		Mid:    26.0108,
		Source: domain.SourceWebpage,
	}
	c := f.controller(t, time.Date(2025, 12, 9, 8, 15, 0, 0, time.UTC))

	_, err := c.Run(context.Background(), false)
	require.NoError(t, err)

	day, err := domain.ParseDay("2025-12-09")
	require.NoError(t, err)
	stored, err := f.store.GetExchange(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, "2025-12-09", domain.FormatDay(stored.RateDate))
}

func Test_Run_LocalCalendarDateCrossesUTCMidnight(t *testing.T) {
	t.Parallel()
	harare := time.FixedZone("CAT", 2*60*60)
	f := newPipelineFixture()
	f.extractor.webExchange, f.extractor.webGold = webQuotes(t, "2025-12-10")

	// 22:30 UTC on the 9th is 00:30 on the 10th in Harare.
	log := zap.NewNop()
	c := NewController(
		NewBusinessDayGate(f.oracle, log),
		f.extractor, f.store, f.runs, f.dialer,
		NewSynchronizer(log), f.invalidator, f.notifier, log,
		WithClock(fakeClock{t: time.Date(2025, 12, 9, 22, 30, 0, 0, time.UTC)}),
		WithLocation(harare),
	)

	rec, err := c.Run(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, "2025-12-10", domain.FormatDay(rec.RunDate))
}
