package application

import (
	"context"
	"fmt"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
)

type fakeStore struct {
	exchange map[string]domain.ExchangeQuotation
	gold     map[string]domain.GoldQuotation
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exchange: map[string]domain.ExchangeQuotation{},
		gold:     map[string]domain.GoldQuotation{},
	}
}

func (f *fakeStore) HasExchange(_ context.Context, day time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.exchange[domain.FormatDay(day)]
	return ok, nil
}

func (f *fakeStore) HasGold(_ context.Context, day time.Time) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.gold[domain.FormatDay(day)]
	return ok, nil
}

func (f *fakeStore) UpsertExchange(_ context.Context, q domain.ExchangeQuotation) error {
	if f.err != nil {
		return f.err
	}
	f.exchange[domain.FormatDay(q.RateDate)] = q
	return nil
}

func (f *fakeStore) UpsertGold(_ context.Context, q domain.GoldQuotation) error {
	if f.err != nil {
		return f.err
	}
	f.gold[domain.FormatDay(q.RateDate)] = q
	return nil
}

func (f *fakeStore) GetExchange(_ context.Context, day time.Time) (domain.ExchangeQuotation, error) {
	q, ok := f.exchange[domain.FormatDay(day)]
	if !ok {
		return domain.ExchangeQuotation{}, domain.ErrNotFound
	}
	return q, nil
}

func (f *fakeStore) GetGold(_ context.Context, day time.Time) (domain.GoldQuotation, error) {
	q, ok := f.gold[domain.FormatDay(day)]
	if !ok {
		return domain.GoldQuotation{}, domain.ErrNotFound
	}
	return q, nil
}

type fakeRunLog struct {
	recs []domain.RunRecord
	err  error
}

func (f *fakeRunLog) Append(_ context.Context, rec domain.RunRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id := fmt.Sprintf("run-%d", len(f.recs)+1)
	rec.ID = id
	f.recs = append(f.recs, rec)
	return id, nil
}

type fakeExtractor struct {
	webExchange *domain.ExchangeQuotation
	webGold     *domain.GoldQuotation
	webErr      error
	docGold     *domain.GoldQuotation
	docErr      error

	webCalls int
	docCalls int
	docDay   time.Time
}

func (f *fakeExtractor) ExtractWeb(context.Context) (*domain.ExchangeQuotation, *domain.GoldQuotation, error) {
	f.webCalls++
	return f.webExchange, f.webGold, f.webErr
}

func (f *fakeExtractor) ExtractGoldDocument(_ context.Context, day time.Time) (*domain.GoldQuotation, error) {
	f.docCalls++
	f.docDay = day
	return f.docGold, f.docErr
}

type fakeOracle struct {
	holidays map[string]bool
	err      error
	calls    int
}

func (f *fakeOracle) IsHoliday(_ context.Context, day time.Time) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.holidays[domain.FormatDay(day)], nil
}

type fakeSession struct {
	current    *domain.Snapshot
	inserted   []domain.SnapshotFields
	currentErr error
	insertErr  error
}

func (f *fakeSession) Current(context.Context) (domain.Snapshot, error) {
	if f.currentErr != nil {
		return domain.Snapshot{}, f.currentErr
	}
	if f.current == nil {
		return domain.Snapshot{}, domain.ErrNoSnapshot
	}
	return *f.current, nil
}

func (f *fakeSession) Insert(_ context.Context, fields domain.SnapshotFields) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, fields)
	id := fmt.Sprintf("snap-%d", len(f.inserted))
	asOf, _ := fields[domain.FieldDate].(time.Time)
	f.current = &domain.Snapshot{ID: id, AsOf: asOf, Fields: fields.Clone()}
	return id, nil
}

type fakeDialer struct {
	session  *fakeSession
	err      error
	dials    int
	releases int
}

func (f *fakeDialer) Dial(context.Context) (SnapshotSession, func(), error) {
	f.dials++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.session, func() { f.releases++ }, nil
}

type fakeInvalidator struct {
	dates  []time.Time
	clears int
	err    error
}

func (f *fakeInvalidator) InvalidateForDate(_ context.Context, day time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.dates = append(f.dates, day)
	return 1, nil
}

func (f *fakeInvalidator) ClearMatching(context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.clears++
	return 1, nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) Notify(context.Context, domain.ExchangeQuotation, *domain.GoldQuotation) error {
	f.calls++
	return f.err
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }
