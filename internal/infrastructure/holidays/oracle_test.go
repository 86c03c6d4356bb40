package holidays_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/holidays"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	holidays []domain.Holiday
	err      error
	calls    int
}

func (f *fakeFetcher) Holidays(_ context.Context, _ int) ([]domain.Holiday, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.holidays, nil
}

type fakeCache struct {
	rows       map[string]domain.Holiday
	syncedAt   map[int]time.Time
	syncErr    error
	replaceErr error
	replaces   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{rows: map[string]domain.Holiday{}, syncedAt: map[int]time.Time{}}
}

func (c *fakeCache) ReplaceYear(_ context.Context, year int, hs []domain.Holiday) error {
	if c.replaceErr != nil {
		return c.replaceErr
	}
	c.replaces++
	for key, h := range c.rows {
		if h.Date.Year() == year {
			delete(c.rows, key)
		}
	}
	for _, h := range hs {
		c.rows[domain.FormatDay(h.Date)] = h
	}
	c.syncedAt[year] = time.Now()
	return nil
}

func (c *fakeCache) IsHoliday(_ context.Context, day time.Time) (bool, error) {
	_, ok := c.rows[domain.FormatDay(day)]
	return ok, nil
}

func (c *fakeCache) SyncedSince(_ context.Context, year int, cutoff time.Time) (bool, error) {
	if c.syncErr != nil {
		return false, c.syncErr
	}
	at, ok := c.syncedAt[year]
	if !ok {
		return false, nil
	}
	return !at.Before(cutoff), nil
}

func day(s string) time.Time {
	d, err := domain.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Test_IsHoliday_FetchesAndCachesOnFirstLookup(t *testing.T) {
	fetcher := &fakeFetcher{holidays: []domain.Holiday{
		{Date: day("2025-12-25"), Name: "Christmas Day", LocalName: "Christmas Day"},
		{Date: day("2025-12-26"), Name: "Boxing Day", LocalName: "Boxing Day"},
	}}
	cache := newFakeCache()
	oracle := holidays.NewOracle(fetcher, cache, 24*time.Hour, zap.NewNop())

	got, err := oracle.IsHoliday(context.Background(), day("2025-12-25"))
	require.NoError(t, err)
	require.True(t, got)
	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, cache.replaces)

	got, err = oracle.IsHoliday(context.Background(), day("2025-12-09"))
	require.NoError(t, err)
	require.False(t, got)
	require.Equal(t, 1, fetcher.calls, "fresh cache must not refetch")
}

func Test_IsHoliday_StaleCacheTriggersRefresh(t *testing.T) {
	fetcher := &fakeFetcher{holidays: []domain.Holiday{
		{Date: day("2025-12-25"), Name: "Christmas Day", LocalName: "Christmas Day"},
	}}
	cache := newFakeCache()
	cache.syncedAt[2025] = time.Now().Add(-48 * time.Hour)
	oracle := holidays.NewOracle(fetcher, cache, 24*time.Hour, zap.NewNop())

	got, err := oracle.IsHoliday(context.Background(), day("2025-12-25"))
	require.NoError(t, err)
	require.True(t, got)
	require.Equal(t, 1, fetcher.calls)
}

func Test_IsHoliday_FetchFailureFallsBackToCachedRows(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("dial tcp: timeout")}
	cache := newFakeCache()
	cache.rows[domain.FormatDay(day("2025-12-25"))] = domain.Holiday{Date: day("2025-12-25"), Name: "Christmas Day"}
	oracle := holidays.NewOracle(fetcher, cache, 24*time.Hour, zap.NewNop())

	got, err := oracle.IsHoliday(context.Background(), day("2025-12-25"))
	require.NoError(t, err)
	require.True(t, got, "stale rows still answer when the API is down")

	got, err = oracle.IsHoliday(context.Background(), day("2025-12-09"))
	require.NoError(t, err)
	require.False(t, got, "unknown day fails open")
}

func Test_IsHoliday_EmptyYearDoesNotRefetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := newFakeCache()
	oracle := holidays.NewOracle(fetcher, cache, 24*time.Hour, zap.NewNop())

	_, err := oracle.IsHoliday(context.Background(), day("2025-12-09"))
	require.NoError(t, err)
	_, err = oracle.IsHoliday(context.Background(), day("2025-12-10"))
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls, "a synced year with zero holidays is still synced")
}

func Test_IsHoliday_CacheErrorPropagates(t *testing.T) {
	cache := newFakeCache()
	cache.syncErr = errors.New("database is locked")
	oracle := holidays.NewOracle(&fakeFetcher{}, cache, 24*time.Hour, zap.NewNop())

	_, err := oracle.IsHoliday(context.Background(), day("2025-12-09"))
	require.Error(t, err)
}

func Test_IsHoliday_ReplaceErrorPropagates(t *testing.T) {
	cache := newFakeCache()
	cache.replaceErr = errors.New("database is locked")
	oracle := holidays.NewOracle(&fakeFetcher{}, cache, 24*time.Hour, zap.NewNop())

	_, err := oracle.IsHoliday(context.Background(), day("2025-12-09"))
	require.Error(t, err)
}

func Test_IsHoliday_FrozenClockControlsStaleness(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := newFakeCache()
	cache.syncedAt[2025] = time.Date(2025, 12, 9, 6, 0, 0, 0, time.UTC)

	at := time.Date(2025, 12, 9, 12, 0, 0, 0, time.UTC)
	oracle := holidays.NewOracle(fetcher, cache, 24*time.Hour, zap.NewNop(),
		holidays.WithNow(func() time.Time { return at }))

	_, err := oracle.IsHoliday(context.Background(), day("2025-12-09"))
	require.NoError(t, err)
	require.Zero(t, fetcher.calls)

	at = time.Date(2025, 12, 11, 12, 0, 0, 0, time.UTC)
	_, err = oracle.IsHoliday(context.Background(), day("2025-12-11"))
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)
}
