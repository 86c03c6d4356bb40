package holidays

import (
	"context"
	"time"

	"github.com/garikaib/rates-scrapper/internal/application"
	"github.com/garikaib/rates-scrapper/internal/domain"

	"go.uber.org/zap"
)

type Fetcher interface {
	Holidays(ctx context.Context, year int) ([]domain.Holiday, error)
}

type Cache interface {
	ReplaceYear(ctx context.Context, year int, hs []domain.Holiday) error
	IsHoliday(ctx context.Context, day time.Time) (bool, error)
	SyncedSince(ctx context.Context, year int, cutoff time.Time) (bool, error)
}

// Oracle answers holiday lookups from the local year cache, refreshing it
// from the calendar API when the year's sync marker is older than ttl. A
// failed refresh is logged and the lookup proceeds on whatever is cached;
// with nothing cached that means "not a holiday" (fail open).
type Oracle struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

var _ application.HolidayOracle = (*Oracle)(nil)

type Option func(*Oracle)

func WithNow(now func() time.Time) Option { return func(o *Oracle) { o.now = now } }

func NewOracle(fetcher Fetcher, cache Cache, ttl time.Duration, log *zap.Logger, opts ...Option) *Oracle {
	o := &Oracle{fetcher: fetcher, cache: cache, ttl: ttl, log: log}
	for _, opt := range opts {
		opt(o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

func (o *Oracle) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	year := day.Year()
	fresh, err := o.cache.SyncedSince(ctx, year, o.now().Add(-o.ttl))
	if err != nil {
		return false, err
	}
	if !fresh {
		hs, err := o.fetcher.Holidays(ctx, year)
		if err != nil {
			o.log.Warn("holidays.fetch_failed", zap.Int("year", year), zap.Error(err))
		} else {
			if err := o.cache.ReplaceYear(ctx, year, hs); err != nil {
				return false, err
			}
			o.log.Info("holidays.cached", zap.Int("year", year), zap.Int("count", len(hs)))
		}
	}
	return o.cache.IsHoliday(ctx, day)
}
