package application

import (
	"context"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
)

// QuotationStore is the local system of record for captured quotations.
// Upserts are keyed by rate date and last write wins, so a manual correction
// can replace an earlier automated capture.
type QuotationStore interface {
	HasExchange(ctx context.Context, day time.Time) (bool, error)
	HasGold(ctx context.Context, day time.Time) (bool, error)
	UpsertExchange(ctx context.Context, q domain.ExchangeQuotation) error
	UpsertGold(ctx context.Context, q domain.GoldQuotation) error
	GetExchange(ctx context.Context, day time.Time) (domain.ExchangeQuotation, error)
	GetGold(ctx context.Context, day time.Time) (domain.GoldQuotation, error)
}

// RunLog is the append-only audit of pipeline invocations.
type RunLog interface {
	Append(ctx context.Context, rec domain.RunRecord) (string, error)
}

// SourceExtractor obtains quotations from the publisher. ExtractWeb drives
// the structured page; ExtractGoldDocument is the per-day document fallback
// and never yields digital-token prices.
type SourceExtractor interface {
	ExtractWeb(ctx context.Context) (*domain.ExchangeQuotation, *domain.GoldQuotation, error)
	ExtractGoldDocument(ctx context.Context, day time.Time) (*domain.GoldQuotation, error)
}

// HolidayOracle answers whether a calendar date is a public holiday.
type HolidayOracle interface {
	IsHoliday(ctx context.Context, day time.Time) (bool, error)
}

// SnapshotSession is one scoped connection to the shared snapshot collection.
// Current returns domain.ErrNoSnapshot when the collection is empty.
type SnapshotSession interface {
	Current(ctx context.Context) (domain.Snapshot, error)
	Insert(ctx context.Context, fields domain.SnapshotFields) (string, error)
}

// SnapshotDialer opens a session for the duration of one sync step. The
// returned release func must be called on every path.
type SnapshotDialer interface {
	Dial(ctx context.Context) (SnapshotSession, func(), error)
}

// CacheInvalidator evicts downstream cache entries made stale by a new
// snapshot.
type CacheInvalidator interface {
	InvalidateForDate(ctx context.Context, day time.Time) (int, error)
	ClearMatching(ctx context.Context) (int, error)
}

// Notifier announces a successfully synchronized capture.
type Notifier interface {
	Notify(ctx context.Context, exchange domain.ExchangeQuotation, gold *domain.GoldQuotation) error
}
