package rediscache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garikaib/rates-scrapper/internal/application"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Invalidator evicts cached responses made stale by a new snapshot. A
// client is opened for the duration of one sweep and closed before
// returning; no connection is held across runs.
type Invalidator struct {
	Addr     string
	Password string
	DB       int
	Pattern  string
	Log      *zap.Logger
}

var _ application.CacheInvalidator = (*Invalidator)(nil)

func (i *Invalidator) logger() *zap.Logger {
	if i.Log == nil {
		return zap.NewNop()
	}
	return i.Log
}

// searchPattern widens the configured pattern so keys carrying query
// parameters are matched too.
func (i *Invalidator) searchPattern() string {
	if strings.HasSuffix(i.Pattern, "*") {
		return i.Pattern
	}
	return i.Pattern + "*"
}

// InvalidateForDate removes every matching key relevant to day and returns
// how many were removed.
func (i *Invalidator) InvalidateForDate(ctx context.Context, day time.Time) (int, error) {
	return i.sweep(ctx, func(key string) bool { return DateRelevant(key, day) })
}

// ClearMatching removes every key under the pattern regardless of date.
func (i *Invalidator) ClearMatching(ctx context.Context) (int, error) {
	return i.sweep(ctx, func(string) bool { return true })
}

func (i *Invalidator) sweep(ctx context.Context, stale func(string) bool) (int, error) {
	if i.Pattern == "" {
		i.logger().Warn("cache.no_pattern_configured")
		return 0, nil
	}
	client := redis.NewClient(&redis.Options{Addr: i.Addr, Password: i.Password, DB: i.DB})
	defer client.Close()

	pattern := i.searchPattern()
	var keys []string
	iter := client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if stale(iter.Val()) {
			keys = append(keys, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("cache: scan %q: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	// UNLINK reclaims the keys asynchronously on the server.
	if err := client.Unlink(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("cache: unlink: %w", err)
	}
	return len(keys), nil
}
