package rediscache

import (
	"net/url"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
)

// DateRelevant reports whether a cached key is made stale by a new snapshot
// for day. Keys are request URLs; relevance is decided from their query
// parameters:
//   - no day/from/to parameter: relevant, an undated request means "latest"
//     and latest just changed
//   - day parameter: relevant iff it names the target date exactly
//   - from and to parameters: relevant iff the target date falls inside the
//     inclusive range
//
// Malformed dates and unparseable keys are never relevant.
func DateRelevant(key string, day time.Time) bool {
	u, err := url.Parse(key)
	if err != nil {
		return false
	}
	params := u.Query()
	if !params.Has("day") && !params.Has("from") && !params.Has("to") {
		return true
	}

	target := domain.Day(day)
	if params.Has("day") {
		if d, err := domain.ParseDay(params.Get("day")); err == nil && d.Equal(target) {
			return true
		}
	}
	if params.Has("from") && params.Has("to") {
		from, errFrom := domain.ParseDay(params.Get("from"))
		to, errTo := domain.ParseDay(params.Get("to"))
		if errFrom == nil && errTo == nil && !target.Before(from) && !target.After(to) {
			return true
		}
	}
	return false
}
