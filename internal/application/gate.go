package application

import (
	"context"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"

	"go.uber.org/zap"
)

// BusinessDayGate decides whether a quotation is expected on a given date.
// Weekends are never business days; holiday lookup is delegated to the
// oracle. An oracle failure fails open: the worst case is a wasted scrape
// attempt, never lost data.
type BusinessDayGate struct {
	oracle HolidayOracle
	log    *zap.Logger
}

func NewBusinessDayGate(oracle HolidayOracle, log *zap.Logger) *BusinessDayGate {
	return &BusinessDayGate{oracle: oracle, log: log}
}

func (g *BusinessDayGate) IsBusinessDay(ctx context.Context, day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	holiday, err := g.oracle.IsHoliday(ctx, day)
	if err != nil {
		g.log.Warn("gate.holiday_check_failed",
			zap.String("date", domain.FormatDay(day)),
			zap.Error(err))
		return true
	}
	return !holiday
}
