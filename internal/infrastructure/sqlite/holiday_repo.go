package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
)

// HolidayRepo is the local cache of the public-holiday calendar, one fetch
// per year. holiday_sync records when a year was last refreshed; it is kept
// separate from the rows so a year with no holidays published yet still
// counts as synced.
type HolidayRepo struct{ db *DB }

func NewHolidayRepo(db *DB) *HolidayRepo { return &HolidayRepo{db: db} }

// ReplaceYear swaps the cached rows for one year and stamps the sync marker,
// all in one transaction.
func (r *HolidayRepo) ReplaceYear(ctx context.Context, year int, hs []domain.Holiday) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM public_holidays WHERE year=?`, year); err != nil {
		return fmt.Errorf("clear year: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, h := range hs {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO public_holidays(holiday_date, year, name, local_name, fetched_at)
            VALUES (?, ?, ?, ?, ?)`,
			domain.FormatDay(h.Date), year, h.Name, h.LocalName, now)
		if err != nil {
			return fmt.Errorf("insert holiday: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO holiday_sync(year, synced_at)
        VALUES (?, ?)
        ON CONFLICT(year) DO UPDATE SET synced_at=excluded.synced_at`, year, now)
	if err != nil {
		return fmt.Errorf("mark sync: %w", err)
	}
	return tx.Commit()
}

func (r *HolidayRepo) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	var one int
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT 1 FROM public_holidays WHERE holiday_date=?`, domain.FormatDay(day)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SyncedSince reports whether the year's cache was refreshed at or after
// cutoff.
func (r *HolidayRepo) SyncedSince(ctx context.Context, year int, cutoff time.Time) (bool, error) {
	var syncedAt string
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT synced_at FROM holiday_sync WHERE year=?`, year).Scan(&syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	t, err := time.Parse(time.RFC3339, syncedAt)
	if err != nil {
		return false, nil
	}
	return !t.Before(cutoff), nil
}

// Dates returns the cached holiday dates for a year in ascending order.
func (r *HolidayRepo) Dates(ctx context.Context, year int) ([]time.Time, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT holiday_date FROM public_holidays WHERE year=? ORDER BY holiday_date`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		d, err := domain.ParseDay(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
