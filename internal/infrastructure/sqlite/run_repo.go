package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
	"github.com/garikaib/rates-scrapper/internal/infrastructure/logx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RunRepo struct{ db *DB }

func NewRunRepo(db *DB) *RunRepo { return &RunRepo{db: db} }

// Append writes one audit row and returns its id. Rows are never updated.
func (r *RunRepo) Append(ctx context.Context, rec domain.RunRecord) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO scrape_runs(id, run_date, run_time, status,
                                exchange_captured, gold_captured,
                                exchange_source, gold_source, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	log := logx.L().With(
		zap.String("repo", "run"),
		zap.String("operation", "Append"),
		zap.String("id", id),
		zap.String("run_date", domain.FormatDay(rec.RunDate)),
		zap.String("status", string(rec.Status)),
	)
	log.Info("sql.exec_start")
	_, err := r.db.SQL.ExecContext(ctx, ins,
		id, domain.FormatDay(rec.RunDate), rec.RunTime.UTC().Format(time.RFC3339),
		string(rec.Status), rec.ExchangeCaptured, rec.GoldCaptured,
		nullStr(string(rec.ExchangeSource)), nullStr(string(rec.GoldSource)),
		nullStr(rec.Notes))
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return "", err
	}
	log.Info("sql.exec_success")
	return id, nil
}

// Recent returns the newest run rows, most recent first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	const q = `
        SELECT id, run_date, run_time, status,
               exchange_captured, gold_captured,
               exchange_source, gold_source, notes
        FROM scrape_runs ORDER BY run_time DESC LIMIT ?`
	rows, err := r.db.SQL.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.RunRecord
	for rows.Next() {
		var rec domain.RunRecord
		var runDate, runTime, status string
		var exSrc, goldSrc, notes sql.NullString
		if err := rows.Scan(&rec.ID, &runDate, &runTime, &status,
			&rec.ExchangeCaptured, &rec.GoldCaptured, &exSrc, &goldSrc, &notes); err != nil {
			return nil, err
		}
		if rec.RunDate, err = domain.ParseDay(runDate); err != nil {
			return nil, err
		}
		if rec.RunTime, err = time.Parse(time.RFC3339, runTime); err != nil {
			return nil, err
		}
		rec.Status = domain.RunStatus(status)
		rec.ExchangeSource = domain.Source(exSrc.String)
		rec.GoldSource = domain.Source(goldSrc.String)
		rec.Notes = notes.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
