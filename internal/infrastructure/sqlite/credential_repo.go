package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/garikaib/rates-scrapper/internal/domain"
)

// CredentialRepo stores operator-entered settings (remote credentials, cache
// pattern, mail settings) so they survive restarts without living in the
// environment.
type CredentialRepo struct{ db *DB }

func NewCredentialRepo(db *DB) *CredentialRepo { return &CredentialRepo{db: db} }

func (r *CredentialRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.SQL.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *CredentialRepo) Set(ctx context.Context, key, value string) error {
	const up = `
        INSERT INTO credentials(key, value, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
          value=excluded.value, updated_at=excluded.updated_at`
	_, err := r.db.SQL.ExecContext(ctx, up, key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *CredentialRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.SQL.ExecContext(ctx, `DELETE FROM credentials WHERE key=?`, key)
	return err
}
