package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// TokenRepo is the relational TokenStore (single 'token_hash' column).
type TokenRepo struct{ db *sqlx.DB }

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)`),
		userID, tokenHash, exp)
	return err
}

// ValidateRefresh returns the owning userID if a non-expired token exists.
// Expired rows are rejected exactly like absent ones, and are deleted on
// the way out so they cannot accumulate.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
	)
	err := r.db.QueryRowContext(ctx,
		r.db.Rebind(`SELECT user_id, expires_at FROM refresh_tokens WHERE token_hash=?`),
		tokenHash).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if time.Now().UTC().After(expiresAt) {
		_ = r.DeleteByHash(ctx, tokenHash)
		return 0, ErrNotFound
	}
	return userID, nil
}

// DeleteByHash removes a single token row.
func (r *TokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM refresh_tokens WHERE token_hash=?`), tokenHash)
	return err
}

// DeleteAllForUser removes every token owned by the user.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM refresh_tokens WHERE user_id=?`), userID)
	return err
}
