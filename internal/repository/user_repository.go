package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/utils"
)

// UserRepo is the relational UserStore.
type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create hashes the password and inserts the user, returning its id.
func (r *UserRepo) Create(ctx context.Context, username, password, role string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	if r.db.DriverName() == "postgres" {
		// lib/pq does not support LastInsertId.
		var id uint64
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO users (username, password_hash, role) VALUES ($1,$2,$3) RETURNING id`,
			username, hash, role).Scan(&id)
		if err != nil {
			return 0, mapUniqueErr(err)
		}
		return id, nil
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?,?,?)`,
		username, hash, role)
	if err != nil {
		return 0, mapUniqueErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u model.User
	err := r.db.GetContext(ctx, &u,
		r.db.Rebind(`SELECT id, username, password_hash, role, created_at FROM users WHERE username=?`),
		username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u,
		r.db.Rebind(`SELECT id, username, password_hash, role, created_at FROM users WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := r.db.SelectContext(ctx, &users,
		`SELECT id, username, password_hash, role, created_at FROM users ORDER BY id`)
	return users, err
}

// Delete removes a user. Their refresh tokens go with them via cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id=?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// mapUniqueErr converts driver unique-violation errors to ErrConflict.
// lib/pq reports "duplicate key value violates unique constraint",
// modernc sqlite "UNIQUE constraint failed".
func mapUniqueErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "unique") {
		return ErrConflict
	}
	return err
}
