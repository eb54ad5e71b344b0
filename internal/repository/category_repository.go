package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/utils"
)

// CategoryRepo is the relational CategoryStore.
type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category, generating an id when none is supplied.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	if c.ID == "" {
		c.ID = utils.NewCategoryID()
	}
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`INSERT INTO categories (id, name) VALUES (?,?)`), c.ID, c.Name)
	return mapUniqueErr(err)
}

// GetByID fetches one category.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (model.Category, error) {
	var c model.Category
	err := r.db.GetContext(ctx, &c,
		r.db.Rebind(`SELECT id, name, created_at FROM categories WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, ErrNotFound
	}
	return c, err
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	cats := []model.Category{}
	err := r.db.SelectContext(ctx, &cats,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	return cats, err
}

// Update renames a category.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE categories SET name=? WHERE id=?`), c.Name, c.ID)
	if err != nil {
		return mapUniqueErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category. Referencing products keep working with a
// null reference (ON DELETE SET NULL) and read back as "Uncategorized".
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM categories WHERE id=?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
