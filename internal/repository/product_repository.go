package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/utils"
)

// UncategorizedName is the category name resolved for products whose
// category reference is null or dangling.
const UncategorizedName = "Uncategorized"

// ProductRepo is the relational ProductStore.
type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productSelect = `SELECT p.id, p.name, p.price, p.cost, p.stock, p.barcode,
       p.category_id, p.image_url, p.created_at, p.updated_at,
       COALESCE(c.name, 'Uncategorized') AS category_name
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id`

// Create inserts a product, generating an id when none is supplied.
// A caller-supplied id (e.g. "P001" from an imported catalog) is kept.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = utils.NewProductID()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO products (id, name, price, cost, stock, barcode, category_id, image_url, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`),
		p.ID, p.Name, p.Price, p.Cost, p.Stock, p.Barcode, p.CategoryID, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	return mapUniqueErr(err)
}

// GetByID fetches one product with its category name resolved.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (ProductDetail, error) {
	var d ProductDetail
	err := r.db.GetContext(ctx, &d, r.db.Rebind(productSelect+` WHERE p.id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ProductDetail{}, ErrNotFound
	}
	return d, err
}

// GetByBarcode fetches one product by its scan code.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (ProductDetail, error) {
	var d ProductDetail
	err := r.db.GetContext(ctx, &d, r.db.Rebind(productSelect+` WHERE p.barcode=?`), barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return ProductDetail{}, ErrNotFound
	}
	return d, err
}

// List returns all products ordered by id.
func (r *ProductRepo) List(ctx context.Context) ([]ProductDetail, error) {
	ds := []ProductDetail{}
	err := r.db.SelectContext(ctx, &ds, productSelect+` ORDER BY p.id`)
	return ds, err
}

// Update rewrites every mutable column. Stock is included here because
// admin corrections go through this path; sale decrements never do.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE products SET name=?, price=?, cost=?, stock=?, barcode=?, category_id=?, image_url=?, updated_at=?
		 WHERE id=?`),
		p.Name, p.Price, p.Cost, p.Stock, p.Barcode, p.CategoryID, p.ImageURL, p.UpdatedAt, p.ID)
	if err != nil {
		return mapUniqueErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product. Historical transaction items keep their
// denormalized copy of its name and prices.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id=?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
