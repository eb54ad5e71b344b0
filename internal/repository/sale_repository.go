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

// SaleRepo is the relational SaleStore. RecordSale runs the whole write
// sequence inside one database transaction so a failure at any step
// leaves no partial header, items or stock change visible.
type SaleRepo struct{ db *sqlx.DB }

func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

// RecordSale persists the transaction header first, then its items, then
// decrements stock for each line. The header-before-items order means an
// item row can never reference a missing header. The stock decrement is
// guarded (stock >= quantity), so concurrent sales against the same
// product serialize on the row update instead of racing below zero.
func (r *SaleRepo) RecordSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	if len(in.Items) == 0 {
		return SaleResult{}, errors.New("recordSale: empty items")
	}
	now := time.Now().UTC()
	id := utils.NewTransactionID(now)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return SaleResult{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO transactions (id, total_amount, payment_amount, change_amount, discount, payment_method, cashier_id, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`),
		id, in.TotalAmount, in.PaymentAmount, in.ChangeAmount, in.Discount, in.PaymentMethod, in.CashierID, now)
	if err != nil {
		return SaleResult{}, mapUniqueErr(err)
	}

	// Bulk insert the items in one statement, all tied to the header id.
	q := `INSERT INTO transaction_items (transaction_id, product_id, product_name, price_at_sale, cost_price_at_sale, quantity) VALUES `
	args := make([]interface{}, 0, len(in.Items)*6)
	for i, it := range in.Items {
		if i > 0 {
			q += ","
		}
		q += "(?,?,?,?,?,?)"
		args = append(args, id, it.ProductID, it.ProductName, it.PriceAtSale, it.CostPriceAtSale, it.Quantity)
	}
	if _, err := tx.ExecContext(ctx, r.db.Rebind(q), args...); err != nil {
		return SaleResult{}, err
	}

	for _, it := range in.Items {
		res, err := tx.ExecContext(ctx, r.db.Rebind(
			`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`),
			it.Quantity, now, it.ProductID, it.Quantity)
		if err != nil {
			return SaleResult{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Distinguish a missing product from an oversell.
			var one int
			err := tx.QueryRowContext(ctx,
				r.db.Rebind(`SELECT 1 FROM products WHERE id=?`), it.ProductID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return SaleResult{}, ErrNotFound
			}
			if err != nil {
				return SaleResult{}, err
			}
			return SaleResult{}, ErrInsufficientStock
		}
	}

	if err := tx.Commit(); err != nil {
		return SaleResult{}, err
	}
	committed = true
	return SaleResult{TransactionID: id, CreatedAt: now}, nil
}

// GetByID loads a transaction header and its items in insertion order.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (model.Transaction, []model.TransactionItem, error) {
	var t model.Transaction
	err := r.db.GetContext(ctx, &t, r.db.Rebind(
		`SELECT id, total_amount, payment_amount, change_amount, discount, payment_method, cashier_id, created_at
		 FROM transactions WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, nil, ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, nil, err
	}
	items := []model.TransactionItem{}
	err = r.db.SelectContext(ctx, &items, r.db.Rebind(
		`SELECT id, transaction_id, product_id, product_name, price_at_sale, cost_price_at_sale, quantity
		 FROM transaction_items WHERE transaction_id=? ORDER BY id`), id)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	return t, items, nil
}

// List returns transaction headers, newest first, optionally bounded by a
// [from, to) creation-time range (zero time = unbounded side).
func (r *SaleRepo) List(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	q := `SELECT id, total_amount, payment_amount, change_amount, discount, payment_method, cashier_id, created_at
		  FROM transactions`
	var (
		conds []string
		args  []interface{}
	)
	if !from.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, to)
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY created_at DESC"
	txs := []model.Transaction{}
	err := r.db.SelectContext(ctx, &txs, r.db.Rebind(q), args...)
	return txs, err
}

// Delete removes one transaction; its items go via cascade. Stock is not
// restored: a deleted sale is an audit cleanup, not a refund.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM transactions WHERE id=?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every transaction (bulk reset), returning the count.
func (r *SaleRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
