package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// ReportRepo is the relational ReportStore. All reports are pure
// aggregations over transactions/transaction_items; the denormalized
// price_at_sale/cost_price_at_sale columns keep history stable under
// later product price edits.
type ReportRepo struct{ db *sqlx.DB }

func NewReportRepo(db *sqlx.DB) *ReportRepo { return &ReportRepo{db: db} }

// dayExpr yields the YYYY-MM-DD grouping expression for the driver.
func (r *ReportRepo) dayExpr() string {
	if r.db.DriverName() == "postgres" {
		return "to_char(t.created_at, 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', t.created_at)"
}

// rangeWhere appends optional [from, to) bounds on t.created_at.
func rangeWhere(conds []string, args []interface{}, from, to time.Time) ([]string, []interface{}) {
	if !from.IsZero() {
		conds = append(conds, "t.created_at >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		conds = append(conds, "t.created_at < ?")
		args = append(args, to)
	}
	return conds, args
}

func whereClause(conds []string) string {
	out := ""
	for i, c := range conds {
		if i == 0 {
			out = " WHERE " + c
		} else {
			out += " AND " + c
		}
	}
	return out
}

// DailySales returns per-day transaction counts and totals.
func (r *ReportRepo) DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	conds, args := rangeWhere(nil, nil, from, to)
	q := `SELECT ` + r.dayExpr() + ` AS day, COUNT(*) AS transactions, SUM(t.total_amount) AS total
		  FROM transactions t` + whereClause(conds) + `
		  GROUP BY ` + r.dayExpr() + ` ORDER BY day DESC`
	rows := []DailySalesRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...)
	return rows, err
}

// TopProducts returns the top-selling products by summed quantity.
func (r *ReportRepo) TopProducts(ctx context.Context, limit int, from, to time.Time) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	conds, args := rangeWhere(nil, nil, from, to)
	q := `SELECT i.product_id, i.product_name,
		         SUM(i.quantity) AS quantity_sold,
		         SUM(i.quantity * i.price_at_sale) AS revenue
		  FROM transaction_items i
		  JOIN transactions t ON t.id = i.transaction_id` + whereClause(conds) + `
		  GROUP BY i.product_id, i.product_name
		  ORDER BY quantity_sold DESC
		  LIMIT ?`
	args = append(args, limit)
	rows := []TopProductRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...)
	return rows, err
}

// ProfitLoss aggregates revenue against cost-at-sale, optionally filtered
// by the product's current category.
func (r *ReportRepo) ProfitLoss(ctx context.Context, from, to time.Time, categoryID string) (ProfitLossReport, error) {
	conds, args := rangeWhere(nil, nil, from, to)
	join := ""
	if categoryID != "" {
		join = " JOIN products p ON p.id = i.product_id"
		conds = append(conds, "p.category_id = ?")
		args = append(args, categoryID)
	}
	q := `SELECT COALESCE(SUM(i.quantity * i.price_at_sale), 0) AS revenue,
		         COALESCE(SUM(i.quantity * i.cost_price_at_sale), 0) AS cost,
		         COUNT(DISTINCT t.id) AS transactions
		  FROM transaction_items i
		  JOIN transactions t ON t.id = i.transaction_id` + join + whereClause(conds)
	var rep ProfitLossReport
	err := r.db.QueryRowContext(ctx, r.db.Rebind(q), args...).
		Scan(&rep.Revenue, &rep.Cost, &rep.Transactions)
	if err != nil {
		return ProfitLossReport{}, err
	}
	rep.Profit = rep.Revenue - rep.Cost
	return rep, nil
}
