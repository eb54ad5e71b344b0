package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/retail-pos/internal/model"
)

// The interfaces below are the polymorphic storage capability of the
// service: one persistent relational implementation (postgres/sqlite via
// sqlx) and one process-local in-memory implementation used as a degraded
// mode when no database is reachable. The backend is selected once at
// startup and never mixed mid-run.

// UserStore persists users. Passwords are bcrypt-hashed inside Create so
// no caller ever handles a hash directly.
type UserStore interface {
	Create(ctx context.Context, username, password, role string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists refresh token hashes. A token is valid only while
// its row exists and expires_at lies in the future; expired rows are
// rejected identically to absent ones.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// CategoryStore persists categories.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id string) (model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductDetail is a product with its category name resolved. A missing
// or dangling category reference resolves to "Uncategorized".
type ProductDetail struct {
	model.Product
	CategoryName string `db:"category_name"`
}

// ProductStore persists products. Reads resolve the category name.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (ProductDetail, error)
	GetByBarcode(ctx context.Context, barcode string) (ProductDetail, error)
	List(ctx context.Context) ([]ProductDetail, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
}

// SaleItemInput is one proposed line of a sale. Name, price and cost are
// denormalized copies captured at sale time.
type SaleItemInput struct {
	ProductID       string
	ProductName     string
	PriceAtSale     float64
	CostPriceAtSale float64
	Quantity        int64
}

// SaleInput is a proposed sale as validated by the handler.
type SaleInput struct {
	TotalAmount   float64
	PaymentAmount float64
	ChangeAmount  float64
	Discount      float64
	PaymentMethod string
	CashierID     *uint64
	Items         []SaleItemInput
}

// SaleResult identifies the recorded transaction.
type SaleResult struct {
	TransactionID string
	CreatedAt     time.Time
}

// SaleStore records and reads sales. RecordSale is all-or-nothing: the
// transaction header, its items and every stock decrement become visible
// together, or not at all.
type SaleStore interface {
	RecordSale(ctx context.Context, in SaleInput) (SaleResult, error)
	GetByID(ctx context.Context, id string) (model.Transaction, []model.TransactionItem, error)
	List(ctx context.Context, from, to time.Time) ([]model.Transaction, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// DailySalesRow is one day of aggregated sales.
type DailySalesRow struct {
	Day          string  `db:"day" json:"day"`
	Transactions int64   `db:"transactions" json:"transactions"`
	Total        float64 `db:"total" json:"total"`
}

// TopProductRow is one product in the top-sellers report.
type TopProductRow struct {
	ProductID    string  `db:"product_id" json:"product_id"`
	ProductName  string  `db:"product_name" json:"product_name"`
	QuantitySold int64   `db:"quantity_sold" json:"quantity_sold"`
	Revenue      float64 `db:"revenue" json:"revenue"`
}

// ProfitLossReport aggregates revenue against cost-at-sale. Because the
// item rows carry denormalized price/cost, the numbers stay correct even
// after later product price edits.
type ProfitLossReport struct {
	Revenue      float64 `json:"revenue"`
	Cost         float64 `json:"cost"`
	Profit       float64 `json:"profit"`
	Transactions int64   `json:"transactions"`
}

// ReportStore serves the read-only aggregations over recorded sales.
// The zero time means an unbounded range end; categoryID empty means all
// categories.
type ReportStore interface {
	DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error)
	TopProducts(ctx context.Context, limit int, from, to time.Time) ([]TopProductRow, error)
	ProfitLoss(ctx context.Context, from, to time.Time, categoryID string) (ProfitLossReport, error)
}

// Stores bundles every store behind one handle so wiring code selects a
// backend in a single place.
type Stores struct {
	Users      UserStore
	Tokens     TokenStore
	Categories CategoryStore
	Products   ProductStore
	Sales      SaleStore
	Reports    ReportStore
}

// NewSQLStores builds the relational implementation on top of db.
func NewSQLStores(db *sqlx.DB) *Stores {
	return &Stores{
		Users:      NewUserRepo(db),
		Tokens:     NewTokenRepo(db),
		Categories: NewCategoryRepo(db),
		Products:   NewProductRepo(db),
		Sales:      NewSaleRepo(db),
		Reports:    NewReportRepo(db),
	}
}

// NewMemoryStores builds the in-memory degraded-mode implementation.
func NewMemoryStores() *Stores {
	m := NewMemoryStore()
	return &Stores{
		Users:      m,
		Tokens:     m,
		Categories: memoryCategories{m},
		Products:   memoryProducts{m},
		Sales:      memorySales{m},
		Reports:    m,
	}
}
