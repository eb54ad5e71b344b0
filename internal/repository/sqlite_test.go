package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-pos/internal/config"
	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/store"
)

// newSQLiteStores opens a throwaway sqlite database, migrates it and
// returns the relational stores. This runs the same Open/Migrate path as
// startup, so driver-specific schema and time handling are exercised for
// real instead of only through the in-memory backend.
func newSQLiteStores(t *testing.T) *Stores {
	t.Helper()
	cfg := config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "pos.db"),
	}
	db, err := store.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))
	return NewSQLStores(db)
}

func TestSQLiteRecordSale_DecrementsStock(t *testing.T) {
	s := newSQLiteStores(t)
	ctx := context.Background()
	seedProduct(t, s, "P001", 10000, 7000, 80, nil, nil)

	res, err := s.Sales.RecordSale(ctx, saleOf("P001", 5, 10000, 7000))
	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionID)

	// Read-after-write pulls created_at/updated_at back through the
	// driver, so a timestamp column the driver cannot scan fails here.
	d, err := s.Products.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(75), d.Stock)
	assert.False(t, d.CreatedAt.IsZero())
	assert.False(t, d.UpdatedAt.IsZero())

	tx, items, err := s.Sales.GetByID(ctx, res.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, tx.TotalAmount)
	assert.False(t, tx.CreatedAt.IsZero())
	require.Len(t, items, 1)
	assert.Equal(t, "P001", items[0].ProductID)
	assert.Equal(t, int64(5), items[0].Quantity)
	assert.Equal(t, 10000.0, items[0].PriceAtSale)
}

func TestSQLiteRecordSale_MixedValidAndOversoldLineIsNoOp(t *testing.T) {
	s := newSQLiteStores(t)
	ctx := context.Background()
	seedProduct(t, s, "P001", 10000, 7000, 80, nil, nil)
	seedProduct(t, s, "P002", 5000, 3000, 1, nil, nil)

	in := saleOf("P001", 5, 10000, 7000)
	in.Items = append(in.Items, SaleItemInput{
		ProductID: "P002", ProductName: "product P002",
		PriceAtSale: 5000, CostPriceAtSale: 3000, Quantity: 2,
	})
	_, err := s.Sales.RecordSale(ctx, in)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The rollback must have undone the valid line too.
	d, err := s.Products.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, int64(80), d.Stock)

	txs, err := s.Sales.List(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSQLiteReports_SurviveProductEdits(t *testing.T) {
	s := newSQLiteStores(t)
	ctx := context.Background()
	seedProduct(t, s, "P001", 10000, 7000, 100, nil, nil)
	seedProduct(t, s, "P002", 5000, 2000, 100, nil, nil)

	_, err := s.Sales.RecordSale(ctx, saleOf("P001", 5, 10000, 7000))
	require.NoError(t, err)
	// Transaction ids carry a millisecond stamp; keep the two sales apart.
	time.Sleep(2 * time.Millisecond)
	_, err = s.Sales.RecordSale(ctx, saleOf("P002", 2, 5000, 2000))
	require.NoError(t, err)

	p := model.Product{ID: "P001", Name: "product P001", Price: 99999, Cost: 99999, Stock: 95}
	require.NoError(t, s.Products.Update(ctx, &p))

	daily, err := s.Reports.DailySales(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), daily[0].Day)
	assert.Equal(t, int64(2), daily[0].Transactions)
	assert.Equal(t, 60000.0, daily[0].Total)

	top, err := s.Reports.TopProducts(ctx, 10, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "P001", top[0].ProductID)
	assert.Equal(t, int64(5), top[0].QuantitySold)
	assert.Equal(t, 50000.0, top[0].Revenue)

	pl, err := s.Reports.ProfitLoss(ctx, time.Time{}, time.Time{}, "")
	require.NoError(t, err)
	assert.Equal(t, 60000.0, pl.Revenue)
	assert.Equal(t, 39000.0, pl.Cost)
	assert.Equal(t, 21000.0, pl.Profit)
	assert.Equal(t, int64(2), pl.Transactions)

	// A bound time range must compare against the stored column text.
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	txs, err := s.Sales.List(ctx, dayStart, time.Time{})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
	txs, err = s.Sales.List(ctx, time.Time{}, dayStart)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSQLiteCategoryDelete_ProductsBecomeUncategorized(t *testing.T) {
	s := newSQLiteStores(t)
	ctx := context.Background()

	cat := model.Category{Name: "Drinks"}
	require.NoError(t, s.Categories.Create(ctx, &cat))
	seedProduct(t, s, "P001", 100, 50, 10, nil, &cat.ID)

	d, err := s.Products.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, "Drinks", d.CategoryName)

	require.NoError(t, s.Categories.Delete(ctx, cat.ID))

	d, err = s.Products.GetByID(ctx, "P001")
	require.NoError(t, err)
	assert.Nil(t, d.CategoryID)
	assert.Equal(t, UncategorizedName, d.CategoryName)
}

func TestSQLiteRefreshToken_ExpiredEqualsAbsent(t *testing.T) {
	s := newSQLiteStores(t)
	ctx := context.Background()

	uid, err := s.Users.Create(ctx, "alice", "pw", model.RoleCashier, 4)
	require.NoError(t, err)

	// Round-trips the users timestamp column populated by the schema
	// default rather than an explicit bind.
	u, err := s.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	require.NoError(t, s.Tokens.StoreRefresh(ctx, uid, "hash-live", time.Now().UTC().Add(time.Hour)))
	require.NoError(t, s.Tokens.StoreRefresh(ctx, uid, "hash-dead", time.Now().UTC().Add(-time.Hour)))

	got, err := s.Tokens.ValidateRefresh(ctx, "hash-live")
	require.NoError(t, err)
	assert.Equal(t, uid, got)

	_, err = s.Tokens.ValidateRefresh(ctx, "hash-dead")
	assert.ErrorIs(t, err, ErrNotFound)
}
