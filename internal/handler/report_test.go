package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
)

func newTestReports(t *testing.T) (*ReportHandler, *repository.Stores) {
	t.Helper()
	stores := repository.NewMemoryStores()
	ctx := context.Background()

	p := model.Product{ID: "P001", Name: "Es Teh", Price: 5000, Cost: 2000, Stock: 100}
	require.NoError(t, stores.Products.Create(ctx, &p))

	_, err := stores.Sales.RecordSale(ctx, repository.SaleInput{
		TotalAmount:   15000,
		PaymentAmount: 15000,
		PaymentMethod: "cash",
		Items: []repository.SaleItemInput{{
			ProductID: "P001", ProductName: "Es Teh",
			PriceAtSale: 5000, CostPriceAtSale: 2000, Quantity: 3,
		}},
	})
	require.NoError(t, err)
	return NewReportHandler(stores.Reports), stores
}

func TestDailySalesReport(t *testing.T) {
	h, _ := newTestReports(t)

	rec := doJSON(t, h.DailySales, http.MethodGet, "/v1/reports/daily-sales", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []repository.DailySalesRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), rows[0].Day)
	assert.Equal(t, int64(1), rows[0].Transactions)
	assert.Equal(t, 15000.0, rows[0].Total)
}

func TestDailySalesReport_BadRange(t *testing.T) {
	h, _ := newTestReports(t)
	rec := doJSON(t, h.DailySales, http.MethodGet, "/v1/reports/daily-sales?from=not-a-date", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopProductsReport(t *testing.T) {
	h, _ := newTestReports(t)

	rec := doJSON(t, h.TopProducts, http.MethodGet, "/v1/reports/top-products?limit=5", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []repository.TopProductRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "P001", rows[0].ProductID)
	assert.Equal(t, int64(3), rows[0].QuantitySold)
	assert.Equal(t, 15000.0, rows[0].Revenue)

	rec = doJSON(t, h.TopProducts, http.MethodGet, "/v1/reports/top-products?limit=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfitLossReport(t *testing.T) {
	h, _ := newTestReports(t)

	rec := doJSON(t, h.ProfitLoss, http.MethodGet, "/v1/reports/profit-loss", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep repository.ProfitLossReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 15000.0, rep.Revenue)
	assert.Equal(t, 6000.0, rep.Cost)
	assert.Equal(t, 9000.0, rep.Profit)
	assert.Equal(t, int64(1), rep.Transactions)
}
