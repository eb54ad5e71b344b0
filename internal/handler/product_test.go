package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
)

func newTestProduct(t *testing.T) (*ProductHandler, *CategoryHandler, *repository.Stores) {
	t.Helper()
	stores := repository.NewMemoryStores()
	return NewProductHandler(stores.Products, stores.Categories), NewCategoryHandler(stores.Categories), stores
}

func withParam(name, value string) func(echo.Context) {
	return func(c echo.Context) {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
}

func TestProductCreateAndGet(t *testing.T) {
	ph, ch, _ := newTestProduct(t)

	rec := doJSON(t, ch.Create, http.MethodPost, "/v1/categories",
		map[string]string{"name": "Drinks"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat categoryResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.NotEmpty(t, cat.ID)

	rec = doJSON(t, ph.Create, http.MethodPost, "/v1/products", map[string]interface{}{
		"id":          "P001",
		"name":        "Es Teh",
		"price":       5000,
		"cost":        2000,
		"stock":       80,
		"barcode":     "8991102",
		"category_id": cat.ID,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got productResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "P001", got.ID)
	assert.Equal(t, "Drinks", got.CategoryName)

	// Lookup by id and by barcode return the same product.
	rec = doJSON(t, ph.Get, http.MethodGet, "/v1/products/P001", nil, withParam("id", "P001"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, ph.GetByBarcode, http.MethodGet, "/v1/products/barcode/8991102", nil, withParam("code", "8991102"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "P001", got.ID)
}

func TestProductCreate_GeneratesID(t *testing.T) {
	ph, _, _ := newTestProduct(t)

	rec := doJSON(t, ph.Create, http.MethodPost, "/v1/products", map[string]interface{}{
		"name": "Kopi", "price": 8000, "cost": 3000, "stock": 10,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got productResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "P", got.ID[:1])
	assert.Equal(t, repository.UncategorizedName, got.CategoryName)
}

func TestProductCreate_UnknownCategory(t *testing.T) {
	ph, _, _ := newTestProduct(t)

	rec := doJSON(t, ph.Create, http.MethodPost, "/v1/products", map[string]interface{}{
		"name": "Kopi", "price": 8000, "cost": 3000, "stock": 10, "category_id": "CATnope",
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "category not found")
}

func TestProductCreate_Validation(t *testing.T) {
	ph, _, _ := newTestProduct(t)

	rec := doJSON(t, ph.Create, http.MethodPost, "/v1/products",
		map[string]interface{}{"name": "", "price": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, ph.Create, http.MethodPost, "/v1/products",
		map[string]interface{}{"name": "x", "price": -1}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, ph.Create, http.MethodPost, "/v1/products",
		map[string]interface{}{"name": "x", "price": 1, "stock": -5}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryDelete_ProductReadsUncategorized(t *testing.T) {
	ph, ch, stores := newTestProduct(t)

	cat := model.Category{Name: "Drinks"}
	require.NoError(t, stores.Categories.Create(context.Background(), &cat))
	p := model.Product{ID: "P001", Name: "Es Teh", Price: 5000, Cost: 2000, Stock: 80, CategoryID: &cat.ID}
	require.NoError(t, stores.Products.Create(context.Background(), &p))

	rec := doJSON(t, ch.Delete, http.MethodDelete, "/v1/categories/"+cat.ID, nil, withParam("id", cat.ID))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, ph.Get, http.MethodGet, "/v1/products/P001", nil, withParam("id", "P001"))
	require.Equal(t, http.StatusOK, rec.Code)
	var got productResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, "Uncategorized", got.CategoryName)
}

func TestProductUpdate(t *testing.T) {
	ph, _, stores := newTestProduct(t)
	p := model.Product{ID: "P001", Name: "Es Teh", Price: 5000, Cost: 2000, Stock: 80}
	require.NoError(t, stores.Products.Create(context.Background(), &p))

	rec := doJSON(t, ph.Update, http.MethodPut, "/v1/products/P001", map[string]interface{}{
		"name": "Es Teh Manis", "price": 6000, "cost": 2500, "stock": 70,
	}, withParam("id", "P001"))
	require.Equal(t, http.StatusOK, rec.Code)

	d, err := stores.Products.GetByID(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, "Es Teh Manis", d.Name)
	assert.Equal(t, 6000.0, d.Price)
	assert.Equal(t, int64(70), d.Stock)
}

func TestProductDelete(t *testing.T) {
	ph, _, stores := newTestProduct(t)
	p := model.Product{ID: "P001", Name: "Es Teh", Price: 5000, Stock: 1}
	require.NoError(t, stores.Products.Create(context.Background(), &p))

	rec := doJSON(t, ph.Delete, http.MethodDelete, "/v1/products/P001", nil, withParam("id", "P001"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, ph.Get, http.MethodGet, "/v1/products/P001", nil, withParam("id", "P001"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
