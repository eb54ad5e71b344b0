package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-pos/internal/config"
	"github.com/iliyamo/retail-pos/internal/handler"
	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
	"github.com/iliyamo/retail-pos/internal/utils"
)

const testSecret = "router-test-secret"

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	s := repository.NewMemoryStores()

	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg, s.Users, s.Tokens), testSecret)
	RegisterCatalog(e, handler.NewCategoryHandler(s.Categories), handler.NewProductHandler(s.Products, s.Categories), testSecret, nil)
	RegisterSales(e, handler.NewSaleHandler(s.Sales, s.Products), handler.NewReceiptHandler(s.Sales, ""), handler.NewReportHandler(s.Reports), testSecret, nil)
	RegisterUsers(e, handler.NewUserHandler(cfg, s.Users), testSecret)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		tok, err := utils.NewAccessToken(testSecret, 1, "someone", role, 15)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestReportsReadableByAnyRole(t *testing.T) {
	e := newTestServer(t)
	for _, path := range []string{"/v1/reports/daily-sales", "/v1/reports/top-products", "/v1/reports/profit-loss"} {
		assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, path, model.RoleCashier).Code, path)
		assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, path, model.RoleAdmin).Code, path)
		assert.Equal(t, http.StatusUnauthorized, do(t, e, http.MethodGet, path, "").Code, path)
	}
}

func TestCatalogReadableByAnyRole(t *testing.T) {
	e := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/v1/products", model.RoleCashier).Code)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/v1/categories", model.RoleCashier).Code)
}

func TestMutationsRequireAdmin(t *testing.T) {
	e := newTestServer(t)
	cases := []struct{ method, path string }{
		{http.MethodPost, "/v1/products"},
		{http.MethodPost, "/v1/categories"},
		{http.MethodDelete, "/v1/sales"},
		{http.MethodGet, "/v1/users"},
	}
	for _, c := range cases {
		rec := do(t, e, c.method, c.path, model.RoleCashier)
		assert.Equal(t, http.StatusForbidden, rec.Code, c.method+" "+c.path)
	}
}

func TestHealthAndAuthAreOpen(t *testing.T) {
	e := newTestServer(t)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/healthz", "").Code)
	// An empty login body fails validation, not authentication, which
	// proves the route sits outside the bearer-token groups.
	rec := do(t, e, http.MethodPost, "/v1/auth/login", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
