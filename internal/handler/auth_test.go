package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-pos/internal/config"
	"github.com/iliyamo/retail-pos/internal/middleware"
	"github.com/iliyamo/retail-pos/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // minimum cost keeps the suite fast
	}
}

func newTestAuth() (*AuthHandler, *repository.Stores) {
	stores := repository.NewMemoryStores()
	return NewAuthHandler(testConfig(), stores.Users, stores.Tokens), stores
}

// doJSON invokes handler h directly with a JSON body.
func doJSON(t *testing.T, h echo.HandlerFunc, method, path string, body interface{}, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(bs)
	} else {
		rd = bytes.NewReader(nil)
	}
	e := echo.New()
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	require.NoError(t, h(c))
	return rec
}

func decodeAuthResp(t *testing.T, rec *httptest.ResponseRecorder) authResp {
	t.Helper()
	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegister(t *testing.T) {
	h, _ := newTestAuth()

	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": "Kasir01", "password": "pw123"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeAuthResp(t, rec)
	assert.Equal(t, "kasir01", resp.User.Username) // lowercased
	assert.Equal(t, "cashier", resp.User.Role)     // self-registration never yields admin
	assert.NotZero(t, resp.User.ID)
	assert.NotEmpty(t, resp.Access.Token)
	assert.NotEmpty(t, resp.Refresh.Token)

	// Duplicate username conflicts.
	rec = doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": "kasir01", "password": "other"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	h, _ := newTestAuth()
	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	h, _ := newTestAuth()
	doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": "alice", "password": "pw123"}, nil)

	rec := doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		map[string]string{"username": "alice", "password": "pw123"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeAuthResp(t, rec)
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.Access.Token)

	rec = doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")

	// Unknown user is indistinguishable from a bad password.
	rec = doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		map[string]string{"username": "nobody", "password": "pw123"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestRefresh_RotatesToken(t *testing.T) {
	h, _ := newTestAuth()
	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": "alice", "password": "pw123"}, nil)
	first := decodeAuthResp(t, rec)

	rec = doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": first.Refresh.Token}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeAuthResp(t, rec)
	assert.NotEqual(t, first.Refresh.Token, second.Refresh.Token)

	// The consumed token is gone: replay is rejected.
	rec = doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": first.Refresh.Token}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The rotated token still works.
	rec = doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": second.Refresh.Token}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefresh_UnknownToken(t *testing.T) {
	h, _ := newTestAuth()
	rec := doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": "never-issued"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}

func TestLogout_SingleSession(t *testing.T) {
	h, _ := newTestAuth()
	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": "alice", "password": "pw123"}, nil)
	resp := decodeAuthResp(t, rec)

	rec = doJSON(t, h.Logout, http.MethodPost, "/v1/auth/logout",
		map[string]string{"refresh_token": resp.Refresh.Token}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The session is gone.
	rec = doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh_token": resp.Refresh.Token}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_AllSessions(t *testing.T) {
	h, _ := newTestAuth()
	rec := doJSON(t, h.Register, http.MethodPost, "/v1/auth/register",
		map[string]string{"username": "alice", "password": "pw123"}, nil)
	first := decodeAuthResp(t, rec)
	rec = doJSON(t, h.Login, http.MethodPost, "/v1/auth/login",
		map[string]string{"username": "alice", "password": "pw123"}, nil)
	second := decodeAuthResp(t, rec)

	// Authenticated call without a body token ends every session.
	asUser := func(c echo.Context) {
		c.Set(middleware.CtxUserID, first.User.ID)
		c.Set(middleware.CtxUsername, first.User.Username)
		c.Set(middleware.CtxRole, first.User.Role)
	}
	rec = doJSON(t, h.Logout, http.MethodPost, "/v1/auth/logout", nil, asUser)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, tok := range []string{first.Refresh.Token, second.Refresh.Token} {
		rec = doJSON(t, h.Refresh, http.MethodPost, "/v1/auth/refresh",
			map[string]string{"refresh_token": tok}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestLogout_NoTokenNoIdentity(t *testing.T) {
	h, _ := newTestAuth()
	rec := doJSON(t, h.Logout, http.MethodPost, "/v1/auth/logout", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	h, _ := newTestAuth()
	rec := doJSON(t, h.Me, http.MethodGet, "/v1/me", nil, func(c echo.Context) {
		c.Set(middleware.CtxUserID, uint64(9))
		c.Set(middleware.CtxUsername, "alice")
		c.Set(middleware.CtxRole, "admin")
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var u userPart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, uint64(9), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "admin", u.Role)
}
