package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-pos/internal/utils"
)

const testSecret = "test-secret"

// probe is a terminal handler that records the identity JWTAuth stored.
func probe(got *Identity) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id, ok := c.Get(CtxUserID).(uint64); ok {
			got.ID = id
		}
		got.Username, _ = c.Get(CtxUsername).(string)
		got.Role, _ = c.Get(CtxRole).(string)
		return c.NoContent(http.StatusOK)
	}
}

func runAuth(t *testing.T, mw echo.MiddlewareFunc, authHeader string, got *Identity) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(probe(got))(c))
	return rec
}

func TestJWTAuth_ValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "alice", "admin", 5)
	require.NoError(t, err)

	var got Identity
	rec := runAuth(t, JWTAuth(testSecret), "Bearer "+at.Token, &got)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "admin", got.Role)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	var got Identity
	rec := runAuth(t, JWTAuth(testSecret), "", &got)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "access token required")
}

func TestJWTAuth_GarbageToken(t *testing.T) {
	var got Identity
	rec := runAuth(t, JWTAuth(testSecret), "Bearer not.a.jwt", &got)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token format")
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 7, "alice", "admin", 5)
	require.NoError(t, err)

	var got Identity
	rec := runAuth(t, JWTAuth(testSecret), "Bearer "+at.Token, &got)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token format")
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":      float64(7),
		"username": "alice",
		"role":     "admin",
		"exp":      time.Now().Add(-time.Minute).Unix(),
		"iat":      time.Now().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	var got Identity
	rec := runAuth(t, JWTAuth(testSecret), "Bearer "+signed, &got)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestJWTAuth_IncompletePayload(t *testing.T) {
	// Signed correctly but missing the role claim.
	claims := jwt.MapClaims{
		"sub":      float64(7),
		"username": "alice",
		"exp":      time.Now().Add(time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	var got Identity
	rec := runAuth(t, JWTAuth(testSecret), "Bearer "+signed, &got)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "incomplete token payload")
}

func TestOptionalJWTAuth(t *testing.T) {
	// A bad token never blocks the request, it just yields no identity.
	var got Identity
	rec := runAuth(t, OptionalJWTAuth(testSecret), "Bearer garbage", &got)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, got.ID)

	at, err := utils.NewAccessToken(testSecret, 3, "bob", "cashier", 5)
	require.NoError(t, err)
	got = Identity{}
	rec = runAuth(t, OptionalJWTAuth(testSecret), "Bearer "+at.Token, &got)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(3), got.ID)
	assert.Equal(t, "cashier", got.Role)
}
