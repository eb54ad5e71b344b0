package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// Identity is the verified caller extracted from a bearer token. The role
// is trusted from the signed payload without a database lookup, so a role
// change only takes effect once the token expires or is refreshed.
type Identity struct {
	ID       uint64
	Username string
	Role     string
}

// Context keys under which JWTAuth stores the identity parts.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the caller's id, username and role into the request context.
// Rejections are always 401 with a stable error shape; the message
// distinguishes the failure class for observability:
//
//	missing header      -> "access token required"
//	unparsable token    -> "invalid token format"
//	expired token       -> "token expired"
//	missing claims      -> "incomplete token payload"
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return reject(c, "access token required")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return reject(c, "invalid token format")
			}

			ident, err := parseIdentity(secret, raw)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					return reject(c, "token expired")
				case errors.Is(err, errIncompletePayload):
					return reject(c, "incomplete token payload")
				default:
					return reject(c, "invalid token format")
				}
			}

			c.Set(CtxUserID, ident.ID)
			c.Set(CtxUsername, ident.Username)
			c.Set(CtxRole, ident.Role)
			return next(c)
		}
	}
}

// OptionalJWTAuth parses the bearer token exactly like JWTAuth but never
// rejects: any failure (missing, malformed, expired) silently yields no
// identity. Used only where a route may personalize when a caller is
// known but works without one.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
				if ident, err := parseIdentity(secret, raw); err == nil {
					c.Set(CtxUserID, ident.ID)
					c.Set(CtxUsername, ident.Username)
					c.Set(CtxRole, ident.Role)
				}
			}
			return next(c)
		}
	}
}

// errIncompletePayload marks a signed token whose payload lacks one of
// the required identity claims.
var errIncompletePayload = errors.New("incomplete token payload")

// parseIdentity verifies the signature and extracts {id, username, role}.
// This never touches the database.
func parseIdentity(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errIncompletePayload
	}
	return identityFromToken(claims)
}

// identityFromToken pulls the identity claims out of a parsed claim set,
// rejecting payloads that miss any of them.
func identityFromToken(claims jwt.MapClaims) (Identity, error) {
	var ident Identity
	switch sub := claims["sub"].(type) {
	case float64:
		ident.ID = uint64(sub)
	default:
		return Identity{}, errIncompletePayload
	}
	if ident.ID == 0 {
		return Identity{}, errIncompletePayload
	}
	if u, ok := claims["username"].(string); ok && u != "" {
		ident.Username = u
	} else {
		return Identity{}, errIncompletePayload
	}
	if r, ok := claims["role"].(string); ok && r != "" {
		ident.Role = r
	} else {
		return Identity{}, errIncompletePayload
	}
	return ident, nil
}

// reject writes the machine-stable 401 error shape.
func reject(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": msg})
}
