package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware function that enforces that the
// authenticated caller has one of the specified roles. The roles accepted
// correspond to the values stored in the JWT's "role" claim. If the
// caller's role is not in the allowed set, the request is aborted with a
// 403 naming the roles that would have been accepted. It assumes JWTAuth
// has stored the role in the context; a missing or unknown role is always
// rejected (deny by default).
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	msg := "requires role: " + strings.Join(roles, " or ")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"status": "error", "message": msg})
			}
			return next(c)
		}
	}
}
