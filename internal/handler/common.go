// Package handler implements the HTTP endpoints of the POS API. Every
// error response uses the machine-stable shape {status, message};
// internal error detail is logged server-side and never returned.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/middleware"
	"github.com/iliyamo/retail-pos/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// respondErr writes the stable error shape.
func respondErr(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"status": "error", "message": msg})
}

// storeErr maps repository sentinels onto the HTTP taxonomy. Anything
// unrecognized is a storage failure: logged, reported as a generic 500.
func storeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return respondErr(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrConflict):
		return respondErr(c, http.StatusConflict, "already exists")
	case errors.Is(err, repository.ErrInsufficientStock):
		return respondErr(c, http.StatusBadRequest, "insufficient stock")
	default:
		c.Logger().Errorf("storage failure: %v", err)
		return respondErr(c, http.StatusInternalServerError, "database error")
	}
}

// caller returns the authenticated identity stored by the JWT middleware.
func caller(c echo.Context) (middleware.Identity, bool) {
	id, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok || id == 0 {
		return middleware.Identity{}, false
	}
	username, _ := c.Get(middleware.CtxUsername).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	return middleware.Identity{ID: id, Username: username, Role: role}, true
}

// parseRange reads optional ?from=YYYY-MM-DD&to=YYYY-MM-DD query params.
// The returned to bound is exclusive (start of the following day) so a
// same-day range covers the whole day.
func parseRange(c echo.Context) (from, to time.Time, err error) {
	const layout = "2006-01-02"
	if s := c.QueryParam("from"); s != "" {
		from, err = time.Parse(layout, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, want YYYY-MM-DD")
		}
	}
	if s := c.QueryParam("to"); s != "" {
		to, err = time.Parse(layout, s)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}
