package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/repository"
)

// ReportHandler serves the read-only sales aggregations. All reports sum
// the denormalized price/cost captured on each item row, so they are not
// skewed by products edited or deleted after the fact.
type ReportHandler struct {
	Reports repository.ReportStore
}

func NewReportHandler(r repository.ReportStore) *ReportHandler {
	return &ReportHandler{Reports: r}
}

func (h *ReportHandler) DailySales(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Reports.DailySales(ctx, from, to)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// TopProducts returns best sellers by quantity. ?limit defaults to 10.
func (h *ReportHandler) TopProducts(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}
	limit := 10
	if s := c.QueryParam("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return respondErr(c, http.StatusBadRequest, "limit must be a positive integer")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Reports.TopProducts(ctx, limit, from, to)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// ProfitLoss aggregates revenue, cost and profit, optionally scoped to
// one category via ?category_id.
func (h *ReportHandler) ProfitLoss(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rep, err := h.Reports.ProfitLoss(ctx, from, to, c.QueryParam("category_id"))
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}
