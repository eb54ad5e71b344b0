package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
)

// SaleHandler records and reads sale transactions. Recording is
// all-or-nothing: header, items and stock decrements commit together or
// nothing changes, so an oversold line leaves every balance untouched.
type SaleHandler struct {
	Sales    repository.SaleStore
	Products repository.ProductStore
}

func NewSaleHandler(s repository.SaleStore, p repository.ProductStore) *SaleHandler {
	return &SaleHandler{Sales: s, Products: p}
}

type saleItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type saleReq struct {
	Items         []saleItemReq `json:"items"`
	PaymentAmount float64       `json:"payment_amount"`
	Discount      float64       `json:"discount"`
	PaymentMethod string        `json:"payment_method"`
}

type saleResp struct {
	TransactionID string `json:"transaction_id"`
	Timestamp     int64  `json:"timestamp"`
}

type saleItemResp struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	PriceAtSale     float64 `json:"price_at_sale"`
	CostPriceAtSale float64 `json:"cost_price_at_sale"`
	Quantity        int64   `json:"quantity"`
	Subtotal        float64 `json:"subtotal"`
}

type saleDetailResp struct {
	ID            string         `json:"id"`
	TotalAmount   float64        `json:"total_amount"`
	PaymentAmount float64        `json:"payment_amount"`
	ChangeAmount  float64        `json:"change_amount"`
	Discount      float64        `json:"discount"`
	PaymentMethod string         `json:"payment_method"`
	CashierID     *uint64        `json:"cashier_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Items         []saleItemResp `json:"items"`
}

func toSaleDetail(tx model.Transaction, items []model.TransactionItem) saleDetailResp {
	out := saleDetailResp{
		ID:            tx.ID,
		TotalAmount:   tx.TotalAmount,
		PaymentAmount: tx.PaymentAmount,
		ChangeAmount:  tx.ChangeAmount,
		Discount:      tx.Discount,
		PaymentMethod: tx.PaymentMethod,
		CashierID:     tx.CashierID,
		CreatedAt:     tx.CreatedAt,
		Items:         make([]saleItemResp, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, saleItemResp{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			PriceAtSale:     it.PriceAtSale,
			CostPriceAtSale: it.CostPriceAtSale,
			Quantity:        it.Quantity,
			Subtotal:        it.PriceAtSale * float64(it.Quantity),
		})
	}
	return out
}

// Create records a sale. The server never trusts client arithmetic:
// prices and costs are read from the catalog, the total is recomputed,
// and the payment must cover it before anything is written.
func (h *SaleHandler) Create(c echo.Context) error {
	var req saleReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if len(req.Items) == 0 {
		return respondErr(c, http.StatusBadRequest, "at least one item required")
	}
	if req.Discount < 0 {
		return respondErr(c, http.StatusBadRequest, "discount must not be negative")
	}
	for _, it := range req.Items {
		if it.ProductID == "" {
			return respondErr(c, http.StatusBadRequest, "item product_id required")
		}
		if it.Quantity <= 0 {
			return respondErr(c, http.StatusBadRequest, "item quantity must be positive")
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Resolve each line against the catalog; price and cost are
	// captured here so the record survives later product edits.
	in := repository.SaleInput{
		Discount:      req.Discount,
		PaymentAmount: req.PaymentAmount,
		PaymentMethod: req.PaymentMethod,
		Items:         make([]repository.SaleItemInput, 0, len(req.Items)),
	}
	var total float64
	for _, it := range req.Items {
		p, err := h.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			if err == repository.ErrNotFound {
				return respondErr(c, http.StatusNotFound, "product not found: "+it.ProductID)
			}
			return storeErr(c, err)
		}
		total += p.Price * float64(it.Quantity)
		in.Items = append(in.Items, repository.SaleItemInput{
			ProductID:       p.ID,
			ProductName:     p.Name,
			PriceAtSale:     p.Price,
			CostPriceAtSale: p.Cost,
			Quantity:        it.Quantity,
		})
	}
	total -= req.Discount
	if total < 0 {
		total = 0
	}
	if req.PaymentAmount < total {
		return respondErr(c, http.StatusBadRequest, "insufficient payment")
	}
	in.TotalAmount = total
	in.ChangeAmount = req.PaymentAmount - total

	if id, ok := caller(c); ok {
		in.CashierID = &id.ID
	}

	res, err := h.Sales.RecordSale(ctx, in)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, saleResp{
		TransactionID: res.TransactionID,
		Timestamp:     res.CreatedAt.UnixMilli(),
	})
}

func (h *SaleHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tx, items, err := h.Sales.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, toSaleDetail(tx, items))
}

// List returns transaction headers, optionally bounded by ?from / ?to.
func (h *SaleHandler) List(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	txs, err := h.Sales.List(ctx, from, to)
	if err != nil {
		return storeErr(c, err)
	}
	out := make([]saleDetailResp, 0, len(txs))
	for _, tx := range txs {
		d := toSaleDetail(tx, nil)
		d.Items = nil
		out = append(out, d)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SaleHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sales.Delete(ctx, c.Param("id")); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAll wipes the transaction history. Admin-only, meant for
// end-of-period resets.
func (h *SaleHandler) DeleteAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	n, err := h.Sales.DeleteAll(ctx)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
