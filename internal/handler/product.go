package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
)

// ProductHandler exposes product CRUD and lookup. Reads are open to any
// authenticated role, mutations are admin-only (enforced in the router).
type ProductHandler struct {
	Products   repository.ProductStore
	Categories repository.CategoryStore
}

func NewProductHandler(p repository.ProductStore, cat repository.CategoryStore) *ProductHandler {
	return &ProductHandler{Products: p, Categories: cat}
}

type productReq struct {
	ID         string  `json:"id"` // optional; generated when empty
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Cost       float64 `json:"cost"`
	Stock      int64   `json:"stock"`
	Barcode    *string `json:"barcode"`
	CategoryID *string `json:"category_id"`
	ImageURL   *string `json:"image_url"`
}

type productResp struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Cost         float64 `json:"cost"`
	Stock        int64   `json:"stock"`
	Barcode      *string `json:"barcode,omitempty"`
	CategoryID   *string `json:"category_id,omitempty"`
	CategoryName string  `json:"category_name"`
	ImageURL     *string `json:"image_url,omitempty"`
}

func toProductResp(d repository.ProductDetail) productResp {
	return productResp{
		ID:           d.ID,
		Name:         d.Name,
		Price:        d.Price,
		Cost:         d.Cost,
		Stock:        d.Stock,
		Barcode:      d.Barcode,
		CategoryID:   d.CategoryID,
		CategoryName: d.CategoryName,
		ImageURL:     d.ImageURL,
	}
}

// validate rejects malformed product input before any write.
func (req *productReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name required"
	}
	if req.Price < 0 || req.Cost < 0 {
		return "price and cost must not be negative"
	}
	if req.Stock < 0 {
		return "stock must not be negative"
	}
	return ""
}

// checkCategory verifies a supplied category reference exists.
func (h *ProductHandler) checkCategory(ctx context.Context, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	_, err := h.Categories.GetByID(ctx, *id)
	return err
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ds, err := h.Products.List(ctx)
	if err != nil {
		return storeErr(c, err)
	}
	out := make([]productResp, 0, len(ds))
	for _, d := range ds {
		out = append(out, toProductResp(d))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Products.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(d))
}

// GetByBarcode serves the scanner lookup path at the register.
func (h *ProductHandler) GetByBarcode(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Products.GetByBarcode(ctx, c.Param("code"))
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(d))
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return respondErr(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.checkCategory(ctx, req.CategoryID); err != nil {
		if err == repository.ErrNotFound {
			return respondErr(c, http.StatusNotFound, "category not found")
		}
		return storeErr(c, err)
	}
	p := model.Product{
		ID:         strings.TrimSpace(req.ID),
		Name:       req.Name,
		Price:      req.Price,
		Cost:       req.Cost,
		Stock:      req.Stock,
		Barcode:    req.Barcode,
		CategoryID: req.CategoryID,
		ImageURL:   req.ImageURL,
	}
	if err := h.Products.Create(ctx, &p); err != nil {
		return storeErr(c, err)
	}
	d, err := h.Products.GetByID(ctx, p.ID)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResp(d))
}

func (h *ProductHandler) Update(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if msg := req.validate(); msg != "" {
		return respondErr(c, http.StatusBadRequest, msg)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.checkCategory(ctx, req.CategoryID); err != nil {
		if err == repository.ErrNotFound {
			return respondErr(c, http.StatusNotFound, "category not found")
		}
		return storeErr(c, err)
	}
	p := model.Product{
		ID:         c.Param("id"),
		Name:       req.Name,
		Price:      req.Price,
		Cost:       req.Cost,
		Stock:      req.Stock,
		Barcode:    req.Barcode,
		CategoryID: req.CategoryID,
		ImageURL:   req.ImageURL,
	}
	if err := h.Products.Update(ctx, &p); err != nil {
		return storeErr(c, err)
	}
	d, err := h.Products.GetByID(ctx, p.ID)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(d))
}

// Delete removes a product. Historical transaction items keep their
// denormalized name and prices.
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Products.Delete(ctx, c.Param("id")); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
