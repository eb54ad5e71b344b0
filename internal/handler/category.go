package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
)

// CategoryHandler exposes category CRUD. Reads are open to any
// authenticated role, mutations are admin-only (enforced in the router).
type CategoryHandler struct {
	Categories repository.CategoryStore
}

func NewCategoryHandler(s repository.CategoryStore) *CategoryHandler {
	return &CategoryHandler{Categories: s}
}

type categoryReq struct {
	Name string `json:"name"`
}
type categoryResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return storeErr(c, err)
	}
	out := make([]categoryResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryResp{ID: cat.ID, Name: cat.Name})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, c.Param("id"))
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, categoryResp{ID: cat.ID, Name: cat.Name})
}

func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return respondErr(c, http.StatusBadRequest, "name required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat := model.Category{Name: req.Name}
	if err := h.Categories.Create(ctx, &cat); err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, categoryResp{ID: cat.ID, Name: cat.Name})
}

func (h *CategoryHandler) Update(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return respondErr(c, http.StatusBadRequest, "name required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat := model.Category{ID: c.Param("id"), Name: req.Name}
	if err := h.Categories.Update(ctx, &cat); err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, categoryResp{ID: cat.ID, Name: cat.Name})
}

// Delete removes a category. Products still referencing it stay readable
// and resolve their category name as "Uncategorized".
func (h *CategoryHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Categories.Delete(ctx, c.Param("id")); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
