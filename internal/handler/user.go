package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/config"
	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
)

// UserHandler exposes admin-only user management.
type UserHandler struct {
	Cfg   config.Config
	Users repository.UserStore
}

func NewUserHandler(cfg config.Config, u repository.UserStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List returns all users without their password hashes.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return storeErr(c, err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a user with an admin-chosen role. Unknown roles are
// rejected at the boundary.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, "username/password required")
	}
	if !model.ValidRole(req.Role) {
		return respondErr(c, http.StatusBadRequest, "role must be admin or cashier")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Password, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrConflict {
			return respondErr(c, http.StatusConflict, "username already exists")
		}
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, userPart{ID: uid, Username: req.Username, Role: req.Role})
}

// Delete removes a user. Self-deletion is forbidden so an admin cannot
// lock themselves out mid-session.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return respondErr(c, http.StatusBadRequest, "invalid user id")
	}
	if ident, ok := caller(c); ok && ident.ID == id {
		return respondErr(c, http.StatusBadRequest, "cannot delete own account")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return storeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
