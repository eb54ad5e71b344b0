package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/config"
	"github.com/iliyamo/retail-pos/internal/model"
	"github.com/iliyamo/retail-pos/internal/repository"
	"github.com/iliyamo/retail-pos/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  repository.UserStore
	Tokens repository.TokenStore
}

func NewAuthHandler(cfg config.Config, u repository.UserStore, t repository.TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// issuePair signs an access token and persists a fresh refresh token hash.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: u.ID, Username: u.Username, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Register creates a cashier account and returns tokens immediately.
// Self-registration always yields the cashier role; only an admin can
// create other admins (see UserHandler.Create).
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, "username/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Password, model.RoleCashier, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrConflict {
			return respondErr(c, http.StatusConflict, "username already exists")
		}
		return storeErr(c, err)
	}

	resp, err := h.issuePair(ctx, model.User{ID: uid, Username: req.Username, Role: model.RoleCashier})
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, "username/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == repository.ErrNotFound {
			return respondErr(c, http.StatusUnauthorized, "invalid credentials")
		}
		return storeErr(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, "invalid credentials")
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates a refresh token by hash, deletes it and issues a new
// pair (rotation). An expired token is rejected exactly like an unknown
// one; the expired row is removed, never silently extended.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "invalid refresh token")
	}
	_ = h.Tokens.DeleteByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return respondErr(c, http.StatusUnauthorized, "invalid refresh token")
		}
		return storeErr(c, err)
	}

	resp, err := h.issuePair(ctx, u)
	if err != nil {
		return storeErr(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout deletes refresh tokens. With a refresh_token in the body that
// single session ends; an authenticated call without one ends every
// session of the caller. Deletion is outright removal of the rows.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return respondErr(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.DeleteByHash(ctx, hash); err != nil {
			return storeErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	if ident, ok := caller(c); ok {
		if err := h.Tokens.DeleteAllForUser(ctx, ident.ID); err != nil {
			return storeErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
	return respondErr(c, http.StatusBadRequest, "provide refresh_token or an access token")
}

// Me returns the authenticated caller's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := caller(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, userPart{ID: ident.ID, Username: ident.Username, Role: ident.Role})
}
