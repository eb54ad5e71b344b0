// Package router wires HTTP routes to handlers and applies the auth
// middleware chain. Route groups encode the access policy: /v1/auth is
// open, everything else under /v1 requires a valid access token, and
// catalog/user mutations additionally require the admin role.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/handler"
	"github.com/iliyamo/retail-pos/internal/middleware"
	"github.com/iliyamo/retail-pos/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
// Currently it exposes only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token lifecycle endpoints. Register, login
// and refresh live under /v1/auth and need no session; /v1/me and logout
// require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts an optional refresh token in the body to end one
	// session; with a bearer token alone it ends them all.
	g.POST("/logout", a.Logout, middleware.OptionalJWTAuth(jwtSecret))

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers category and product routes. Every
// authenticated role may read the catalog; only admins may change it.
// cacheMW, when non-nil, caches the hot read endpoints.
func RegisterCatalog(e *echo.Echo, cat *handler.CategoryHandler, prod *handler.ProductHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	read := e.Group("/v1")
	read.Use(middleware.JWTAuth(jwtSecret))
	read.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	if cacheMW != nil {
		read.Use(cacheMW)
	}
	read.GET("/categories", cat.List)
	read.GET("/categories/:id", cat.Get)
	read.GET("/products", prod.List)
	read.GET("/products/:id", prod.Get)
	read.GET("/products/barcode/:code", prod.GetByBarcode)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/categories", cat.Create)
	admin.PUT("/categories/:id", cat.Update)
	admin.DELETE("/categories/:id", cat.Delete)
	admin.POST("/products", prod.Create)
	admin.PUT("/products/:id", prod.Update)
	admin.DELETE("/products/:id", prod.Delete)
}

// RegisterSales registers sale recording, receipts and reports. Both
// roles record and read sales and view reports; deleting history is an
// admin operation.
func RegisterSales(e *echo.Echo, sale *handler.SaleHandler, rcpt *handler.ReceiptHandler, rep *handler.ReportHandler, jwtSecret string, cacheMW echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	g.POST("/sales", sale.Create)
	g.GET("/sales", sale.List)
	g.GET("/sales/:id", sale.Get)
	g.POST("/sales/:id/receipt", rcpt.Queue)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.DELETE("/sales/:id", sale.Delete)
	admin.DELETE("/sales", sale.DeleteAll)

	reports := e.Group("/v1/reports")
	reports.Use(middleware.JWTAuth(jwtSecret))
	reports.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	if cacheMW != nil {
		reports.Use(cacheMW)
	}
	reports.GET("/daily-sales", rep.DailySales)
	reports.GET("/top-products", rep.TopProducts)
	reports.GET("/profit-loss", rep.ProfitLoss)
}

// RegisterUsers registers the admin-only user management routes.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.GET("", u.List)
	g.POST("", u.Create)
	g.DELETE("/:id", u.Delete)
}
