package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/blog-backend/internal/handler"
	"github.com/iliyamo/blog-backend/internal/middleware"
)

// RegisterRoutes registers routes that need no collaborators.  Currently it
// exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration, login, token refresh, logout and the
// protected profile endpoint.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, v middleware.AccessVerifier) {
	e.POST("/register", a.Register)
	e.POST("/login", a.Login)

	g := e.Group("/auth")
	g.POST("/refresh", a.Refresh)
	// Logout is stateless and therefore public.
	g.POST("/logout", a.Logout)
	g.GET("/profile", a.Profile, middleware.JWTAuth(v))
}

// RegisterPosts registers the post collection.  Reads are public and served
// through the response cache; mutations require a bearer token and, once
// they succeed, invalidate that cache.
func RegisterPosts(e *echo.Echo, p *handler.PostHandler, v middleware.AccessVerifier, cache *middleware.ResponseCache) {
	gate := middleware.JWTAuth(v)

	g := e.Group("/posts", cache.Middleware())
	g.GET("", p.List)
	g.GET("/:id", p.Get)
	g.POST("", p.Create, gate)
	g.PUT("/:id", p.Update, gate)
	g.DELETE("/:id", p.Delete, gate)
}

// RegisterAdmin registers staff-only endpoints.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, v middleware.AccessVerifier) {
	g := e.Group("/admin", middleware.JWTAuth(v), middleware.RequireStaff())
	g.GET("/users", a.ListUsers)
}
