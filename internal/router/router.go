package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/handler"
	"github.com/iliyamo/exam-seat-allocator/internal/middleware"
	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// The health check pings db when it is non-nil.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the session endpoints under /v1/auth and the
// operator endpoints on the protected group g.  Login, refresh and logout
// are public; logout accepts either a refresh token or a bearer token.
func RegisterAuth(e *echo.Echo, g *echo.Group, a *handler.AuthHandler) {
	ag := e.Group("/v1/auth")
	ag.POST("/login", a.Login)
	// rotates the refresh token
	ag.POST("/refresh", a.Refresh)
	ag.POST("/refresh-access", a.RefreshAccess)
	ag.POST("/logout", a.Logout)

	g.GET("/me", a.Me)
	g.POST("/operators", a.CreateOperator, middleware.RequireRole(model.RoleAdmin))
}

// Protected returns the /v1 group every console route hangs off: a valid
// access token of an ADMIN or OPERATOR is required, then the extra
// middleware (rate limit, cache invalidation) runs in order.
func Protected(e *echo.Echo, jwtSecret string, extra ...echo.MiddlewareFunc) *echo.Group {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleOperator),
	}
	return e.Group("/v1", append(mw, extra...)...)
}
