package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/handler"
	"github.com/murenzi/renting-api/internal/middleware"
	"github.com/murenzi/renting-api/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the account lifecycle under /v1/auth and the
// protected /v1/me endpoint. Activation and reset-confirm links carry the
// uid/token pair issued by email.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.GET("/activate/:uid/:token", a.Activate)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/password-reset", a.PasswordReset)
	g.POST("/password-reset/confirm/:uid/:token", a.PasswordResetConfirm)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(repository.RoleTenant, repository.RoleLandlord, repository.RoleManager),
	)
	auth.GET("/me", a.Me)
}
