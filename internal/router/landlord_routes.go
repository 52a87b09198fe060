package router

import (
	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/handler"
	"github.com/murenzi/renting-api/internal/middleware"
	"github.com/murenzi/renting-api/internal/repository"
)

// RegisterLandlord registers LANDLORD-scoped listing management under /v1.
// All routes require a valid JWT and the LANDLORD role; the handlers also
// require an existing landlord profile.
func RegisterLandlord(e *echo.Echo, o *handler.PropertyOwnerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(repository.RoleLandlord),
	)

	// ---- Listings ----
	g.POST("/properties", o.Create)
	g.PUT("/properties/:id", o.Update)
	g.DELETE("/properties/:id", o.Delete)
	g.PUT("/properties/:id/images", o.ReplaceImages)
	g.GET("/me/properties", o.MyProperties)

	// ---- Publishing payments ----
	g.POST("/properties/:id/payments", o.CreatePayment)
	g.GET("/me/payments", o.MyPayments)
}
