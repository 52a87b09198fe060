package router

import (
	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/handler"
	"github.com/murenzi/renting-api/internal/middleware"
	"github.com/murenzi/renting-api/internal/repository"
)

// RegisterProfile registers the /v1/me profile and location endpoints. Any
// authenticated role may manage its own location; the landlord and manager
// profile endpoints additionally check the matching role in the handler.
func RegisterProfile(e *echo.Echo, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group(
		"/v1/me",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(repository.RoleTenant, repository.RoleLandlord, repository.RoleManager),
	)

	g.GET("/location", p.GetLocation)
	g.PUT("/location", p.PutLocation)

	g.POST("/landlord", p.CreateLandlord)
	g.GET("/landlord", p.GetLandlord)
	g.PUT("/landlord", p.UpdateLandlord)

	g.POST("/manager", p.CreateManager)
	g.GET("/manager", p.GetManager)
	g.PUT("/manager", p.UpdateManager)
}
