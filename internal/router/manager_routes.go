package router

import (
	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/handler"
	"github.com/murenzi/renting-api/internal/middleware"
	"github.com/murenzi/renting-api/internal/repository"
)

// RegisterManager registers MANAGER-scoped administration under /v1:
// geography tree maintenance, property types, and moderation of contact
// messages and testimonials.
func RegisterManager(e *echo.Echo, g *handler.GeographyHandler, p *handler.PropertyPublicHandler,
	m *handler.MessageHandler, jwtSecret string) {

	adm := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(repository.RoleManager),
	)

	// ---- Geography tree ----
	adm.POST("/provinces", g.CreateProvince)
	adm.POST("/provinces/:province_id/districts", g.CreateDistrict)
	adm.POST("/provinces/:province_id/districts/:district_id/sectors", g.CreateSector)
	adm.POST("/provinces/:province_id/districts/:district_id/sectors/:sector_id/cells", g.CreateCell)
	adm.DELETE("/provinces/:id", g.DeleteProvince)
	adm.DELETE("/districts/:id", g.DeleteDistrict)
	adm.DELETE("/sectors/:id", g.DeleteSector)
	adm.DELETE("/cells/:id", g.DeleteCell)

	// ---- Property types ----
	adm.POST("/property-types", p.CreateType)
	adm.PUT("/property-types/:id", p.UpdateType)
	adm.DELETE("/property-types/:id", p.DeleteType)

	// ---- Moderation ----
	adm.GET("/contact", m.ListContacts)
	adm.PATCH("/contact/:id/read", m.MarkContactRead)
	adm.DELETE("/contact/:id", m.DeleteContact)
	adm.GET("/testimonials/all", m.ListAllTestimonials)
	adm.PATCH("/testimonials/:id/confirm", m.ConfirmTestimonial)
	adm.DELETE("/testimonials/:id", m.DeleteTestimonial)
}
