package router

import (
	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints: the
// geography tree, the listing catalog, the criteria search and visitor
// submissions. The optional middlewares (response cache, rate limiter) apply
// to the whole group.
func RegisterPublic(e *echo.Echo, g *handler.GeographyHandler, p *handler.PropertyPublicHandler,
	m *handler.MessageHandler, mw ...echo.MiddlewareFunc) {

	pub := e.Group("/v1", mw...)

	// ---- Geography, nested ----
	pub.GET("/provinces", g.ListProvinces)
	pub.GET("/provinces/:province_id/districts", g.ListDistricts)
	pub.GET("/provinces/:province_id/districts/:district_id/sectors", g.ListSectors)
	pub.GET("/provinces/:province_id/districts/:district_id/sectors/:sector_id/cells", g.ListCells)

	// ---- Geography, flat (?province= / ?district= / ?sector=) ----
	pub.GET("/districts", g.ListDistricts)
	pub.GET("/sectors", g.ListSectors)
	pub.GET("/cells", g.ListCells)

	// ---- Catalog ----
	pub.GET("/properties", p.List)
	pub.GET("/properties/:id", p.Get)
	pub.GET("/properties/:id/images", p.Images)
	pub.POST("/search/properties", p.Search)
	pub.GET("/property-types", p.ListTypes)
	pub.GET("/property-types/:id/properties", p.ListByType)
	pub.GET("/property-types/:type_id/properties/:id/images", p.ImagesByType)

	// ---- Catalog filtered by geography path ----
	pub.GET("/provinces/:province_id/properties", p.ListByPath)
	pub.GET("/provinces/:province_id/districts/:district_id/properties", p.ListByPath)
	pub.GET("/provinces/:province_id/districts/:district_id/sectors/:sector_id/properties", p.ListByPath)
	pub.GET("/provinces/:province_id/districts/:district_id/sectors/:sector_id/cells/:cell_id/properties", p.ListByPath)

	// ---- Visitor submissions ----
	pub.POST("/contact", m.CreateContact)
	pub.POST("/testimonials", m.CreateTestimonial)
	pub.GET("/testimonials", m.ListTestimonials)
}
