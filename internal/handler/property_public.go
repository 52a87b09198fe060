// This file defines the public catalog endpoints: browsing published
// listings, nested geography drill-down, and the criteria search.

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/repository"
	"github.com/murenzi/renting-api/internal/resolver"
)

// PropertyPublicHandler aggregates repositories for unauthenticated browsing.
type PropertyPublicHandler struct {
	Properties *repository.PropertyRepo
	Types      *repository.PropertyTypeRepo
	Resolver   *resolver.Resolver
}

func NewPropertyPublicHandler(p *repository.PropertyRepo, t *repository.PropertyTypeRepo, g *repository.GeographyRepo) *PropertyPublicHandler {
	return &PropertyPublicHandler{Properties: p, Types: t, Resolver: resolver.New(g)}
}

type propertyPage struct {
	Items []*repository.Property `json:"items"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
}

// List serves GET /v1/properties with flat geography filters, free-text
// search and price ordering.
func (h *PropertyPublicHandler) List(c echo.Context) error {
	pid, err1 := queryID(c, "province")
	did, err2 := queryID(c, "district")
	sid, err3 := queryID(c, "sector")
	cid, err4 := queryID(c, "cell")
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid geography filter"})
	}
	typeID, err := queryID(c, "property_type")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property_type"})
	}

	// Flat filters resolve through the same chain walk as nested paths, so
	// inconsistent combinations fail instead of silently keeping the deepest.
	f, err := h.Resolver.ResolveFlat(c.Request().Context(), pid, did, sid, cid)
	if err != nil {
		if err == resolver.ErrSegmentNotFound || err == resolver.ErrPathMismatch {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "geography filter not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	q := repository.PropertyListQuery{
		Geo:            f,
		PropertyTypeID: typeID,
		Text:           strings.TrimSpace(c.QueryParam("q")),
		Order:          c.QueryParam("order"),
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "page_size", 20),
	}
	items, total, err := h.Properties.List(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, propertyPage{Items: items, Total: total, Page: q.Page})
}

// ListByPath serves the nested geography routes ending in /properties. The
// path segments are chain-validated before filtering.
func (h *PropertyPublicHandler) ListByPath(c echo.Context) error {
	f, err := resolveGeoPath(c, h.Resolver)
	if err != nil {
		return err
	}
	q := repository.PropertyListQuery{
		Geo:      f,
		Text:     strings.TrimSpace(c.QueryParam("q")),
		Order:    c.QueryParam("order"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	items, total, err := h.Properties.List(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, propertyPage{Items: items, Total: total, Page: q.Page})
}

// Get returns a single published listing with its images.
func (h *PropertyPublicHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	p, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !p.Status {
		// Unpublished listings are only visible to their owner.
		pr := principalFrom(c)
		_, ownerUID, err := h.Properties.OwnerUserID(ctx, id)
		if err != nil || (!pr.IsSuperuser && pr.ID != ownerUID) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
	}
	images, err := h.Properties.ListImages(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"property": p, "images": images})
}

// Images lists a property's stored image paths.
func (h *PropertyPublicHandler) Images(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Properties.GetByID(ctx, id); err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	images, err := h.Properties.ListImages(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": images})
}

// ImagesByType serves the fully nested member route ending in /images. The
// property must belong to the named type or the member path does not exist.
func (h *PropertyPublicHandler) ImagesByType(c echo.Context) error {
	typeID, err := paramID(c, "type_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid type id"})
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Types.GetByID(ctx, typeID); err != nil {
		if err == repository.ErrPropertyTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	p, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if p.PropertyTypeID != typeID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}
	images, err := h.Properties.ListImages(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": images})
}

// Search serves POST /v1/search/properties with a sparse criteria body.
func (h *PropertyPublicHandler) Search(c echo.Context) error {
	var q repository.PropertySearchQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	items, total, err := h.Properties.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, propertyPage{Items: items, Total: total, Page: page})
}

// ----- property types -----

// ListTypes is public; the write operations below are manager-only.
func (h *PropertyPublicHandler) ListTypes(c echo.Context) error {
	items, err := h.Types.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListByType lists published properties of one type.
func (h *PropertyPublicHandler) ListByType(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Types.GetByID(ctx, id); err != nil {
		if err == repository.ErrPropertyTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	q := repository.PropertyListQuery{
		PropertyTypeID: id,
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "page_size", 20),
	}
	items, total, err := h.Properties.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, propertyPage{Items: items, Total: total, Page: q.Page})
}

func (h *PropertyPublicHandler) CreateType(c echo.Context) error {
	name, err := bindNodeName(c)
	if err != nil {
		return err
	}
	t, err := h.Types.Create(c.Request().Context(), name)
	if err != nil {
		if err == repository.ErrNameExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *PropertyPublicHandler) UpdateType(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	name, err := bindNodeName(c)
	if err != nil {
		return err
	}
	if err := h.Types.UpdateName(c.Request().Context(), id, name); err != nil {
		switch err {
		case repository.ErrPropertyTypeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property type not found"})
		case repository.ErrNameExists:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PropertyPublicHandler) DeleteType(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Types.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrPropertyTypeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property type not found"})
		case repository.ErrReferencedByResource:
			return c.JSON(http.StatusConflict, echo.Map{"error": "referenced by properties"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
