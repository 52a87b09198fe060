// This file defines handlers for the administrative geography tree. Reads are
// public; creating and deleting nodes is reserved for managers.

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/repository"
	"github.com/murenzi/renting-api/internal/resolver"
)

// GeographyHandler serves the province/district/sector/cell hierarchy.
type GeographyHandler struct {
	Geo      *repository.GeographyRepo
	Resolver *resolver.Resolver
}

func NewGeographyHandler(g *repository.GeographyRepo) *GeographyHandler {
	return &GeographyHandler{Geo: g, Resolver: resolver.New(g)}
}

type nodeReq struct {
	Name string `json:"name"`
}

// resolveGeoPath validates the :province_id/:district_id/... prefix of a
// nested route and returns the deepest segment's filter. Missing params are
// skipped so the same helper serves every depth.
func resolveGeoPath(c echo.Context, r *resolver.Resolver) (resolver.Filter, error) {
	levels := []struct {
		param string
		level resolver.Level
	}{
		{"province_id", resolver.LevelProvince},
		{"district_id", resolver.LevelDistrict},
		{"sector_id", resolver.LevelSector},
		{"cell_id", resolver.LevelCell},
	}
	var segs []resolver.Segment
	for _, l := range levels {
		if c.Param(l.param) == "" {
			continue
		}
		id, err := paramID(c, l.param)
		if err != nil {
			return resolver.Filter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		segs = append(segs, resolver.Segment{Level: l.level, ID: id})
	}
	f, err := r.Resolve(c.Request().Context(), segs...)
	if err != nil {
		if err == resolver.ErrSegmentNotFound || err == resolver.ErrPathMismatch {
			// A child under the wrong parent is indistinguishable from a
			// missing one to the client.
			return resolver.Filter{}, echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return resolver.Filter{}, echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	return f, nil
}

// ----- public reads -----

func (h *GeographyHandler) ListProvinces(c echo.Context) error {
	items, err := h.Geo.ListProvinces(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListDistricts serves both the nested route and the flat ?province= form.
func (h *GeographyHandler) ListDistricts(c echo.Context) error {
	ctx := c.Request().Context()
	var parent uint64
	if c.Param("province_id") != "" {
		f, err := resolveGeoPath(c, h.Resolver)
		if err != nil {
			return err
		}
		parent = f.ID
	} else {
		id, err := queryID(c, "province")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid province"})
		}
		parent = id
	}
	items, err := h.Geo.ListDistricts(ctx, parent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *GeographyHandler) ListSectors(c echo.Context) error {
	ctx := c.Request().Context()
	var parent uint64
	if c.Param("district_id") != "" {
		f, err := resolveGeoPath(c, h.Resolver)
		if err != nil {
			return err
		}
		parent = f.ID
	} else {
		id, err := queryID(c, "district")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid district"})
		}
		parent = id
	}
	items, err := h.Geo.ListSectors(ctx, parent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *GeographyHandler) ListCells(c echo.Context) error {
	ctx := c.Request().Context()
	var parent uint64
	if c.Param("sector_id") != "" {
		f, err := resolveGeoPath(c, h.Resolver)
		if err != nil {
			return err
		}
		parent = f.ID
	} else {
		id, err := queryID(c, "sector")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sector"})
		}
		parent = id
	}
	items, err := h.Geo.ListCells(ctx, parent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ----- manager writes -----

func bindNodeName(c echo.Context) (string, error) {
	var req nodeReq
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	return name, nil
}

func (h *GeographyHandler) CreateProvince(c echo.Context) error {
	name, err := bindNodeName(c)
	if err != nil {
		return err
	}
	p, err := h.Geo.CreateProvince(c.Request().Context(), name)
	if err != nil {
		return nodeWriteError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *GeographyHandler) CreateDistrict(c echo.Context) error {
	f, err := resolveGeoPath(c, h.Resolver)
	if err != nil {
		return err
	}
	name, err := bindNodeName(c)
	if err != nil {
		return err
	}
	d, err := h.Geo.CreateDistrict(c.Request().Context(), f.ID, name)
	if err != nil {
		return nodeWriteError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *GeographyHandler) CreateSector(c echo.Context) error {
	f, err := resolveGeoPath(c, h.Resolver)
	if err != nil {
		return err
	}
	name, err := bindNodeName(c)
	if err != nil {
		return err
	}
	s, err := h.Geo.CreateSector(c.Request().Context(), f.ID, name)
	if err != nil {
		return nodeWriteError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *GeographyHandler) CreateCell(c echo.Context) error {
	f, err := resolveGeoPath(c, h.Resolver)
	if err != nil {
		return err
	}
	name, err := bindNodeName(c)
	if err != nil {
		return err
	}
	cl, err := h.Geo.CreateCell(c.Request().Context(), f.ID, name)
	if err != nil {
		return nodeWriteError(c, err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *GeographyHandler) DeleteProvince(c echo.Context) error { return h.deleteNode(c, "province") }
func (h *GeographyHandler) DeleteDistrict(c echo.Context) error { return h.deleteNode(c, "district") }
func (h *GeographyHandler) DeleteSector(c echo.Context) error   { return h.deleteNode(c, "sector") }
func (h *GeographyHandler) DeleteCell(c echo.Context) error     { return h.deleteNode(c, "cell") }

func (h *GeographyHandler) deleteNode(c echo.Context, kind string) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	switch kind {
	case "province":
		err = h.Geo.DeleteProvince(ctx, id)
	case "district":
		err = h.Geo.DeleteDistrict(ctx, id)
	case "sector":
		err = h.Geo.DeleteSector(ctx, id)
	case "cell":
		err = h.Geo.DeleteCell(ctx, id)
	}
	if err != nil {
		switch err {
		case repository.ErrNodeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": kind + " not found"})
		case repository.ErrHasDependents:
			return c.JSON(http.StatusConflict, echo.Map{"error": "has child divisions"})
		case repository.ErrReferencedByResource:
			return c.JSON(http.StatusConflict, echo.Map{"error": "referenced by properties or user locations"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

func nodeWriteError(c echo.Context, err error) error {
	switch err {
	case repository.ErrNameExists:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name already exists"})
	case repository.ErrNodeNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "parent not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
