// This file defines the /v1/me profile endpoints. Landlord and manager
// profiles are 1:1 with the user and share one handler parameterized by kind;
// the user's home location is a chain-validated geography reference.

package handler

import (
	"database/sql"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/config"
	"github.com/murenzi/renting-api/internal/guard"
	"github.com/murenzi/renting-api/internal/repository"
	"github.com/murenzi/renting-api/internal/utils"
)

// ProfileHandler serves role profiles and the user location.
type ProfileHandler struct {
	Cfg      config.Config
	Profiles *repository.ProfileRepo
	Geo      *repository.GeographyRepo
}

func NewProfileHandler(cfg config.Config, p *repository.ProfileRepo, g *repository.GeographyRepo) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Profiles: p, Geo: g}
}

// roleFor maps a profile kind to the role allowed to own it.
func roleFor(kind string) string {
	if kind == "manager" {
		return repository.RoleManager
	}
	return repository.RoleLandlord
}

func (h *ProfileHandler) CreateLandlord(c echo.Context) error { return h.createProfile(c, "landlord") }
func (h *ProfileHandler) GetLandlord(c echo.Context) error    { return h.getProfile(c, "landlord") }
func (h *ProfileHandler) UpdateLandlord(c echo.Context) error { return h.updateProfile(c, "landlord") }
func (h *ProfileHandler) CreateManager(c echo.Context) error  { return h.createProfile(c, "manager") }
func (h *ProfileHandler) GetManager(c echo.Context) error     { return h.getProfile(c, "manager") }
func (h *ProfileHandler) UpdateManager(c echo.Context) error  { return h.updateProfile(c, "manager") }

// bindProfileForm reads the shared multipart fields; the image is optional
// and an empty path means "keep the stored one" on update.
func (h *ProfileHandler) bindProfileForm(c echo.Context, p *repository.Profile, kind string) error {
	p.Gender = strings.TrimSpace(c.FormValue("gender"))
	p.PhoneNumber = strings.TrimSpace(c.FormValue("phone_number"))
	if p.PhoneNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "phone_number required")
	}
	if fh, err := c.FormFile("profile_image"); err == nil {
		path, err := saveProfileImage(h.Cfg.MediaRoot, kind, fh)
		if err != nil {
			return err
		}
		p.ProfileImage = path
	}
	return nil
}

func saveProfileImage(mediaRoot, kind string, fh *multipart.FileHeader) (string, error) {
	path, err := utils.SaveImage(mediaRoot, "profiles/"+kind, fh)
	if err != nil {
		if err == utils.ErrBadExtension {
			return "", echo.NewHTTPError(http.StatusBadRequest, "unsupported image extension")
		}
		return "", echo.NewHTTPError(http.StatusInternalServerError, "store image failed")
	}
	return path, nil
}

func (h *ProfileHandler) createProfile(c echo.Context, kind string) error {
	pr := principalFrom(c)
	if !pr.Authenticated {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if pr.Role != roleFor(kind) && !pr.IsSuperuser {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "role mismatch"})
	}

	ctx := c.Request().Context()
	_, err := h.Profiles.GetProfileByUser(ctx, kind, pr.ID)
	exists := err == nil
	if err != nil && err != repository.ErrProfileNotFound {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if d := guard.Authorize(pr, guard.ActionCreate,
		guard.Resource{Kind: kind + "_profile", OwnerUserID: pr.ID, Exists: exists}); !d.Allowed {
		return denied(c, d)
	}

	p := &repository.Profile{UserID: pr.ID}
	if err := h.bindProfileForm(c, p, kind); err != nil {
		return err
	}
	if err := h.Profiles.CreateProfile(ctx, kind, p); err != nil {
		if err == repository.ErrProfileExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProfileHandler) getProfile(c echo.Context, kind string) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Profiles.GetProfileByUser(c.Request().Context(), kind, uid)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) updateProfile(c echo.Context, kind string) error {
	pr := principalFrom(c)
	if !pr.Authenticated {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := c.Request().Context()
	existing, err := h.Profiles.GetProfileByUser(ctx, kind, pr.ID)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if d := guard.Authorize(pr, guard.ActionUpdate,
		guard.Resource{Kind: kind + "_profile", OwnerUserID: existing.UserID}); !d.Allowed {
		return denied(c, d)
	}

	p := &repository.Profile{ID: existing.ID, UserID: pr.ID}
	if err := h.bindProfileForm(c, p, kind); err != nil {
		return err
	}
	if err := h.Profiles.UpdateProfile(ctx, kind, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}
	updated, err := h.Profiles.GetProfileByUser(ctx, kind, pr.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// ----- location -----

type locationReq struct {
	Province uint64 `json:"province"`
	District uint64 `json:"district"`
	Sector   uint64 `json:"sector"`
	Cell     uint64 `json:"cell"`
}

type locationResp struct {
	Province *uint64 `json:"province"`
	District *uint64 `json:"district"`
	Sector   *uint64 `json:"sector"`
	Cell     *uint64 `json:"cell"`
}

func locationOut(l *repository.UserLocation) locationResp {
	opt := func(v sql.NullInt64) *uint64 {
		if !v.Valid {
			return nil
		}
		u := uint64(v.Int64)
		return &u
	}
	return locationResp{
		Province: opt(l.ProvinceID),
		District: opt(l.DistrictID),
		Sector:   opt(l.SectorID),
		Cell:     opt(l.CellID),
	}
}

// GetLocation returns the caller's saved location, zeroed when unset.
func (h *ProfileHandler) GetLocation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	l, err := h.Profiles.GetLocation(c.Request().Context(), uid)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return c.JSON(http.StatusOK, locationResp{})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, locationOut(l))
}

// PutLocation upserts the caller's location. The ids must form a consistent
// chain from province down to the deepest one provided.
func (h *ProfileHandler) PutLocation(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	if err := h.Geo.ValidateChain(ctx, req.Province, req.District, req.Sector, req.Cell); err != nil {
		switch err {
		case repository.ErrNodeNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown geography node"})
		case repository.ErrInconsistentHierarchy:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "geography nodes do not form a chain"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	opt := func(v uint64) sql.NullInt64 {
		if v == 0 {
			return sql.NullInt64{}
		}
		return sql.NullInt64{Int64: int64(v), Valid: true}
	}
	l := &repository.UserLocation{
		UserID:     uid,
		ProvinceID: opt(req.Province),
		DistrictID: opt(req.District),
		SectorID:   opt(req.Sector),
		CellID:     opt(req.Cell),
	}
	if err := h.Profiles.UpsertLocation(ctx, l); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save location failed"})
	}
	return c.JSON(http.StatusOK, locationOut(l))
}
