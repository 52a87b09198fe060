// This file defines the landlord endpoints: listing CRUD, wholesale image
// replacement, and publishing payments. Every mutation is double-checked: the
// guard decides on the loaded resource, and the repository's WHERE clause is
// owner-scoped.

package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/config"
	"github.com/murenzi/renting-api/internal/guard"
	"github.com/murenzi/renting-api/internal/queue"
	"github.com/murenzi/renting-api/internal/repository"
	"github.com/murenzi/renting-api/internal/service/publisher"
	"github.com/murenzi/renting-api/internal/utils"
)

// PropertyOwnerHandler bundles dependencies for landlord listing management.
type PropertyOwnerHandler struct {
	Cfg        config.Config
	Properties *repository.PropertyRepo
	Types      *repository.PropertyTypeRepo
	Profiles   *repository.ProfileRepo
	Geo        *repository.GeographyRepo
	Payments   *repository.PaymentRepo
}

func NewPropertyOwnerHandler(cfg config.Config, p *repository.PropertyRepo, t *repository.PropertyTypeRepo,
	pr *repository.ProfileRepo, g *repository.GeographyRepo, pay *repository.PaymentRepo) *PropertyOwnerHandler {
	return &PropertyOwnerHandler{Cfg: cfg, Properties: p, Types: t, Profiles: pr, Geo: g, Payments: pay}
}

// landlordID resolves the caller's landlord profile. Create and the "my"
// views are unusable until the profile exists; mutations of an existing
// listing go through ownerScope instead so superusers are not gated on a
// profile of their own.
func (h *PropertyOwnerHandler) landlordID(c echo.Context) (uint64, uint64, error) {
	uid, err := getUserID(c)
	if err != nil {
		return 0, 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	p, err := h.Profiles.GetProfileByUser(c.Request().Context(), "landlord", uid)
	if err != nil {
		if err == repository.ErrProfileNotFound {
			return 0, 0, echo.NewHTTPError(http.StatusForbidden, "landlord profile required")
		}
		return 0, 0, echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	return p.ID, uid, nil
}

// ownerScope authorizes act against the property's owner and returns the
// listing's own landlord id for the row-scoped repository call. The guard
// lets the owner and superusers through; scoping the SQL to the row's
// landlord keeps both working against the same WHERE clause.
func (h *PropertyOwnerHandler) ownerScope(c echo.Context, act guard.Action, kind string, id uint64) (uint64, error) {
	landlordID, ownerUID, err := h.Properties.OwnerUserID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrPropertyNotFound {
			return 0, echo.NewHTTPError(http.StatusNotFound, "property not found")
		}
		return 0, echo.NewHTTPError(http.StatusInternalServerError, "database error")
	}
	if d := guard.Authorize(principalFrom(c), act,
		guard.Resource{Kind: kind, OwnerUserID: ownerUID}); !d.Allowed {
		return 0, deniedErr(d)
	}
	return landlordID, nil
}

// bindPropertyForm reads the multipart/form fields shared by create and
// update into p. Numeric fields reject garbage; floors is optional.
func bindPropertyForm(c echo.Context, p *repository.Property) error {
	p.Title = strings.TrimSpace(c.FormValue("title"))
	p.Description = strings.TrimSpace(c.FormValue("description"))
	p.PlotSize = strings.TrimSpace(c.FormValue("plot_size"))
	p.RentingPrice = strings.TrimSpace(c.FormValue("renting_price"))
	p.Street = strings.TrimSpace(c.FormValue("street"))
	if p.Title == "" || p.RentingPrice == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and renting_price required")
	}

	u64 := func(name string) (uint64, error) {
		v := c.FormValue(name)
		if v == "" {
			return 0, nil
		}
		return strconv.ParseUint(v, 10, 64)
	}
	var err error
	if p.PropertyTypeID, err = u64("property_type"); err != nil || p.PropertyTypeID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "property_type required")
	}
	var n uint64
	if n, err = u64("bedrooms"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bedrooms")
	}
	p.Bedrooms = uint32(n)
	if n, err = u64("bathrooms"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid bathrooms")
	}
	p.Bathrooms = uint32(n)
	p.IsFurnished = c.FormValue("is_furnished") == "true" || c.FormValue("is_furnished") == "1"
	if v := c.FormValue("floors"); v != "" {
		fl, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid floors")
		}
		p.Floors = sql.NullInt32{Int32: int32(fl), Valid: true}
	}
	if p.ProvinceID, err = u64("province"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid province")
	}
	if p.DistrictID, err = u64("district"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid district")
	}
	if p.SectorID, err = u64("sector"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sector")
	}
	if p.CellID, err = u64("cell"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cell")
	}
	return nil
}

// checkReferences validates the property type and the geography chain of a
// bound form before any row is written.
func (h *PropertyOwnerHandler) checkReferences(c echo.Context, p *repository.Property) error {
	ctx := c.Request().Context()
	if _, err := h.Types.GetByID(ctx, p.PropertyTypeID); err != nil {
		if err == repository.ErrPropertyTypeNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown property type"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.Geo.ValidateChain(ctx, p.ProvinceID, p.DistrictID, p.SectorID, p.CellID); err != nil {
		switch err {
		case repository.ErrNodeNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown geography node"})
		case repository.ErrInconsistentHierarchy:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "geography nodes do not form a chain"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return nil
}

// Create handles POST /v1/properties (multipart with images[]). New listings
// start unpublished; a publishing payment makes them visible.
func (h *PropertyOwnerHandler) Create(c echo.Context) error {
	landlordID, _, err := h.landlordID(c)
	if err != nil {
		return err
	}

	p := &repository.Property{LandlordID: landlordID}
	if err := bindPropertyForm(c, p); err != nil {
		return err
	}
	if err := h.checkReferences(c, p); err != nil {
		return err
	}

	var paths []string
	if form, err := c.MultipartForm(); err == nil {
		paths, err = utils.SaveImages(h.Cfg.MediaRoot, "properties", form.File["images"])
		if err != nil {
			if err == utils.ErrBadExtension {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image extension"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store images failed"})
		}
	}

	if err := h.Properties.Create(c.Request().Context(), p, paths); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create property failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/properties/:id. The whole record is replaced and an
// images payload, when present, replaces the stored set in the same
// operation. The published flag is preserved.
func (h *PropertyOwnerHandler) Update(c echo.Context) error {
	id, perr := paramID(c, "id")
	if perr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	landlordID, err := h.ownerScope(c, guard.ActionUpdate, "property", id)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	existing, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	p := &repository.Property{ID: id, LandlordID: landlordID, Status: existing.Status}
	if err := bindPropertyForm(c, p); err != nil {
		return err
	}
	if err := h.checkReferences(c, p); err != nil {
		return err
	}
	if err := h.Properties.Update(ctx, p); err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if form, ferr := c.MultipartForm(); ferr == nil && len(form.File["images"]) > 0 {
		paths, err := utils.SaveImages(h.Cfg.MediaRoot, "properties", form.File["images"])
		if err != nil {
			if err == utils.ErrBadExtension {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image extension"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store images failed"})
		}
		if err := h.Properties.ReplaceImages(ctx, id, paths); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "replace images failed"})
		}
	}

	updated, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/properties/:id. Payments block deletion.
func (h *PropertyOwnerHandler) Delete(c echo.Context) error {
	id, perr := paramID(c, "id")
	if perr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	landlordID, err := h.ownerScope(c, guard.ActionDelete, "property", id)
	if err != nil {
		return err
	}

	if err := h.Properties.Delete(c.Request().Context(), id, landlordID); err != nil {
		switch err {
		case repository.ErrPropertyNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not owner"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "property has recorded payments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ReplaceImages handles PUT /v1/properties/:id/images. The previous set is
// dropped and the uploaded files become the new set, atomically.
func (h *PropertyOwnerHandler) ReplaceImages(c echo.Context) error {
	id, perr := paramID(c, "id")
	if perr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.ownerScope(c, guard.ActionUpdate, "property_images", id); err != nil {
		return err
	}

	ctx := c.Request().Context()
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	paths, err := utils.SaveImages(h.Cfg.MediaRoot, "properties", form.File["images"])
	if err != nil {
		if err == utils.ErrBadExtension {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image extension"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store images failed"})
	}
	if err := h.Properties.ReplaceImages(ctx, id, paths); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "replace images failed"})
	}
	images, err := h.Properties.ListImages(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": images})
}

// MyProperties lists the caller's own listings, published or not.
func (h *PropertyOwnerHandler) MyProperties(c echo.Context) error {
	landlordID, _, err := h.landlordID(c)
	if err != nil {
		return err
	}
	items, err := h.Properties.ListByLandlord(c.Request().Context(), landlordID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type paymentReq struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
}

// CreatePayment handles POST /v1/properties/:id/payments. Recording the
// payment publishes the listing and emits a listing.published event.
func (h *PropertyOwnerHandler) CreatePayment(c echo.Context) error {
	id, perr := paramID(c, "id")
	if perr != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Amount = strings.TrimSpace(req.Amount)
	if req.Amount == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount required"})
	}
	if !repository.PaymentMethods[req.Method] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment method"})
	}

	landlordID, err := h.ownerScope(c, guard.ActionCreate, "payment", id)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	p, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPropertyNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	pay := &repository.PublishingPayment{
		PropertyID: id,
		LandlordID: landlordID,
		Amount:     req.Amount,
		Method:     req.Method,
	}
	if err := h.Payments.Create(ctx, pay); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record payment failed"})
	}
	if err := h.Properties.SetStatus(ctx, id, landlordID, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "publish failed"})
	}

	_ = publisher.PublishListingPublished(ctx, queue.ListingPublishedEvent{
		PropertyID: id,
		Title:      p.Title,
		LandlordID: landlordID,
		Amount:     pay.Amount,
		Method:     pay.Method,
		PaidAt:     pay.CreatedAt,
	})
	return c.JSON(http.StatusCreated, pay)
}

// MyPayments lists the caller's publishing payment history.
func (h *PropertyOwnerHandler) MyPayments(c echo.Context) error {
	landlordID, _, err := h.landlordID(c)
	if err != nil {
		return err
	}
	items, err := h.Payments.ListByLandlord(c.Request().Context(), landlordID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
