// This file defines contact-message and testimonial endpoints. Submissions
// are open to anyone; moderation (reading inbox, confirming, deleting) is a
// manager concern enforced by the guard on top of the role middleware.

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/guard"
	"github.com/murenzi/renting-api/internal/repository"
)

// MessageHandler serves contact messages and testimonials.
type MessageHandler struct {
	Messages *repository.MessageRepo
}

func NewMessageHandler(m *repository.MessageRepo) *MessageHandler {
	return &MessageHandler{Messages: m}
}

type contactReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

type testimonialReq struct {
	FullName string `json:"full_name"`
	Rating   int    `json:"rating"`
	Message  string `json:"message"`
}

// CreateContact accepts a visitor submission, no auth required.
func (h *MessageHandler) CreateContact(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Email == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and message required"})
	}
	m := &repository.ContactMessage{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Subject:   strings.TrimSpace(req.Subject),
		Message:   req.Message,
	}
	if err := h.Messages.CreateContact(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save message failed"})
	}
	return c.JSON(http.StatusCreated, m)
}

// ListContacts is the moderation inbox.
func (h *MessageHandler) ListContacts(c echo.Context) error {
	if d := guard.Authorize(principalFrom(c), guard.ActionModerate,
		guard.Resource{Kind: "contact_message"}); !d.Allowed {
		return denied(c, d)
	}
	items, err := h.Messages.ListContacts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// MarkContactRead flags one message as handled.
func (h *MessageHandler) MarkContactRead(c echo.Context) error {
	if d := guard.Authorize(principalFrom(c), guard.ActionModerate,
		guard.Resource{Kind: "contact_message"}); !d.Allowed {
		return denied(c, d)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Messages.MarkContactRead(c.Request().Context(), id); err != nil {
		if err == repository.ErrMessageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MessageHandler) DeleteContact(c echo.Context) error {
	if d := guard.Authorize(principalFrom(c), guard.ActionModerate,
		guard.Resource{Kind: "contact_message"}); !d.Allowed {
		return denied(c, d)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Messages.DeleteContact(c.Request().Context(), id); err != nil {
		if err == repository.ErrMessageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- testimonials -----

// CreateTestimonial accepts an anonymous review; it stays hidden until a
// moderator confirms it.
func (h *MessageHandler) CreateTestimonial(c echo.Context) error {
	var req testimonialReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Message = strings.TrimSpace(req.Message)
	if req.FullName == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name and message required"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be 1..5"})
	}
	t := &repository.Testimonial{FullName: req.FullName, Rating: req.Rating, Message: req.Message}
	if err := h.Messages.CreateTestimonial(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save testimonial failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTestimonials returns confirmed reviews only, for the public site.
func (h *MessageHandler) ListTestimonials(c echo.Context) error {
	items, err := h.Messages.ListTestimonials(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListAllTestimonials is the moderation view including unconfirmed entries.
func (h *MessageHandler) ListAllTestimonials(c echo.Context) error {
	if d := guard.Authorize(principalFrom(c), guard.ActionModerate,
		guard.Resource{Kind: "testimonial"}); !d.Allowed {
		return denied(c, d)
	}
	items, err := h.Messages.ListTestimonials(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *MessageHandler) ConfirmTestimonial(c echo.Context) error {
	if d := guard.Authorize(principalFrom(c), guard.ActionModerate,
		guard.Resource{Kind: "testimonial"}); !d.Allowed {
		return denied(c, d)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Messages.ConfirmTestimonial(c.Request().Context(), id); err != nil {
		if err == repository.ErrMessageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "testimonial not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MessageHandler) DeleteTestimonial(c echo.Context) error {
	if d := guard.Authorize(principalFrom(c), guard.ActionModerate,
		guard.Resource{Kind: "testimonial"}); !d.Allowed {
		return denied(c, d)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Messages.DeleteTestimonial(c.Request().Context(), id); err != nil {
		if err == repository.ErrMessageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "testimonial not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.NoContent(http.StatusNoContent)
}
