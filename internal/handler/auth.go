package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/config"
	"github.com/murenzi/renting-api/internal/queue"
	"github.com/murenzi/renting-api/internal/repository"
	"github.com/murenzi/renting-api/internal/service/publisher"
	"github.com/murenzi/renting-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"` // TENANT | LANDLORD | MANAGER
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}
type resetReq struct {
	Email string `json:"email"`
}
type resetConfirmReq struct {
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates an inactive account and emails an activation link. No
// tokens are issued until the account is activated.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role != repository.RoleLandlord && role != repository.RoleManager {
		role = repository.RoleTenant
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.FirstName, req.LastName, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	h.sendAccountMail(ctx, u, utils.PurposeActivate)

	return c.JSON(http.StatusCreated, echo.Map{
		"user":    userPart{ID: uid, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Role: role},
		"message": "activation email sent",
	})
}

// Activate consumes the emailed activation token and flips the account active.
func (h *AuthHandler) Activate(c echo.Context) error {
	uid, err := utils.DecodeUID(c.Param("uid"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link"})
	}
	state := utils.AccountState(u.PasswordHash, u.IsActive)
	if err := utils.VerifyUserToken(h.Cfg.JWTSecret, c.Param("token"), uid, utils.PurposeActivate, state); err != nil {
		if err == utils.ErrTokenExpired {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "link expired"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link"})
	}
	if err := h.Users.Activate(ctx, uid); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "already activated"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activate failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account activated"})
}

// Login verifies credentials on an active account and returns a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account not activated"})
	}

	return h.issuePair(c, ctx, u, http.StatusOK)
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account not activated"})
	}

	return h.issuePair(c, ctx, u, http.StatusOK)
}

// Logout revokes either a specific refresh token from the body or, given a
// bearer access token and no body, every session of that user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	hasBearer := false
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		tok, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.ErrUnauthorized
			}
			return []byte(h.Cfg.JWTSecret), nil
		})
		if err == nil && tok.Valid {
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				switch subVal := claims["sub"].(type) {
				case float64:
					uid = uint64(subVal)
					hasBearer = true
				case string:
					if parsed, err := strconv.ParseUint(subVal, 10, 64); err == nil {
						uid = parsed
						hasBearer = true
					}
				}
			}
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if hasBearer && refreshToken == "" {
		if uid == 0 {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the authenticated user's account record.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{
		ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role(),
	})
}

// PasswordReset emails a reset link if the address is registered. The
// response is the same either way so addresses cannot be probed.
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil {
		h.sendAccountMail(ctx, u, utils.PurposeReset)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message": "if the address is registered, a reset link has been sent"})
}

// PasswordResetConfirm consumes a reset token and sets the new password.
// All refresh tokens are revoked so stolen sessions die with the old password.
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password of at least 8 characters required"})
	}
	uid, err := utils.DecodeUID(c.Param("uid"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link"})
	}
	state := utils.AccountState(u.PasswordHash, u.IsActive)
	if err := utils.VerifyUserToken(h.Cfg.JWTSecret, c.Param("token"), uid, utils.PurposeReset, state); err != nil {
		if err == utils.ErrTokenExpired {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "link expired"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid link"})
	}
	if err := h.Users.UpdatePassword(ctx, uid, req.Password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	_ = h.Tokens.RevokeAllForUser(ctx, uid)
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, u repository.User, status int) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role(), u.IsSuperuser, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, authResp{
		User:    userPart{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role()},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// sendAccountMail queues an activation or reset email for delivery.
func (h *AuthHandler) sendAccountMail(ctx context.Context, u repository.User, purpose string) {
	state := utils.AccountState(u.PasswordHash, u.IsActive)
	ttl := 24 * time.Hour
	if purpose == utils.PurposeReset {
		ttl = time.Hour
	}
	token := utils.MakeUserToken(h.Cfg.JWTSecret, u.ID, purpose, state, ttl)

	var subject, path string
	switch purpose {
	case utils.PurposeActivate:
		subject = "Activate your account"
		path = "activate"
	case utils.PurposeReset:
		subject = "Reset your password"
		path = "password-reset/confirm"
	}
	link := fmt.Sprintf("%s/v1/auth/%s/%s/%s", h.Cfg.BaseURL, path, utils.EncodeUID(u.ID), token)

	_ = publisher.PublishMail(ctx, queue.MailRequestedEvent{
		To:      u.Email,
		Subject: subject,
		Body:    fmt.Sprintf("Hello %s,\n\nFollow this link: %s\n", u.FirstName, link),
	})
}
