package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/guard"
	"github.com/murenzi/renting-api/internal/middleware"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT numeric claims decode as float64, so several representations are
// accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get(middleware.CtxUserID)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// principalFrom assembles the acting principal from JWT context values. For
// anonymous requests every field is zero and Authenticated is false.
func principalFrom(c echo.Context) guard.Principal {
	uid, err := getUserID(c)
	role, _ := c.Get(middleware.CtxRole).(string)
	su, _ := c.Get(middleware.CtxSuperuser).(bool)
	return guard.Principal{
		ID:            uid,
		Role:          role,
		IsSuperuser:   su,
		Authenticated: err == nil && uid != 0,
	}
}

// denied writes the HTTP response for a negative guard decision.
func denied(c echo.Context, d guard.Decision) error {
	switch d.Reason {
	case guard.ReasonUnauthenticated:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	case guard.ReasonAlreadyExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	default: // not_owner, forbidden
		return c.JSON(http.StatusForbidden, echo.Map{"error": d.Reason})
	}
}

// deniedErr is the helper-friendly form of denied: it returns the decision as
// an *echo.HTTPError instead of writing the response, so helpers can hand it
// up to the caller.
func deniedErr(d guard.Decision) error {
	switch d.Reason {
	case guard.ReasonUnauthenticated:
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	case guard.ReasonAlreadyExists:
		return echo.NewHTTPError(http.StatusConflict, "already exists")
	default:
		return echo.NewHTTPError(http.StatusForbidden, d.Reason)
	}
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// queryID parses an optional numeric query parameter; absent returns 0.
func queryID(c echo.Context, name string) (uint64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
