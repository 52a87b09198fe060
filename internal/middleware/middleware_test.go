package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/murenzi/renting-api/internal/utils"
)

const testSecret = "mw-secret"

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func runMW(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := mw(okHandler)(c)
	require.NoError(t, err)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "LANDLORD", false, 15)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		require.Equal(t, float64(42), c.Get(CtxUserID))
		require.Equal(t, "LANDLORD", c.Get(CtxRole))
		require.Equal(t, false, c.Get(CtxSuperuser))
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	rec := runMW(t, JWTAuth(testSecret), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = runMW(t, JWTAuth(testSecret), "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	at, err := utils.NewAccessToken("other-secret", 42, "TENANT", false, 15)
	require.NoError(t, err)
	rec = runMW(t, JWTAuth(testSecret), "Bearer "+at.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "TENANT", false, -1)
	require.NoError(t, err)
	rec := runMW(t, JWTAuth(testSecret), "Bearer "+at.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role string, su bool, roles ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set(CtxRole, role)
		}
		c.Set(CtxSuperuser, su)
		require.NoError(t, RequireRole(roles...)(okHandler)(c))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, run("MANAGER", false, "MANAGER"))
	require.Equal(t, http.StatusForbidden, run("TENANT", false, "MANAGER"))
	require.Equal(t, http.StatusForbidden, run("", false, "MANAGER"))
	// Superusers pass regardless of role.
	require.Equal(t, http.StatusOK, run("TENANT", true, "MANAGER"))
}
