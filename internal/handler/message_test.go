package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/murenzi/renting-api/internal/middleware"
	"github.com/murenzi/renting-api/internal/repository"
)

func newMessageHandler(t *testing.T) (*MessageHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMessageHandler(repository.NewMessageRepo(db)), mock
}

func jsonContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asManager simulates what JWTAuth puts into the context for a manager.
func asManager(c echo.Context) {
	c.Set(middleware.CtxUserID, uint64(3))
	c.Set(middleware.CtxRole, repository.RoleManager)
	c.Set(middleware.CtxSuperuser, false)
}

func asTenant(c echo.Context) {
	c.Set(middleware.CtxUserID, uint64(9))
	c.Set(middleware.CtxRole, repository.RoleTenant)
	c.Set(middleware.CtxSuperuser, false)
}

func TestCreateTestimonialValidation(t *testing.T) {
	h, _ := newMessageHandler(t)

	c, rec := jsonContext(http.MethodPost, "/v1/testimonials",
		`{"full_name":"Alice","rating":9,"message":"great"}`)
	require.NoError(t, h.CreateTestimonial(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = jsonContext(http.MethodPost, "/v1/testimonials",
		`{"full_name":"","rating":4,"message":"great"}`)
	require.NoError(t, h.CreateTestimonial(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTestimonialStoresUnconfirmed(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectExec(`INSERT INTO testimonials`).
		WithArgs("Alice", 5, "great service").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(`SELECT created_at FROM testimonials`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow("2026-08-30 09:00:00"))

	c, rec := jsonContext(http.MethodPost, "/v1/testimonials",
		`{"full_name":"Alice","rating":5,"message":"great service"}`)
	require.NoError(t, h.CreateTestimonial(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"is_confirmed":false`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestModerationRequiresManager(t *testing.T) {
	h, _ := newMessageHandler(t)

	// Tenant cannot read the inbox.
	c, rec := jsonContext(http.MethodGet, "/v1/contact", "")
	asTenant(c)
	require.NoError(t, h.ListContacts(c))
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Anonymous is 401.
	c, rec = jsonContext(http.MethodGet, "/v1/contact", "")
	require.NoError(t, h.ListContacts(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmTestimonialAsManager(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectExec(`UPDATE testimonials SET is_confirmed = 1`).
		WithArgs(uint64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonContext(http.MethodPatch, "/v1/testimonials/12/confirm", "")
	c.SetParamNames("id")
	c.SetParamValues("12")
	asManager(c)
	require.NoError(t, h.ConfirmTestimonial(c))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmTestimonialNotFound(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectExec(`UPDATE testimonials SET is_confirmed = 1`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := jsonContext(http.MethodPatch, "/v1/testimonials/99/confirm", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	asManager(c)
	require.NoError(t, h.ConfirmTestimonial(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicTestimonialListHidesUnconfirmed(t *testing.T) {
	h, mock := newMessageHandler(t)

	mock.ExpectQuery(`FROM testimonials WHERE is_confirmed = 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "rating", "message", "is_confirmed", "created_at"}).
			AddRow(12, "Alice", 5, "great", true, "2026-08-30"))

	c, rec := jsonContext(http.MethodGet, "/v1/testimonials", "")
	require.NoError(t, h.ListTestimonials(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Alice")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContactRequiresEmailAndMessage(t *testing.T) {
	h, _ := newMessageHandler(t)

	c, rec := jsonContext(http.MethodPost, "/v1/contact", `{"email":"","message":"hi"}`)
	require.NoError(t, h.CreateContact(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
