package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/murenzi/renting-api/internal/config"
	"github.com/murenzi/renting-api/internal/repository"
	"github.com/murenzi/renting-api/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		BaseURL:        "http://localhost:8080",
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func userRow(t *testing.T, hashOf string, active bool) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(hashOf, 4)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "password_hash",
		"is_manager", "is_landlord", "is_superuser", "is_active", "created_at", "updated_at",
	}).AddRow(42, "Eric", "Murenzi", "eric@example.com", hash,
		false, true, false, active, time.Now(), time.Now())
}

// Registering an email that is already stored is a validation failure on the
// input, not a state conflict.
func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("Eric", "Murenzi", "eric@example.com", sqlmock.AnyArg(), false, true).
		WillReturnError(errDuplicate1062)

	c, rec := jsonContext(http.MethodPost, "/v1/auth/register",
		`{"first_name":"Eric","last_name":"Murenzi","email":"Eric@Example.com","password":"hunter22","role":"LANDLORD"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "email already exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("eric@example.com").
		WillReturnRows(userRow(t, "hunter22", false))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/login",
		`{"email":"Eric@Example.com","password":"hunter22"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "not activated")
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("eric@example.com").
		WillReturnRows(userRow(t, "hunter22", true))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/login",
		`{"email":"eric@example.com","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/login",
		`{"email":"ghost@example.com","password":"whatever"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs("eric@example.com").
		WillReturnRows(userRow(t, "hunter22", true))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/login",
		`{"email":"eric@example.com","password":"hunter22"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"access"`)
	require.Contains(t, rec.Body.String(), `"refresh"`)
	require.Contains(t, rec.Body.String(), `"LANDLORD"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivateConsumedLink(t *testing.T) {
	h, mock := newAuthHandler(t)

	// Account already active: the token no longer matches the state.
	mock.ExpectQuery(`FROM users WHERE id = \?`).
		WithArgs(uint64(42)).
		WillReturnRows(userRow(t, "hunter22", true))

	// Token minted against the pre-activation state.
	hash, err := utils.HashPassword("hunter22", 4)
	require.NoError(t, err)
	state := utils.AccountState(hash, false)
	token := utils.MakeUserToken("test-secret", 42, utils.PurposeActivate, state, time.Hour)

	c, rec := jsonContext(http.MethodGet, "/v1/auth/activate/x/y", "")
	c.SetParamNames("uid", "token")
	c.SetParamValues(utils.EncodeUID(42), token)
	require.NoError(t, h.Activate(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivateBadUID(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, rec := jsonContext(http.MethodGet, "/v1/auth/activate/x/y", "")
	c.SetParamNames("uid", "token")
	c.SetParamValues("!!!", "whatever")
	require.NoError(t, h.Activate(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	h, mock := newAuthHandler(t)

	raw := "rawrefreshtoken"
	hash := utils.HashRefreshRaw(raw)

	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(42, time.Now().Add(24*time.Hour), nil))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=NOW\(\)`).
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM users WHERE id = \?`).
		WithArgs(uint64(42)).
		WillReturnRows(userRow(t, "hunter22", true))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(sqlmock.NewResult(2, 1))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+raw+`"}`)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshInvalidToken(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery(`SELECT user_id, expires_at, revoked_at FROM refresh_tokens`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"stolen"}`)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
