package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("secret", 7, "LANDLORD", true, 15)
	require.NoError(t, err)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, tk.Method)
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	require.Equal(t, float64(7), claims["sub"])
	require.Equal(t, "LANDLORD", claims["role"])
	require.Equal(t, true, claims["su"])
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret", 7, "TENANT", false, 15)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	require.Error(t, err)
}

func TestRefreshTokenHashing(t *testing.T) {
	r1, err := NewRefreshToken(7)
	require.NoError(t, err)
	r2, err := NewRefreshToken(7)
	require.NoError(t, err)

	require.Len(t, r1.Raw, 96)
	require.NotEqual(t, r1.Raw, r2.Raw)
	require.Equal(t, HashRefreshRaw(r1.Raw), HashRefreshRaw(r1.Raw))
	require.NotEqual(t, HashRefreshRaw(r1.Raw), HashRefreshRaw(r2.Raw))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	require.True(t, VerifyPassword(hash, "hunter22"))
	require.False(t, VerifyPassword(hash, "hunter23"))
}
