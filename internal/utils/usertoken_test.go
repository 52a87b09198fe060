package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const tokenSecret = "test-secret"

func TestUserTokenRoundTrip(t *testing.T) {
	state := AccountState("$2a$10$hash", false)
	tok := MakeUserToken(tokenSecret, 42, PurposeActivate, state, time.Hour)

	require.NoError(t, VerifyUserToken(tokenSecret, tok, 42, PurposeActivate, state))
}

func TestUserTokenWrongPurpose(t *testing.T) {
	state := AccountState("$2a$10$hash", false)
	tok := MakeUserToken(tokenSecret, 42, PurposeActivate, state, time.Hour)

	err := VerifyUserToken(tokenSecret, tok, 42, PurposeReset, state)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUserTokenWrongUser(t *testing.T) {
	state := AccountState("$2a$10$hash", false)
	tok := MakeUserToken(tokenSecret, 42, PurposeReset, state, time.Hour)

	err := VerifyUserToken(tokenSecret, tok, 43, PurposeReset, state)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUserTokenConsumedByStateChange(t *testing.T) {
	// Activating flips is_active, so the token minted beforehand dies.
	before := AccountState("$2a$10$hash", false)
	tok := MakeUserToken(tokenSecret, 42, PurposeActivate, before, time.Hour)

	after := AccountState("$2a$10$hash", true)
	err := VerifyUserToken(tokenSecret, tok, 42, PurposeActivate, after)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUserTokenResetConsumedByPasswordChange(t *testing.T) {
	before := AccountState("$2a$10$old", true)
	tok := MakeUserToken(tokenSecret, 42, PurposeReset, before, time.Hour)

	after := AccountState("$2a$10$new", true)
	err := VerifyUserToken(tokenSecret, tok, 42, PurposeReset, after)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUserTokenExpired(t *testing.T) {
	state := AccountState("$2a$10$hash", true)
	tok := MakeUserToken(tokenSecret, 42, PurposeReset, state, -time.Minute)

	err := VerifyUserToken(tokenSecret, tok, 42, PurposeReset, state)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestUserTokenMalformed(t *testing.T) {
	state := AccountState("h", true)
	for _, tok := range []string{"", "garbage", "123.", ".abc", "notanumber.deadbeef"} {
		require.ErrorIs(t, VerifyUserToken(tokenSecret, tok, 42, PurposeReset, state), ErrTokenInvalid)
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	enc := EncodeUID(12345)
	id, err := DecodeUID(enc)
	require.NoError(t, err)
	require.Equal(t, uint64(12345), id)

	_, err = DecodeUID("!!!")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = DecodeUID(EncodeUID(0))
	require.ErrorIs(t, err, ErrTokenInvalid)
}
