package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patient-care-api/internal/model"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := MakeToken("u1", model.RoleAdmin, "secret", time.Hour)
	require.NoError(t, err)

	c, err := ParseToken(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, model.RoleAdmin, c.Role)
}

func TestParseTokenRejects(t *testing.T) {
	good, err := MakeToken("u1", model.RolePatient, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(good, "other")
	assert.Error(t, err, "wrong secret")

	expired, err := MakeToken("u1", model.RolePatient, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.Error(t, err, "expired")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(none, "secret")
	assert.Error(t, err, "alg none")

	_, err = ParseToken("garbage", "secret")
	assert.Error(t, err)
}
