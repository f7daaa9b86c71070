package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "ims", 42, "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "ims", claims.Issuer)
}

func TestToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "ims", 1, "user", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	token, err := GenerateToken("secret", "ims", 1, "user", -1)
	require.NoError(t, err)
	// ttl <= 0 falls back to 24h
	_, err = ParseToken("secret", token)
	assert.NoError(t, err)

	token, err = GenerateToken("secret", "ims", 1, "user", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = ParseToken("secret", token)
	assert.Error(t, err)
}
