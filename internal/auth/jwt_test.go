package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, "ops@example.com", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "ops@example.com", claims.Email)
	require.Equal(t, "leadgate", claims.Issuer)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "ops@example.com", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "different-secret")
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "ops@example.com", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	require.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", "secret")
	require.Error(t, err)
}
