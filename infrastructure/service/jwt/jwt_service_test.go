package jwt

import (
	"testing"
	"time"

	"github.com/gudson/kpi/application/port/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService(t *testing.T) {
	service, err := NewJWTService("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("GenerateAccessToken", func(t *testing.T) {
		token, expiresAt, err := service.GenerateAccessToken(outbound.TokenClaims{SessionID: "s-1", Username: "admin"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	})

	t.Run("ValidateAccessToken", func(t *testing.T) {
		token, _, err := service.GenerateAccessToken(outbound.TokenClaims{SessionID: "s-1", Username: "admin"})
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "s-1", claims.SessionID)
		assert.Equal(t, "admin", claims.Username)
	})

	t.Run("ValidateInvalidToken", func(t *testing.T) {
		_, err := service.ValidateAccessToken("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateWrongSecret", func(t *testing.T) {
		other, err := NewJWTService("other-secret", time.Hour)
		require.NoError(t, err)
		token, _, err := other.GenerateAccessToken(outbound.TokenClaims{SessionID: "s-1"})
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("ValidateExpiredToken", func(t *testing.T) {
		short, err := NewJWTService("test-secret", time.Minute)
		require.NoError(t, err)
		issued := time.Now()
		short.now = func() time.Time { return issued }

		token, _, err := short.GenerateAccessToken(outbound.TokenClaims{SessionID: "s-1"})
		require.NoError(t, err)

		short.now = func() time.Time { return issued.Add(2 * time.Minute) }
		_, err = short.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("RejectsEmptySecret", func(t *testing.T) {
		_, err := NewJWTService("", time.Hour)
		assert.Error(t, err)
	})
}
