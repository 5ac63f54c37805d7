package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/agricoop/api/internal/config"
)

func testManager() *JWTManager {
	return NewJWTManager(config.AuthConfig{
		JWTSecret:       "test-secret-0123456789",
		Issuer:          "agricoop",
		ExpirationHours: 1,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testManager()

	token, expiresAt, err := m.GenerateToken(7, "jkouassi", "producer")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "jkouassi", claims.Username)
	assert.Equal(t, "producer", claims.Role)
	assert.Equal(t, "agricoop", claims.Issuer)
}

func TestValidateToken_Rejections(t *testing.T) {
	m := testManager()
	token, _, err := m.GenerateToken(1, "gestionnaire1", "manager")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-token")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager(config.AuthConfig{JWTSecret: "another-secret-0123456", Issuer: "agricoop", ExpirationHours: 1})
		_, err := other.ValidateToken(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTManager(config.AuthConfig{JWTSecret: "test-secret-0123456789", Issuer: "elsewhere", ExpirationHours: 1})
		_, err := other.ValidateToken(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("expired", func(t *testing.T) {
		expired := testManager()
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		old, _, err := expired.GenerateToken(1, "gestionnaire1", "manager")
		require.NoError(t, err)

		_, err = m.ValidateToken(old)
		assert.True(t, errors.Is(err, ErrInvalidToken))
		assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, Role: "admin"})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.ValidateToken(s)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("producteur123")
	require.NoError(t, err)
	assert.NotEqual(t, "producteur123", hash)

	assert.True(t, VerifyPassword(hash, "producteur123"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "producteur123"))
}
