package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	mgr := NewTokenManager("test-secret", time.Hour)
	u := &User{
		ID:      uuid.New(),
		Email:   "user@example.com",
		IsAdmin: true,
	}

	t.Run("round trip", func(t *testing.T) {
		token, expiresAt, err := mgr.Generate(u)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, u.Email, claims.Email)
		assert.True(t, claims.IsAdmin)
	})

	t.Run("rejects tokens signed with a different secret", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour)
		token, _, err := other.Generate(u)
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		expired := &TokenManager{secret: []byte("test-secret"), expiry: time.Millisecond}
		token, _, err := expired.Generate(u)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := mgr.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
