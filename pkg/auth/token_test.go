package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), time.Hour)

	identity := Identity{UserID: "u1", Role: RoleSupplier, EntityID: "S1"}
	token, err := tm.Issue(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestTokenAdminHasNoEntityID(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), time.Hour)

	token, err := tm.Issue(Identity{UserID: "a1", Role: RoleAdmin})
	require.NoError(t, err)

	got, err := tm.Verify(token)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
	assert.Empty(t, got.EntityID)
}

func TestTokenVerifyFailures(t *testing.T) {
	tm := NewTokenManager([]byte("test-secret"), time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := tm.Verify("not-a-token")
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager([]byte("other-secret"), time.Hour)
		token, err := other.Issue(Identity{UserID: "u1", Role: RoleCustomer, EntityID: "C1"})
		require.NoError(t, err)

		_, err = tm.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewTokenManager([]byte("test-secret"), time.Nanosecond)
		token, err := short.Issue(Identity{UserID: "u1", Role: RoleCustomer, EntityID: "C1"})
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		_, err = short.Verify(token)
		assert.Error(t, err)
	})
}

func TestRoleValid(t *testing.T) {
	for _, role := range AllRoles() {
		assert.True(t, role.Valid())
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
