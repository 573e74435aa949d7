package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "token-test-secret-of-at-least-32-chars!"

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewTokenManager(testSecret)

	token, err := mgr.GenerateToken(42, "customer@example.com", []string{"CUSTOMER"})
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "customer@example.com", claims.Email)
	assert.True(t, claims.HasRole("CUSTOMER"))
	assert.False(t, claims.HasRole("ADMIN"))
	assert.Equal(t, "customer@example.com", claims.Actor())
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret).GenerateToken(1, "", nil)
	require.NoError(t, err)

	_, err = NewTokenManager("another-secret-of-at-least-32-chars!!!").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager(testSecret).ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActorFallsBackToUserID(t *testing.T) {
	claims := &ActorClaims{UserID: 7}
	assert.Equal(t, "user:7", claims.Actor())
}
