package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
	"github.com/tripwise-ai/tripwise/pkg/infra/auth/jwt"
)

func TestDecodeIdentity_RoundTrip(t *testing.T) {
	manager := jwt.NewJwtManager("secret")

	token, err := manager.CreateToken("alice", nil, false, time.Hour)
	require.NoError(t, err)

	id, err := manager.DecodeIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Subject)
	assert.Equal(t, []string{identity.RoleUser}, id.Roles)
	assert.True(t, id.IsValid())
}

func TestDecodeIdentity_AdminFlagAddsRole(t *testing.T) {
	manager := jwt.NewJwtManager("secret")

	token, err := manager.CreateToken("root", []string{"ops"}, true, time.Hour)
	require.NoError(t, err)

	id, err := manager.DecodeIdentity(token)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{identity.RoleUser, identity.RoleAdmin, "ops"}, id.Roles)
	assert.Equal(t, identity.RoleAdmin, id.PrimaryRole())
}

func TestDecodeIdentity_ExpiredToken(t *testing.T) {
	manager := jwt.NewJwtManager("secret")

	token, err := manager.CreateToken("alice", nil, false, -time.Minute)
	require.NoError(t, err)

	_, err = manager.DecodeIdentity(token)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestDecodeIdentity_WrongSecret(t *testing.T) {
	manager := jwt.NewJwtManager("secret")
	other := jwt.NewJwtManager("other-secret")

	token, err := manager.CreateToken("alice", nil, false, time.Hour)
	require.NoError(t, err)

	_, err = other.DecodeIdentity(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestDecodeIdentity_RevokedToken(t *testing.T) {
	manager := jwt.NewJwtManager("secret")

	now := time.Now()
	claims := &jwt.Claims{
		Revoked: true,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = manager.DecodeIdentity(token)
	assert.ErrorIs(t, err, domain.ErrRevokedToken)
}

func TestDecodeIdentity_Garbage(t *testing.T) {
	manager := jwt.NewJwtManager("secret")

	_, err := manager.DecodeIdentity("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
