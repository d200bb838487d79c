package identity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
)

func TestIsValid(t *testing.T) {
	var nilIdentity *identity.Identity
	assert.False(t, nilIdentity.IsValid())

	assert.False(t, (&identity.Identity{Subject: "a", Revoked: true}).IsValid())
	assert.False(t, (&identity.Identity{
		Subject:   "a",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).IsValid())

	assert.True(t, (&identity.Identity{Subject: "a"}).IsValid())
	assert.True(t, (&identity.Identity{
		Subject:   "a",
		ExpiresAt: time.Now().Add(time.Hour),
	}).IsValid())
}

func TestPrimaryRole(t *testing.T) {
	var nilIdentity *identity.Identity
	assert.Equal(t, identity.RoleAnonymous, nilIdentity.PrimaryRole())

	assert.Equal(t, identity.RoleUser, (&identity.Identity{Subject: "a"}).PrimaryRole())
	assert.Equal(t, identity.RoleAdmin, (&identity.Identity{
		Subject: "a",
		Roles:   []string{"user", "admin"},
	}).PrimaryRole())
	assert.Equal(t, "support", (&identity.Identity{
		Subject: "a",
		Roles:   []string{"support"},
	}).PrimaryRole())
}

func TestHasRole(t *testing.T) {
	id := &identity.Identity{Subject: "a", Roles: []string{"user"}}
	assert.True(t, id.HasRole("user"))
	assert.False(t, id.HasRole("admin"))

	var nilIdentity *identity.Identity
	assert.False(t, nilIdentity.HasRole("user"))
}
