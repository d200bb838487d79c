package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tripwise-ai/tripwise/pkg/domain"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
)

type (
	// Manager verifies bearer tokens and maps their claims onto the identity
	// consumed by the admission pipeline. Verification is the identity
	// provider's concern; this is only the boundary adapter.
	Manager interface {
		CreateToken(subject string, roles []string, admin bool, ttl time.Duration) (string, error)
		DecodeIdentity(tokenString string) (*identity.Identity, error)
	}
	manager struct {
		secret []byte
	}
)

func NewJwtManager(secret string) Manager {
	return &manager{secret: []byte(secret)}
}

type Claims struct {
	Roles   []string `json:"roles,omitempty"`
	Admin   bool     `json:"admin,omitempty"`
	Revoked bool     `json:"revoked,omitempty"`
	jwt.RegisteredClaims
}

func (m *manager) CreateToken(subject string, roles []string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Roles: roles,
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *manager) DecodeIdentity(tokenString string) (*identity.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, domain.ErrInvalidToken
			}
			return m.secret, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	if claims.Revoked {
		return nil, domain.ErrRevokedToken
	}

	id := &identity.Identity{
		Subject: claims.Subject,
		Roles:   extractRoles(claims),
		Revoked: claims.Revoked,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// extractRoles defaults to {"user"}, escalates to admin when the admin flag
// is set, and unions any explicit role claims.
func extractRoles(claims *Claims) []string {
	roles := []string{identity.RoleUser}
	if claims.Admin {
		roles = appendUnique(roles, identity.RoleAdmin)
	}
	for _, r := range claims.Roles {
		roles = appendUnique(roles, r)
	}
	return roles
}

func appendUnique(roles []string, role string) []string {
	for _, r := range roles {
		if r == role {
			return roles
		}
	}
	return append(roles, role)
}
