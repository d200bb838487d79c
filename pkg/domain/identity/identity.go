package identity

import "time"

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleAnonymous = "anonymous"
)

// Identity is the pre-verified caller assertion produced by the auth middleware.
// The admission layer never performs token verification itself; it consumes this.
type Identity struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

func (i *Identity) IsValid() bool {
	if i == nil || i.Revoked {
		return false
	}
	if !i.ExpiresAt.IsZero() && time.Now().After(i.ExpiresAt) {
		return false
	}
	return true
}

func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PrimaryRole picks the role used for role-keyed rate limiting. Admin wins over
// user; an identity without roles counts as user.
func (i *Identity) PrimaryRole() string {
	if i == nil {
		return RoleAnonymous
	}
	if i.HasRole(RoleAdmin) {
		return RoleAdmin
	}
	if len(i.Roles) > 0 {
		return i.Roles[0]
	}
	return RoleUser
}
