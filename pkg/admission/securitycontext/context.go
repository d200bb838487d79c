package securitycontext

import "time"

// SecurityContext is the per-request state shared by the admission stages.
// It is created once by the first stage that needs it and merged into, never
// replaced, by later stages.
type SecurityContext struct {
	Fingerprint   string
	Authenticated bool
	Roles         []string
	Timestamp     time.Time
	Flags         []string
}

func New(now time.Time) *SecurityContext {
	return &SecurityContext{Timestamp: now}
}

// Merge folds other into s. Boolean state is OR'd, the fingerprint is only
// filled when absent, and role/flag sets are unioned.
func (s *SecurityContext) Merge(other *SecurityContext) {
	if other == nil {
		return
	}
	if s.Fingerprint == "" {
		s.Fingerprint = other.Fingerprint
	}
	s.Authenticated = s.Authenticated || other.Authenticated
	s.Roles = union(s.Roles, other.Roles)
	s.Flags = union(s.Flags, other.Flags)
	if s.Timestamp.IsZero() {
		s.Timestamp = other.Timestamp
	}
}

func (s *SecurityContext) AddFlag(flag string) {
	s.Flags = union(s.Flags, []string{flag})
}

func (s *SecurityContext) HasFlag(flag string) bool {
	for _, f := range s.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func union(a, b []string) []string {
	out := a
	for _, v := range b {
		found := false
		for _, existing := range out {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}
