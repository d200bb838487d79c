package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies a caller across requests without exposing any of
// its raw components in logs.
type Fingerprint struct {
	Subject   string
	IP        string
	UserAgent string
}

// ID returns a stable hash of the fingerprint components.
func (f Fingerprint) ID() string {
	raw := f.Subject + "|" + f.IP + "|" + f.UserAgent
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
