package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

const DefaultMaxSkew = 5 * time.Minute

var (
	ErrMissingSecret    = errors.New("signing secret is required")
	ErrMissingSignature = errors.New("missing request signature")
	ErrMissingTimestamp = errors.New("missing request timestamp")
	ErrInvalidTimestamp = errors.New("invalid request timestamp")
	ErrStaleTimestamp   = errors.New("request timestamp outside replay window")
	ErrInvalidSignature = errors.New("request signature mismatch")
)

// Verifier checks HMAC request signatures for unauthenticated server-to-server
// calls. The canonical signing string is method + ":" + path + ":" + body +
// ":" + timestamp; the timestamp is unix seconds and must fall inside the
// replay window on either side of the verifier's clock.
type Verifier struct {
	secret  []byte
	maxSkew time.Duration
	now     func() time.Time
}

type Opts struct {
	TimeProvider func() time.Time
	MaxSkew      time.Duration
}

func NewVerifier(secret string, opts *Opts) (*Verifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	now := time.Now
	maxSkew := DefaultMaxSkew
	if opts != nil {
		if opts.TimeProvider != nil {
			now = opts.TimeProvider
		}
		if opts.MaxSkew > 0 {
			maxSkew = opts.MaxSkew
		}
	}
	return &Verifier{
		secret:  []byte(secret),
		maxSkew: maxSkew,
		now:     now,
	}, nil
}

// Compute returns the hex HMAC-SHA256 of the canonical signing string.
func (v *Verifier) Compute(method, path string, body []byte, timestamp string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(method))
	mac.Write([]byte(":"))
	mac.Write([]byte(path))
	mac.Write([]byte(":"))
	mac.Write(body)
	mac.Write([]byte(":"))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify validates the caller-supplied signature and timestamp. On success it
// returns the computed digest so callers can attach it as the request
// fingerprint for audit correlation.
func (v *Verifier) Verify(method, path string, body []byte, timestamp, sig string) (string, error) {
	if sig == "" {
		return "", ErrMissingSignature
	}
	if timestamp == "" {
		return "", ErrMissingTimestamp
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", ErrInvalidTimestamp
	}
	skew := v.now().Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return "", ErrStaleTimestamp
	}

	expected := v.Compute(method, path, body, timestamp)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return "", ErrInvalidSignature
	}
	return expected, nil
}
