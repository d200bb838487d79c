// Package admission holds the in-process state machines that gate every
// request before it reaches a feature handler: fixed-window rate limiting,
// per-identity quotas, the ephemeral response cache and the request
// signature verifier. Nothing in this package performs I/O.
package admission

import "time"

// Bucket maps an instant to its fixed-window slice. Two instants share a
// bucket iff they fall inside the same window.
func Bucket(now time.Time, window time.Duration) int64 {
	return now.UnixMilli() / window.Milliseconds()
}

// WindowEnd returns the instant at which the given bucket expires.
func WindowEnd(bucket int64, window time.Duration) time.Time {
	return time.UnixMilli((bucket + 1) * window.Milliseconds())
}
