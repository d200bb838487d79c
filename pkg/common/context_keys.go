package common

type contextKey string

const (
	TraceIdKey              contextKey = "trace_id"
	IdentityContextKey      contextKey = "identity"
	SecurityContextKey      contextKey = "security_context"
	FingerprintIdContextKey contextKey = "fingerprint_id"
	LatencyContextKey       contextKey = "__execution_time"
)
