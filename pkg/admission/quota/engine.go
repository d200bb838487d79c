package quota

import (
	"sync"
	"time"

	"github.com/tripwise-ai/tripwise/pkg/infra/prometheus"
)

const DefaultMaxTrackedKeys = 100_000

// Decision mirrors the rate limiter's outcome shape for callers that render
// 429 responses from either engine.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type counter struct {
	count   int
	resetAt time.Time
}

// Engine enforces coarse per-feature budgets ("20 phrasebook generations per
// hour per user"). Unlike the rate limiter, windows are anchored at first use:
// the stored resetAt decides whether the window is still active, and the key
// carries no time component.
type Engine struct {
	now     func() time.Time
	maxKeys int

	mu       sync.Mutex
	counters map[string]*counter
}

type Opts struct {
	TimeProvider   func() time.Time
	MaxTrackedKeys int
}

func NewEngine(opts *Opts) *Engine {
	now := time.Now
	maxKeys := DefaultMaxTrackedKeys
	if opts != nil {
		if opts.TimeProvider != nil {
			now = opts.TimeProvider
		}
		if opts.MaxTrackedKeys > 0 {
			maxKeys = opts.MaxTrackedKeys
		}
	}
	return &Engine{
		now:      now,
		maxKeys:  maxKeys,
		counters: make(map[string]*counter),
	}
}

// Enforce counts one use of quotaKey by identifier. The increment that would
// exceed limit is rejected, never clamped.
func (e *Engine) Enforce(identifier, quotaKey string, limit int, window time.Duration) Decision {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	key := identifier + ":" + quotaKey
	c, ok := e.counters[key]
	if !ok || !now.Before(c.resetAt) {
		if !ok && len(e.counters) >= e.maxKeys {
			e.pruneExpiredLocked(now)
		}
		c = &counter{resetAt: now.Add(window)}
		e.counters[key] = c
	}

	if limit <= 0 || c.count >= limit {
		prometheus.QuotaDecisions.WithLabelValues(quotaKey, "denied").Inc()
		return Decision{Allowed: false, Remaining: 0, ResetAt: c.resetAt}
	}

	c.count++
	prometheus.QuotaDecisions.WithLabelValues(quotaKey, "allowed").Inc()
	return Decision{Allowed: true, Remaining: limit - c.count, ResetAt: c.resetAt}
}

// TrackedKeys reports live counters, for tests.
func (e *Engine) TrackedKeys() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.counters)
}

func (e *Engine) pruneExpiredLocked(now time.Time) {
	for k, c := range e.counters {
		if !now.Before(c.resetAt) {
			delete(e.counters, k)
		}
	}
	// Expired-only pruning may not free anything when every window is live;
	// in that degenerate case evict one arbitrary counter to stay bounded.
	if len(e.counters) >= e.maxKeys {
		for k := range e.counters {
			delete(e.counters, k)
			return
		}
	}
}
