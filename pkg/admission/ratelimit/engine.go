package ratelimit

import (
	"errors"
	"sync"
	"time"

	"github.com/tripwise-ai/tripwise/pkg/admission"
	"github.com/tripwise-ai/tripwise/pkg/infra/prometheus"
)

const DefaultMaxTrackedKeys = 100_000

var ErrInvalidWindow = errors.New("rate limit window must be positive")

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type counterKey struct {
	key    string
	bucket int64
}

type counter struct {
	count   int
	resetAt time.Time
}

// Engine is a fixed-window request counter. Counters are keyed by
// (caller key, window bucket); a counter for a past bucket is unreachable
// and gets pruned on the first check of a newer bucket, so the store stays
// bounded even with an unbounded caller key space.
type Engine struct {
	name    string
	window  time.Duration
	max     int
	maxKeys int
	now     func() time.Time

	mu         sync.Mutex
	counters   map[counterKey]*counter
	lastBucket int64
}

type Opts struct {
	TimeProvider   func() time.Time
	MaxTrackedKeys int
}

func NewEngine(name string, window time.Duration, max int, opts *Opts) (*Engine, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
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
		name:       name,
		window:     window,
		max:        max,
		maxKeys:    maxKeys,
		now:        now,
		counters:   make(map[counterKey]*counter),
		lastBucket: -1,
	}, nil
}

func (e *Engine) Name() string {
	return e.name
}

func (e *Engine) Window() time.Duration {
	return e.window
}

func (e *Engine) Max() int {
	return e.max
}

// Check records one request against key and decides whether it may proceed.
// For a single key the increment is linearizable: of two racing requests at
// the limit, exactly one is admitted.
func (e *Engine) Check(key string) Decision {
	now := e.now()
	bucket := admission.Bucket(now, e.window)
	resetAt := admission.WindowEnd(bucket, e.window)

	if e.max <= 0 {
		prometheus.RateLimitDecisions.WithLabelValues(e.name, "denied").Inc()
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if bucket != e.lastBucket {
		e.pruneLocked(bucket)
		e.lastBucket = bucket
	}

	ck := counterKey{key: key, bucket: bucket}
	c, ok := e.counters[ck]
	if !ok {
		if len(e.counters) >= e.maxKeys {
			e.evictOneLocked()
		}
		c = &counter{resetAt: resetAt}
		e.counters[ck] = c
	}

	if c.count >= e.max {
		prometheus.RateLimitDecisions.WithLabelValues(e.name, "denied").Inc()
		return Decision{Allowed: false, Remaining: 0, ResetAt: c.resetAt}
	}

	c.count++
	prometheus.RateLimitDecisions.WithLabelValues(e.name, "allowed").Inc()
	return Decision{Allowed: true, Remaining: e.max - c.count, ResetAt: c.resetAt}
}

// TrackedKeys reports the number of live counters, for tests and metrics.
func (e *Engine) TrackedKeys() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.counters)
}

// pruneLocked drops counters from buckets older than current. Their window
// has passed, so they can never be read again.
func (e *Engine) pruneLocked(current int64) {
	for k := range e.counters {
		if k.bucket < current {
			delete(e.counters, k)
			prometheus.RateLimitCountersPruned.WithLabelValues(e.name).Inc()
		}
	}
}

// evictOneLocked removes a single counter when the store is at capacity.
// After pruning, every remaining counter belongs to the current bucket, so
// the victim is effectively arbitrary; losing one caller's count is the
// accepted cost of keeping the map bounded.
func (e *Engine) evictOneLocked() {
	for k := range e.counters {
		delete(e.counters, k)
		prometheus.RateLimitCountersPruned.WithLabelValues(e.name).Inc()
		return
	}
}
