package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripwise_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripwise_latency_ms",
			Help:    "Request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"path"},
	)

	RateLimitDecisions = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripwise_ratelimit_decisions_total",
			Help: "Rate limiter admission decisions",
		},
		[]string{"limiter", "outcome"},
	)

	RateLimitCountersPruned = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripwise_ratelimit_counters_pruned_total",
			Help: "Stale or evicted rate limit counters removed from the store",
		},
		[]string{"limiter"},
	)

	QuotaDecisions = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripwise_quota_decisions_total",
			Help: "Quota admission decisions",
		},
		[]string{"quota", "outcome"},
	)

	CacheOperations = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripwise_cache_operations_total",
			Help: "Ephemeral cache hits, misses, sets and evictions",
		},
		[]string{"operation"},
	)

	SignatureRejections = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripwise_signature_rejections_total",
			Help: "Request signature validation failures",
		},
		[]string{"reason"},
	)

	SuspiciousResponses = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripwise_suspicious_responses_total",
			Help: "Responses flagged by the audit stage",
		},
		[]string{"reason"},
	)
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

func Registry() *prometheus.Registry {
	return registry
}
