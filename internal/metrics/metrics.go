// Package metrics registers the Prometheus metrics used by the gateway.
// Import this package (via blank import) from the server entry point to
// register all metrics before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatRequestsTotal counts chat requests labelled by personality and
	// outcome ("success", "fallback", "error").
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_chat_requests_total",
			Help: "Total number of chat requests processed.",
		},
		[]string{"personality", "status"},
	)

	// ChatDuration observes end-to-end chat latency in seconds. Cache hits
	// land in the lowest buckets; provider round-trips dominate the rest.
	ChatDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "robot_chat_duration_seconds",
			Help:    "End-to-end chat request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"personality"},
	)

	// CacheEvents counts response-cache activity by kind ("hit", "miss").
	CacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_cache_events_total",
			Help: "Response cache events by kind.",
		},
		[]string{"cache", "event"},
	)

	// ProviderErrors counts failed model completions per provider.
	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_provider_errors_total",
			Help: "Total model provider errors.",
		},
		[]string{"provider"},
	)

	// TTSRequestsTotal counts speech syntheses by vendor and outcome.
	TTSRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_tts_requests_total",
			Help: "Total text-to-speech requests by vendor.",
		},
		[]string{"vendor", "status"},
	)

	// TokensTotal counts prompt and completion tokens spent per provider.
	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_tokens_total",
			Help: "Total tokens consumed, split by direction.",
		},
		[]string{"provider", "direction"},
	)

	// RateLimitRejections counts requests rejected by the rate-limit
	// middleware, labelled by key_type.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_rate_limit_rejections_total",
			Help: "Total requests rejected by rate limiting.",
		},
		[]string{"key_type"},
	)
)
