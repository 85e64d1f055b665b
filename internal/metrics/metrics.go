package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors exposed on /metrics.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "juicebar",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "juicebar",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	MenuCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "juicebar",
			Subsystem: "menu_cache",
			Name:      "requests_total",
			Help:      "Menu cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)

	MenuCacheInvalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "juicebar",
			Subsystem: "menu_cache",
			Name:      "invalidations_total",
			Help:      "Number of menu cache invalidations triggered by admin writes.",
		},
	)

	MenuRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "juicebar",
			Subsystem: "menu_cache",
			Name:      "rebuild_duration_seconds",
			Help:      "Time spent rebuilding the public menu snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	ResolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "juicebar",
			Subsystem: "resolver",
			Name:      "duration_seconds",
			Help:      "Duration of ingredient resolution per menu item.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	ConfigReplacements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "juicebar",
			Subsystem: "config_store",
			Name:      "replacements_total",
			Help:      "Ingredient configuration scope replacements by scope and outcome.",
		},
		[]string{"scope", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPRequests,
		HTTPDuration,
		MenuCacheRequests,
		MenuCacheInvalidations,
		MenuRebuildDuration,
		ResolveDuration,
		ConfigReplacements,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
