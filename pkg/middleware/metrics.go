package middleware

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sextant-dev/sextant/pkg/router"
)

// MetricsConfig configures the Prometheus navigation metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "sextant").
	Namespace string

	// Subsystem is the metrics subsystem (default: "router").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for navigation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus navigation metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "sextant",
		Subsystem: "router",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// navMetrics holds the Prometheus collectors for one observer instance.
type navMetrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	guardRejections    prometheus.Counter
	inFlight           prometheus.Gauge

	mu     sync.Mutex
	starts map[int64]time.Time
}

func initMetrics(config MetricsConfig) *navMetrics {
	factory := promauto.With(config.Registry)

	return &navMetrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of finished navigations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation duration from creation to terminal stage",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		guardRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "guard_rejections_total",
			Help:        "Total number of navigations rejected by a guard",
			ConstLabels: config.ConstLabels,
		}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_in_flight",
			Help:        "Number of navigations currently between creation and a terminal stage",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus returns an observer that records navigation metrics.
//
// Metrics collected:
//   - sextant_router_navigations_total{outcome}: finished navigations,
//     outcome is succeeded, cancelled or errored
//   - sextant_router_navigation_duration_seconds{outcome}: histogram of
//     navigation durations
//   - sextant_router_guard_rejections_total: navigations a guard rejected
//   - sextant_router_navigations_in_flight: running navigations
//
// Each call creates and registers a fresh set of collectors; create one
// observer per router and registry.
func Prometheus(opts ...MetricsOption) router.Observer {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := initMetrics(config)
	m.starts = make(map[int64]time.Time)

	return func(ev router.Event) {
		switch {
		case ev.Stage == router.StageCreated:
			m.mu.Lock()
			m.starts[ev.ID] = ev.At
			m.mu.Unlock()
			m.inFlight.Inc()

		case ev.Stage.Terminal():
			m.mu.Lock()
			start, ok := m.starts[ev.ID]
			delete(m.starts, ev.ID)
			m.mu.Unlock()

			outcome := ev.Stage.String()
			m.navigationsTotal.WithLabelValues(outcome).Inc()
			if ok {
				m.navigationDuration.WithLabelValues(outcome).Observe(ev.At.Sub(start).Seconds())
				m.inFlight.Dec()
			}
			var rejected *router.GuardRejectedError
			if errors.As(ev.Err, &rejected) {
				m.guardRejections.Inc()
			}
		}
	}
}
