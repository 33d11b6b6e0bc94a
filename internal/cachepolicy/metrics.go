package cachepolicy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is told about every cache outcome. NoopRecorder is used when none is set.
type Recorder interface {
	Hit(cacheName string)
	Miss(cacheName string)
	Error(cacheName string, op Op)
	Compute(cacheName string, d time.Duration)
}

type NoopRecorder struct{}

func (NoopRecorder) Hit(string)                    {}
func (NoopRecorder) Miss(string)                   {}
func (NoopRecorder) Error(string, Op)              {}
func (NoopRecorder) Compute(string, time.Duration) {}

// Metrics holds the Prometheus collectors for cache lookups.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Errors          *prometheus.CounterVec
	ComputeDuration *prometheus.HistogramVec
}

// NewMetrics registers the cache collectors under namespace with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by cache name and result (hit or miss)",
		}, []string{"cache", "result"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Backing store failures by cache name and operation",
		}, []string{"cache", "op"}),
		ComputeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "compute_duration_seconds",
			Help:      "Time spent computing values on a cache miss",
			Buckets:   []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"cache"}),
	}
}

func (m *Metrics) Hit(cacheName string) {
	m.Requests.WithLabelValues(cacheName, "hit").Inc()
}

func (m *Metrics) Miss(cacheName string) {
	m.Requests.WithLabelValues(cacheName, "miss").Inc()
}

func (m *Metrics) Error(cacheName string, op Op) {
	m.Errors.WithLabelValues(cacheName, string(op)).Inc()
}

func (m *Metrics) Compute(cacheName string, d time.Duration) {
	m.ComputeDuration.WithLabelValues(cacheName).Observe(d.Seconds())
}
