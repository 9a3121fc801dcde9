// Package metrics holds the Prometheus collectors of the service.
//
// All recording methods are safe to call on a nil *Metrics so that packages can be used without metrics in tests.
package metrics

import (
	"time"

	"github.com/myrjola/ikigai/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ikigai"

type Metrics struct {
	aiCompletions      *prometheus.CounterVec
	aiDuration         *prometheus.HistogramVec
	moduleCompletions  *prometheus.CounterVec
	persistFailures    prometheus.Counter
	persistQueueLength prometheus.Gauge
}

// New registers the collectors with reg. Use a fresh registry per process or test.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		aiCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "completions_total",
			Help:      "AI completion calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		aiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "completion_duration_seconds",
			Help:      "Latency of AI completion calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
		moduleCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "modules",
			Name:      "completions_total",
			Help:      "Module completion attempts by module and outcome.",
		}, []string{"module", "outcome"}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "persist_failures_total",
			Help:      "Profile merges that could not be persisted.",
		}),
		persistQueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "persist_queue_length",
			Help:      "Profile merges waiting to be persisted.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.aiCompletions, m.aiDuration, m.moduleCompletions, m.persistFailures, m.persistQueueLength,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register collector")
		}
	}
	return m, nil
}

func (m *Metrics) ObserveAICompletion(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.aiCompletions.WithLabelValues(provider, outcome).Inc()
	m.aiDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) ObserveModuleCompletion(module, outcome string) {
	if m == nil {
		return
	}
	m.moduleCompletions.WithLabelValues(module, outcome).Inc()
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) SetPersistQueueLength(n int) {
	if m == nil {
		return
	}
	m.persistQueueLength.Set(float64(n))
}
