package logsink

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/willibrandon/logsink/core"
)

const metricsNamespace = "logsink"

// sinkMetrics exports sink activity. A nil *sinkMetrics records nothing.
type sinkMetrics struct {
	records    *prometheus.CounterVec
	deliveries prometheus.Counter
	failures   prometheus.Counter
	emitters   prometheus.Gauge
	history    prometheus.Gauge
}

// newSinkMetrics registers the collectors with reg. Sinks sharing a registerer
// share the collectors already registered there.
func newSinkMetrics(reg prometheus.Registerer) *sinkMetrics {
	return &sinkMetrics{
		records: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_total",
			Help:      "Records appended to the sink history.",
		}, []string{"severity"})),
		deliveries: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "deliveries_total",
			Help:      "Records successfully handed to an emitter.",
		})),
		failures: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "emitter_failures_total",
			Help:      "Emitters removed after failing to log a record.",
		})),
		emitters: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "emitters",
			Help:      "Currently subscribed emitters.",
		})),
		history: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "history_records",
			Help:      "Records held in the sink history.",
		})),
	}
}

// register adds c to reg, or returns the equivalent collector reg already holds.
// Any other registration error panics, as promauto does.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *sinkMetrics) logged(sev core.Severity, historyLen int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(sev.String()).Inc()
	m.history.Set(float64(historyLen))
}

func (m *sinkMetrics) delivered() {
	if m == nil {
		return
	}
	m.deliveries.Inc()
}

func (m *sinkMetrics) failed() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

func (m *sinkMetrics) setEmitters(n int) {
	if m == nil {
		return
	}
	m.emitters.Set(float64(n))
}
