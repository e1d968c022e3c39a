package logsink

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/willibrandon/logsink/core"
)

// config holds the settings used to build a sink.
type config struct {
	capacity   int
	registerer prometheus.Registerer
	emitters   []core.Emitter
}

// Option is a functional option for configuring a sink.
type Option func(*config)

// WithMessageCapacity sets the body capacity, in bytes, of messages built
// with NewMessage and its shortcuts. Non-positive values select
// DefaultMessageCapacity.
func WithMessageCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

// WithMetrics registers the sink's collectors with reg. Sinks built against
// the same registerer share collectors: counters add up and the gauges report
// whichever sink updated them last.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithEmitter subscribes em while the sink is being built.
func WithEmitter(em core.Emitter) Option {
	return func(c *config) {
		if em != nil {
			c.emitters = append(c.emitters, em)
		}
	}
}
