package regelum

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// schedulerConfig accumulates Scheduler construction options (functional
// options pattern).
type schedulerConfig struct {
	mode       Mode
	metrics    *Metrics
	tracer     trace.Tracer
	maxStallMS int
}

// Option configures a Scheduler at construction time.
type Option func(*schedulerConfig) error

// WithMode selects the diagnostics severity mode (§4.11). Defaults to
// Pragmatic.
func WithMode(m Mode) Option {
	return func(c *schedulerConfig) error {
		c.mode = m
		return nil
	}
}

// WithMetricsRegistry attaches Prometheus metrics registered against reg.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(c *schedulerConfig) error {
		c.metrics = NewMetrics(reg)
		return nil
	}
}

// WithTracer attaches an OpenTelemetry tracer used to span each tick and
// each cycle's microstep loop.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *schedulerConfig) error {
		c.tracer = tracer
		return nil
	}
}

func newSchedulerConfig(opts []Option) (*schedulerConfig, error) {
	c := &schedulerConfig{mode: Pragmatic}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
