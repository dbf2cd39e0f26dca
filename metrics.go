package regelum

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors the scheduler updates every
// tick, mirroring the teacher's metrics shape (one counter or histogram
// per concern, built with the plain prometheus constructors and
// registered once at construction with MustRegister).
type Metrics struct {
	ticksTotal      prometheus.Counter
	microstepsTotal prometheus.Counter
	tickDuration    prometheus.Histogram
	sccIterations   prometheus.Histogram
	zenoErrors      prometheus.Counter
	diagnostics     *prometheus.CounterVec
}

// NewMetrics registers every collector against reg and returns the
// bundle. reg may be prometheus.NewRegistry() or prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regelum",
			Name:      "ticks_total",
			Help:      "Total number of scheduler ticks executed.",
		}),
		microstepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regelum",
			Name:      "microsteps_total",
			Help:      "Total number of superdense microsteps executed across all ticks.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "regelum",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one scheduler tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		sccIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "regelum",
			Name:      "scc_fixpoint_iterations",
			Help:      "Number of propose/resolve/commit iterations an algebraic cycle took to stabilize.",
			Buckets:   prometheus.LinearBuckets(1, 1, 16),
		}),
		zenoErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "regelum",
			Name:      "zeno_errors_total",
			Help:      "Total number of ZenoRuntimeError occurrences.",
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "regelum",
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted during compile, labeled by code and severity.",
		}, []string{"code", "severity"}),
	}
	reg.MustRegister(m.ticksTotal, m.microstepsTotal, m.tickDuration, m.sccIterations, m.zenoErrors, m.diagnostics)
	return m
}

func (m *Metrics) observeTick(seconds float64) {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
	m.tickDuration.Observe(seconds)
}

func (m *Metrics) observeMicrostep() {
	if m == nil {
		return
	}
	m.microstepsTotal.Inc()
}

func (m *Metrics) observeSCCIterations(n int) {
	if m == nil {
		return
	}
	m.sccIterations.Observe(float64(n))
}

func (m *Metrics) observeZenoError() {
	if m == nil {
		return
	}
	m.zenoErrors.Inc()
}
