package roster

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	solverAttempts   prometheus.Counter
	solverFallbacks  *prometheus.CounterVec
	optimizeDuration *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, *prometheus.CounterVec, *prometheus.HistogramVec) {
	att := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_solver_attempts_total",
		Help: "Number of constraint solver runs",
	})
	fb := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_solver_fallbacks_total",
		Help: "Number of solver failures answered by the greedy strategy",
	}, []string{"reason"})
	dur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roster_optimize_duration_seconds",
		Help:    "Wall-clock time of one roster optimization",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})
	return att, fb, dur
}

func init() {
	solverAttempts, solverFallbacks, optimizeDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers roster metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solverAttempts, solverFallbacks, optimizeDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solverAttempts, solverFallbacks, optimizeDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
