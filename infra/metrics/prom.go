package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/crewroster/core/metrics"
)

// PromSink records roster runs, conflict scans and disruptions in Prometheus
// metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	assignment  prometheus.Gauge
	compliance  prometheus.Gauge
	fairness    prometheus.Gauge
	preference  prometheus.Gauge
	unassigned  prometheus.Gauge
	conflicts   *prometheus.GaugeVec
	disruptions *prometheus.CounterVec
}

// NewPromSink registers the roster metrics on reg. A nil registerer defaults
// to the global Prometheus registerer. Collectors already registered by an
// earlier sink are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_runs_total",
		Help: "Number of committed roster runs",
	}, []string{"strategy", "fell_back"})); err != nil {
		return nil, err
	}
	if s.assignment, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_assignment_rate",
		Help: "Share of flights covered by the last roster",
	})); err != nil {
		return nil, err
	}
	if s.compliance, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_compliance_rate",
		Help: "Share of duties without hard rule violations in the last roster",
	})); err != nil {
		return nil, err
	}
	if s.fairness, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_fairness_score",
		Help: "Duty distribution fairness of the last roster",
	})); err != nil {
		return nil, err
	}
	if s.preference, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_avg_preference_score",
		Help: "Average preference score of the assigned duties of the last roster",
	})); err != nil {
		return nil, err
	}
	if s.unassigned, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roster_unassigned_flights",
		Help: "Flights left without crew by the last roster",
	})); err != nil {
		return nil, err
	}
	if s.conflicts, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roster_conflicts",
		Help: "Conflicts found by the last scan",
	}, []string{"severity"})); err != nil {
		return nil, err
	}
	if s.disruptions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_disruptions_total",
		Help: "Handled disruptions",
	}, []string{"type", "found"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRosterRun counts the run and publishes its KPIs.
func (s *PromSink) RecordRosterRun(run coremetrics.RosterRun) error {
	s.runs.WithLabelValues(run.Strategy, strconv.FormatBool(run.FellBack)).Inc()
	s.assignment.Set(run.AssignmentRate)
	s.compliance.Set(run.ComplianceRate)
	s.fairness.Set(run.FairnessScore)
	s.preference.Set(run.AvgPreferenceScore)
	s.unassigned.Set(float64(run.FlightsTotal - run.FlightsAssigned))
	return nil
}

// RecordConflictScan publishes the conflict counts per severity.
func (s *PromSink) RecordConflictScan(scan coremetrics.ConflictScan) error {
	s.conflicts.Reset()
	for sev, n := range scan.BySeverity {
		s.conflicts.WithLabelValues(sev).Set(float64(n))
	}
	return nil
}

// RecordDisruption counts a handled disruption.
func (s *PromSink) RecordDisruption(ev coremetrics.DisruptionEvent) error {
	s.disruptions.WithLabelValues(ev.Type, strconv.FormatBool(ev.Found)).Inc()
	return nil
}
