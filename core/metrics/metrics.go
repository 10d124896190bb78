package metrics

import "time"

// Duty is one committed crew duty of a roster run.
type Duty struct {
	CrewID    int64
	Start     time.Time
	End       time.Time
	BlockTime time.Duration
	Night     bool
}

// RosterRun describes one generated and committed roster.
type RosterRun struct {
	RunID                 string
	PeriodStart           time.Time
	PeriodEnd             time.Time
	RulesVersion          string
	Strategy              string
	FellBack              bool
	FlightsTotal          int
	FlightsAssigned       int
	AssignmentRate        float64
	ComplianceRate        float64
	AvgPreferenceScore    float64
	FairnessScore         float64
	DutyDistributionRange int
	Duration              time.Duration
	Duties                []Duty
	Time                  time.Time
}

// Sink records roster runs for observability purposes.
type Sink interface {
	RecordRosterRun(run RosterRun) error
}

// ConflictScan summarizes one conflict detection pass.
type ConflictScan struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Total        int
	BySeverity   map[string]int
	ByType       map[string]int
	CrewAffected int
	Time         time.Time
}

// ConflictRecorder is implemented by sinks able to record conflict scans.
type ConflictRecorder interface {
	RecordConflictScan(scan ConflictScan) error
}

// DisruptionEvent records a handled disruption.
type DisruptionEvent struct {
	Type     string
	FlightNo string
	CrewID   int64
	Found    bool
	Proposed int
	Time     time.Time
}

// DisruptionRecorder is implemented by sinks able to record disruptions.
type DisruptionRecorder interface {
	RecordDisruption(ev DisruptionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRosterRun(RosterRun) error        { return nil }
func (NopSink) RecordConflictScan(ConflictScan) error  { return nil }
func (NopSink) RecordDisruption(DisruptionEvent) error { return nil }

// RecordConflicts forwards scan to s when it implements ConflictRecorder.
func RecordConflicts(s Sink, scan ConflictScan) error {
	if r, ok := s.(ConflictRecorder); ok {
		return r.RecordConflictScan(scan)
	}
	return nil
}

// RecordDisruption forwards ev to s when it implements DisruptionRecorder.
func RecordDisruption(s Sink, ev DisruptionEvent) error {
	if r, ok := s.(DisruptionRecorder); ok {
		return r.RecordDisruption(ev)
	}
	return nil
}
