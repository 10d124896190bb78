package metrics

import "errors"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRosterRun forwards the run to all sinks. Every sink is called; the
// errors are joined.
func (m *MultiSink) RecordRosterRun(run RosterRun) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRosterRun(run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordConflictScan forwards the scan to the sinks recording conflicts.
func (m *MultiSink) RecordConflictScan(scan ConflictScan) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := RecordConflicts(s, scan); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordDisruption forwards the event to the sinks recording disruptions.
func (m *MultiSink) RecordDisruption(ev DisruptionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := RecordDisruption(s, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases the sinks holding a connection.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
