package workload

import "time"

// Store persists workload records.
type Store interface {
	// Add merges the record into the day it belongs to.
	Add(Record) error
	// Clear removes every record dated within [from, to].
	Clear(from, to time.Time) error
	// Query returns the records of crewID between start and end inclusive,
	// oldest first.
	Query(crewID int64, start, end time.Time) ([]Record, error)
}

// Rebuild replaces the records dated within [from, to] with recs.
func Rebuild(s Store, from, to time.Time, recs []Record) error {
	if err := s.Clear(from, to); err != nil {
		return err
	}
	for _, r := range recs {
		if err := s.Add(r); err != nil {
			return err
		}
	}
	return nil
}
