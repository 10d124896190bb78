package model

import (
	"fmt"
	"time"
)

// Flight is a scheduled flight. One flight is covered by exactly one duty.
type Flight struct {
	ID           int64     `json:"id"`
	FlightNo     string    `json:"flight_no"`
	Date         time.Time `json:"date"`
	DepIATA      string    `json:"dep_iata"`
	ArrIATA      string    `json:"arr_iata"`
	SchedDep     time.Time `json:"sched_dep"`
	SchedArr     time.Time `json:"sched_arr"`
	AircraftCode string    `json:"aircraft_code"`
}

// BlockTime is the scheduled gate-to-gate time.
func (f Flight) BlockTime() time.Duration { return f.SchedArr.Sub(f.SchedDep) }

// Validate checks the schedule is well formed.
func (f Flight) Validate() error {
	if f.FlightNo == "" {
		return fmt.Errorf("flight %d: flight number required", f.ID)
	}
	if f.SchedArr.Before(f.SchedDep) {
		return fmt.Errorf("flight %s: arrival before departure", f.FlightNo)
	}
	return nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool { return Day(a).Equal(Day(b)) }
