package model

import "time"

// DutyPeriod is a span during which a crew member is on duty.
type DutyPeriod struct {
	ID       int64     `json:"id"`
	CrewID   int64     `json:"crew_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	BaseIATA string    `json:"base_iata"`
}

// Duration returns the elapsed duty time.
func (d DutyPeriod) Duration() time.Duration { return d.End.Sub(d.Start) }

// Overlaps reports whether the two periods share any instant.
func (d DutyPeriod) Overlaps(o DutyPeriod) bool {
	return d.Start.Before(o.End) && o.Start.Before(d.End)
}

// DutyFlight links a duty to the flight it covers.
type DutyFlight struct {
	DutyID   int64 `json:"duty_id"`
	FlightID int64 `json:"flight_id"`
	LegSeq   int   `json:"leg_seq"`
}

// DutyAssignment is the unit written when a roster is committed. The store
// allocates the duty identifier.
type DutyAssignment struct {
	CrewID   int64     `json:"crew_id"`
	FlightID int64     `json:"flight_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	BaseIATA string    `json:"base_iata"`
}

// RosterEntry is a committed duty joined with its flight and crew member.
type RosterEntry struct {
	Duty   DutyPeriod `json:"duty"`
	Flight Flight     `json:"flight"`
	Crew   Crew       `json:"crew"`
}
