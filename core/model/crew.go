package model

import "fmt"

// Rank is the cockpit or cabin position held by a crew member.
type Rank string

const (
	RankCaptain         Rank = "Captain"
	RankFirstOfficer    Rank = "FirstOfficer"
	RankFlightAttendant Rank = "FlightAttendant"
)

// CrewStatus tells whether a crew member can be rostered at all.
type CrewStatus string

const (
	CrewActive   CrewStatus = "Active"
	CrewInactive CrewStatus = "Inactive"
)

// Crew is a rosterable crew member. Crew records are reference data and are
// never modified by the engine.
type Crew struct {
	ID       int64      `json:"id"`
	EmpCode  string     `json:"emp_code"`
	Name     string     `json:"name"`
	Rank     Rank       `json:"rank"`
	BaseIATA string     `json:"base_iata"`
	Status   CrewStatus `json:"status"`
}

// IsActive reports whether the crew member may receive duties.
func (c Crew) IsActive() bool { return c.Status == CrewActive }

// Validate checks the fields required by the rostering engine.
func (c Crew) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("crew id must be positive")
	}
	switch c.Status {
	case CrewActive, CrewInactive:
	default:
		return fmt.Errorf("crew %d: unknown status %q", c.ID, c.Status)
	}
	return nil
}
