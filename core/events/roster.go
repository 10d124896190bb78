package events

import "time"

// RosterEvent is published once a roster has been committed.
type RosterEvent struct {
	RunID           string    `json:"run_id"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	RulesVersion    string    `json:"rules_version"`
	Strategy        string    `json:"strategy"`
	FellBack        bool      `json:"fell_back"`
	FlightsTotal    int       `json:"flights_total"`
	FlightsAssigned int       `json:"flights_assigned"`
	Unassigned      []string  `json:"unassigned,omitempty"`
	Time            time.Time `json:"time"`
}

// DisruptionEvent is published after a disruption handler ran.
type DisruptionEvent struct {
	Type     string    `json:"type"`
	FlightNo string    `json:"flight_no,omitempty"`
	CrewID   int64     `json:"crew_id,omitempty"`
	Error    string    `json:"error,omitempty"`
	Proposed int       `json:"proposed"`
	Time     time.Time `json:"time"`
}
