package disruption

import (
	"time"

	"github.com/kilianp07/crewroster/core/model"
)

// Error codes reported in a Patch when the subject of a disruption does not
// exist.
const (
	ErrCodeFlightNotFound = "flight_not_found"
	ErrCodeCrewNotFound   = "crew_not_found"
)

// Patch statuses.
const (
	StatusDelayProposed         = "delay_proposed"
	StatusCancellationHandled   = "cancellation_handled"
	StatusUnavailabilityHandled = "unavailability_handled"
)

// KPI keys of a Patch.
const (
	KPIChangedFlights          = "changed_flights"
	KPIHandledCancellations    = "handled_cancellations"
	KPIHandledUnavailabilities = "handled_unavailabilities"
)

// Reassignment proposes moving a crew member onto a flight.
type Reassignment struct {
	// FromFlight is set for cancellations, FromCrewID for unavailability.
	FromFlight      string    `json:"from_flight,omitempty"`
	FromCrewID      int64     `json:"from_crew_id,omitempty"`
	FromCrewName    string    `json:"from_crew_name,omitempty"`
	FlightID        int64     `json:"flight_id"`
	FlightNo        string    `json:"flight_no"`
	FlightDate      time.Time `json:"flight_date"`
	CrewID          int64     `json:"crew_id"`
	CrewName        string    `json:"crew_name"`
	PreferenceScore float64   `json:"preference_score"`
}

// Patch is the outcome of one disruption handler. A missing flight or crew
// member is reported through Error rather than as a Go error.
type Patch struct {
	Type  model.DisruptionType `json:"type"`
	Error string               `json:"error,omitempty"`

	FlightID    int64      `json:"flight_id,omitempty"`
	FlightNo    string     `json:"flight_no,omitempty"`
	NewSchedDep *time.Time `json:"new_sched_dep_utc,omitempty"`
	NewSchedArr *time.Time `json:"new_sched_arr_utc,omitempty"`
	Feasible    *bool      `json:"feasible,omitempty"`

	CrewID          int64      `json:"crew_id,omitempty"`
	CrewName        string     `json:"crew_name,omitempty"`
	UnavailableFrom *time.Time `json:"unavailable_from,omitempty"`
	UnavailableTo   *time.Time `json:"unavailable_to,omitempty"`
	AffectedFlights int        `json:"affected_flights,omitempty"`

	Status        string         `json:"status,omitempty"`
	Message       string         `json:"message,omitempty"`
	Reassignments []Reassignment `json:"reassignments,omitempty"`
	Count         int            `json:"reassignment_count"`

	DisruptionID int64          `json:"disruption_id,omitempty"`
	KPIs         map[string]int `json:"kpis"`
}

// Found reports whether the subject of the disruption existed.
func (p Patch) Found() bool { return p.Error == "" }
