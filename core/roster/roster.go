package roster

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

// NoteUnassigned marks a flight that received no crew.
const NoteUnassigned = "UNASSIGNED"

var (
	// ErrInfeasible indicates the assignment model has no integral solution.
	ErrInfeasible = errors.New("roster model infeasible")
	// ErrTimeout indicates the solver exceeded its wall-clock budget.
	ErrTimeout = errors.New("roster solver timeout")
)

// Input is the consistent snapshot one optimization runs against.
type Input struct {
	Flights  []model.Flight
	Crew     []model.Crew
	Snapshot model.Snapshot
	Rules    *rules.Engine
}

// Assignment is the outcome for one flight.
type Assignment struct {
	FlightID        int64     `json:"flight_id"`
	FlightNo        string    `json:"flight_no"`
	CrewID          *int64    `json:"crew_id,omitempty"`
	CrewName        string    `json:"crew_name,omitempty"`
	Start           time.Time `json:"duty_start"`
	End             time.Time `json:"duty_end"`
	PreferenceScore float64   `json:"preference_score"`
	Note            string    `json:"note,omitempty"`
	Reason          string    `json:"reason,omitempty"`
}

// Assigned reports whether a crew member covers the flight.
func (a Assignment) Assigned() bool { return a.CrewID != nil }

// KPIs summarizes a roster.
type KPIs struct {
	FlightsTotal          int     `json:"flights_total"`
	FlightsAssigned       int     `json:"flights_assigned"`
	AssignmentRate        float64 `json:"assignment_rate"`
	AvgDutyPerCrew        float64 `json:"avg_duty_per_crew"`
	MaxDutyPerCrew        int     `json:"max_duty_per_crew"`
	MinDutyPerCrew        int     `json:"min_duty_per_crew"`
	DutyDistributionRange int     `json:"duty_distribution_range"`
	ComplianceRate        float64 `json:"compliance_rate"`
	AvgPreferenceScore    float64 `json:"avg_preference_score"`
	FairnessScore         float64 `json:"fairness_score"`
}

// Result is the output of one optimization.
type Result struct {
	Assignments []Assignment `json:"assignments"`
	KPIs        KPIs         `json:"kpis"`
	Strategy    Strategy     `json:"strategy"`
	// FellBack is set when the solver failed and the greedy strategy produced
	// the roster.
	FellBack bool   `json:"fell_back"`
	Reason   string `json:"fallback_reason,omitempty"`
}

// Optimizer assigns crew to every flight of an Input.
type Optimizer interface {
	Optimize(ctx context.Context, in Input) (Result, error)
}

// sortedFlights returns the flights ordered by scheduled departure. Flights
// departing together keep their identifier order.
func sortedFlights(flights []model.Flight) []model.Flight {
	out := make([]model.Flight, len(flights))
	copy(out, flights)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SchedDep.Equal(out[j].SchedDep) {
			return out[i].SchedDep.Before(out[j].SchedDep)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func flightDate(f model.Flight) time.Time {
	if f.Date.IsZero() {
		return model.Day(f.SchedDep)
	}
	return f.Date
}

func unassigned(f model.Flight, reason string) Assignment {
	return Assignment{
		FlightID: f.ID,
		FlightNo: f.FlightNo,
		Start:    f.SchedDep,
		End:      f.SchedArr,
		Note:     NoteUnassigned,
		Reason:   reason,
	}
}

func assigned(f model.Flight, c model.Crew, pref float64) Assignment {
	id := c.ID
	return Assignment{
		FlightID:        f.ID,
		FlightNo:        f.FlightNo,
		CrewID:          &id,
		CrewName:        c.Name,
		Start:           f.SchedDep,
		End:             f.SchedArr,
		PreferenceScore: pref,
	}
}
