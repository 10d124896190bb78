package roster

import (
	"context"
	"math"

	"github.com/kilianp07/crewroster/core/model"
)

// Reasons reported for unassigned flights.
const (
	ReasonNoQualifiedCrew = "no qualified crew"
	ReasonNoAvailableCrew = "no available crew"
	ReasonDutyRules       = "no crew satisfies duty rules"
)

// Composite score weights.
const (
	preferenceWeight = 0.5
	fairnessWeight   = 0.3
	efficiencyWeight = 0.2
)

// GreedyAssigner walks flights in departure order and gives each one to the
// best scoring eligible crew member.
type GreedyAssigner struct{}

// NewGreedyAssigner returns a GreedyAssigner.
func NewGreedyAssigner() GreedyAssigner { return GreedyAssigner{} }

// Optimize folds Step over the flights sorted by scheduled departure.
func (g GreedyAssigner) Optimize(ctx context.Context, in Input) (Result, error) {
	flights := sortedFlights(in.Flights)
	acc := NewAccumulator()
	out := make([]Assignment, 0, len(flights))
	for _, f := range flights {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		var a Assignment
		a, acc = g.Step(in, f, acc)
		out = append(out, a)
	}
	in.Flights = flights
	return Result{Assignments: out, KPIs: ComputeKPIs(in, out), Strategy: StrategyGreedy}, nil
}

type stage int

const (
	stageNone stage = iota
	stageQualified
	stageAvailable
	stageEligible
)

// Step assigns one flight given the running aggregates and returns the
// aggregates after the assignment. acc is left untouched.
func (g GreedyAssigner) Step(in Input, f model.Flight, acc Accumulator) (Assignment, Accumulator) {
	night := in.Rules.IsNightDuty(f.SchedDep, f.SchedArr)
	mean := acc.MeanDutyCount()

	best := -1
	bestScore := math.Inf(-1)
	var bestPref float64
	reached := stageNone
	for i, c := range in.Crew {
		if !c.IsActive() {
			continue
		}
		st := acc.State(c.ID)
		s := g.eligibility(in, c, st, f, night)
		if s > reached {
			reached = s
		}
		if s != stageEligible {
			continue
		}
		pref := crewPreferenceScore(in.Snapshot, c.ID, f)
		score := preferenceWeight*pref + fairnessWeight*fairness(st, mean) + efficiencyWeight*efficiency(st)
		if score > bestScore {
			best, bestScore, bestPref = i, score, pref
		}
	}
	if best < 0 {
		return unassigned(f, reasonFor(reached)), acc
	}
	c := in.Crew[best]
	next := acc.With(c.ID, acc.State(c.ID).Append(f.SchedDep, f.SchedArr, night))
	return assigned(f, c, bestPref), next
}

// eligibility returns how far the crew member got through the eligibility
// checks, in order: qualification, availability, then the duty rules.
func (g GreedyAssigner) eligibility(in Input, c model.Crew, st CrewState, f model.Flight, night bool) stage {
	d := flightDate(f)
	if !in.Snapshot.Qualifications.QualifiedOn(c.ID, f.AircraftCode, d) {
		return stageNone
	}
	if in.Snapshot.Availability.Blocked(c.ID, d) {
		return stageQualified
	}
	if !dutyRulesOK(in, c, st, f, night) {
		return stageAvailable
	}
	return stageEligible
}

func dutyRulesOK(in Input, c model.Crew, st CrewState, f model.Flight, night bool) bool {
	e := in.Rules
	if !e.DutyDurationOK(f.SchedDep, f.SchedArr) {
		return false
	}
	if !e.RestOK(st.LastDutyEnd, f.SchedDep) || !e.NightRestOK(st.LastDutyEnd, st.LastWasNight, f.SchedDep) {
		return false
	}
	dc := st.Prospective(c.Rank, f.SchedDep, f.SchedArr)
	if !e.WeeklyDutyOK(dc.WeeklyDuties) || !e.MonthlyDutyOK(dc.MonthlyDuties) {
		return false
	}
	if !e.ConsecutiveDaysOK(dc.ConsecutiveDays) {
		return false
	}
	if ceiling := e.ConsecutiveCeiling(c.Rank); ceiling > 0 && dc.ConsecutiveDays > ceiling {
		return false
	}
	if night && !e.NightDutyOK(dc.WeeklyNightDuties+1) {
		return false
	}
	return e.DailyFlightTimeOK(dc.DailyFlightTime) && e.WeeklyFlightTimeOK(dc.WeeklyFlightTime) &&
		e.MonthlyFlightTimeOK(dc.MonthlyFlightTime)
}

func fairness(st CrewState, mean float64) float64 {
	var s float64
	if mean > 0 {
		s -= 2 * math.Abs(float64(st.DutyCount)-mean)
	}
	s -= 1.5 * float64(st.Streak)
	s -= float64(st.NightDuties)
	return s
}

func efficiency(st CrewState) float64 { return 0.5 * float64(st.DutyCount) }

func reasonFor(s stage) string {
	switch s {
	case stageNone:
		return ReasonNoQualifiedCrew
	case stageQualified:
		return ReasonNoAvailableCrew
	default:
		return ReasonDutyRules
	}
}
