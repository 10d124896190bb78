package roster

import (
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

// DutyRecord is one duty held in a crew member's running history.
type DutyRecord struct {
	Start time.Time
	End   time.Time
	Night bool
}

// Duration returns the duty length.
func (d DutyRecord) Duration() time.Duration { return d.End.Sub(d.Start) }

// CrewState is the running aggregate of one crew member.
type CrewState struct {
	DutyCount    int
	Duties       []DutyRecord
	LastDutyEnd  *time.Time
	LastWasNight bool
	// Streak is the consecutive-day count of the latest duty.
	Streak      int
	NightDuties int
}

// Accumulator carries the per-crew aggregates between greedy steps. Values are
// never mutated in place; With returns an updated copy.
type Accumulator struct {
	crew       map[int64]CrewState
	totalDuty  int
	crewWithin int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() Accumulator {
	return Accumulator{crew: map[int64]CrewState{}}
}

// State returns the aggregates of crewID.
func (a Accumulator) State(crewID int64) CrewState { return a.crew[crewID] }

// MeanDutyCount is the mean duty count over crew holding at least one duty.
func (a Accumulator) MeanDutyCount() float64 {
	if a.crewWithin == 0 {
		return 0
	}
	return float64(a.totalDuty) / float64(a.crewWithin)
}

// With returns a copy of a where crewID holds st.
func (a Accumulator) With(crewID int64, st CrewState) Accumulator {
	next := Accumulator{crew: make(map[int64]CrewState, len(a.crew)+1), totalDuty: a.totalDuty, crewWithin: a.crewWithin}
	for k, v := range a.crew {
		next.crew[k] = v
	}
	prev := a.crew[crewID]
	next.totalDuty += st.DutyCount - prev.DutyCount
	if prev.DutyCount == 0 && st.DutyCount > 0 {
		next.crewWithin++
	}
	if prev.DutyCount > 0 && st.DutyCount == 0 {
		next.crewWithin--
	}
	next.crew[crewID] = st
	return next
}

// nextStreak increments the streak when start falls exactly one calendar day
// after the previous duty end, and restarts it otherwise.
func (s CrewState) nextStreak(start time.Time) int {
	if s.LastDutyEnd != nil && model.Day(start).Equal(model.Day(*s.LastDutyEnd).AddDate(0, 0, 1)) {
		return s.Streak + 1
	}
	return 1
}

// Append returns the state after taking the duty.
func (s CrewState) Append(start, end time.Time, night bool) CrewState {
	duties := make([]DutyRecord, len(s.Duties), len(s.Duties)+1)
	copy(duties, s.Duties)
	out := CrewState{
		DutyCount:    s.DutyCount + 1,
		Duties:       append(duties, DutyRecord{Start: start, End: end, Night: night}),
		LastWasNight: night,
		Streak:       s.nextStreak(start),
		NightDuties:  s.NightDuties,
	}
	e := end
	out.LastDutyEnd = &e
	if night {
		out.NightDuties++
	}
	return out
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Prospective builds the hard rule context of a duty from start to end as if
// it were appended to the state.
func (s CrewState) Prospective(rank model.Rank, start, end time.Time) rules.DutyContext {
	d := end.Sub(start)
	dc := rules.DutyContext{
		Start:            start,
		End:              end,
		Rank:             rank,
		ConsecutiveDays:  s.nextStreak(start),
		WeeklyDuties:     []time.Duration{d},
		MonthlyDuties:    []time.Duration{d},
		DailyFlightTime:  d,
		WeeklyFlightTime: d,
	}
	dc.MonthlyFlightTime = d
	for _, r := range s.Duties {
		rd := r.Duration()
		if sameISOWeek(r.Start, start) {
			dc.WeeklyDuties = append(dc.WeeklyDuties, rd)
			dc.WeeklyFlightTime += rd
			if r.Night {
				dc.WeeklyNightDuties++
			}
		}
		if sameMonth(r.Start, start) {
			dc.MonthlyDuties = append(dc.MonthlyDuties, rd)
			dc.MonthlyFlightTime += rd
		}
		if model.SameDay(r.Start, start) {
			dc.DailyFlightTime += rd
		}
	}
	return dc
}
