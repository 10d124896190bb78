package conflict

import (
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

// windows derives the calendar aggregates of one crew member's committed
// duties. Weeks are ISO weeks; months are calendar months of the duty start.
type windows struct {
	e       *rules.Engine
	entries []model.RosterEntry
	days    map[time.Time]bool
	night   []bool
}

func newWindows(e *rules.Engine, entries []model.RosterEntry) windows {
	w := windows{e: e, entries: entries, days: map[time.Time]bool{}, night: make([]bool, len(entries))}
	for i, en := range entries {
		w.days[model.Day(en.Duty.Start)] = true
		w.night[i] = e.IsNightDuty(en.Duty.Start, en.Duty.End)
	}
	return w
}

// streak counts consecutive calendar days with a duty ending on day.
func (w windows) streak(day time.Time) int {
	n := 0
	for d := model.Day(day); w.days[d]; d = d.AddDate(0, 0, -1) {
		n++
	}
	return n
}

func (w windows) dutyContext(idx int, rank model.Rank) rules.DutyContext {
	en := w.entries[idx]
	start := en.Duty.Start
	dc := rules.DutyContext{
		Start:           start,
		End:             en.Duty.End,
		Rank:            rank,
		ConsecutiveDays: w.streak(start),
	}
	y, wk := start.ISOWeek()
	for i, o := range w.entries {
		oy, owk := o.Duty.Start.ISOWeek()
		sameWeek := oy == y && owk == wk
		sameMonth := o.Duty.Start.Year() == start.Year() && o.Duty.Start.Month() == start.Month()
		block := o.Flight.BlockTime()
		if sameWeek {
			dc.WeeklyDuties = append(dc.WeeklyDuties, o.Duty.Duration())
			dc.WeeklyFlightTime += block
			if w.night[i] && i != idx {
				dc.WeeklyNightDuties++
			}
		}
		if sameMonth {
			dc.MonthlyDuties = append(dc.MonthlyDuties, o.Duty.Duration())
			dc.MonthlyFlightTime += block
		}
		if model.SameDay(o.Duty.Start, start) {
			dc.DailyFlightTime += block
		}
	}
	return dc
}
