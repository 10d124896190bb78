package rules

import (
	"time"

	"github.com/kilianp07/crewroster/core/model"
)

// Engine evaluates hard and soft rules against one Config. All methods are
// pure functions of their arguments.
type Engine struct {
	cfg Config
}

// New returns an Engine for the normalized configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.Normalize()}
}

// Config returns the normalized configuration in use.
func (e *Engine) Config() Config { return e.cfg }

// DutyDurationOK checks the duty length against both the daily duty limit
// and the FDP limit.
func (e *Engine) DutyDurationOK(start, end time.Time) bool {
	d := end.Sub(start)
	return d <= hours(e.cfg.MaxDutyHoursPerDay) && d <= hours(e.cfg.MaxFDPHours)
}

// RestOK checks the gap since the previous duty. A crew member without a
// previous duty is always rested.
func (e *Engine) RestOK(lastEnd *time.Time, newStart time.Time) bool {
	if lastEnd == nil {
		return true
	}
	need := hours(e.cfg.MinRestHoursAfterDuty)
	if e.cfg.MinRestHoursBetweenDuties > 0 {
		need = hours(e.cfg.MinRestHoursBetweenDuties)
	}
	return newStart.Sub(*lastEnd) >= need
}

// NightRestOK applies the dedicated rest minimum after a night duty.
func (e *Engine) NightRestOK(lastEnd *time.Time, lastWasNight bool, newStart time.Time) bool {
	if lastEnd == nil || !lastWasNight || e.cfg.MinRestHoursAfterNightDuty == 0 {
		return true
	}
	return newStart.Sub(*lastEnd) >= hours(e.cfg.MinRestHoursAfterNightDuty)
}

// WeeklyDutyOK checks the sum of durations against the weekly ceiling.
func (e *Engine) WeeklyDutyOK(durations []time.Duration) bool {
	return withinCeiling(sum(durations), e.cfg.MaxDutyHoursPerWeek)
}

// MonthlyDutyOK checks the sum of durations against the monthly ceiling.
func (e *Engine) MonthlyDutyOK(durations []time.Duration) bool {
	return withinCeiling(sum(durations), e.cfg.MaxDutyHoursPerMonth)
}

// ConsecutiveDaysOK checks a duty streak length.
func (e *Engine) ConsecutiveDaysOK(n int) bool {
	return e.cfg.MaxConsecutiveDutyDays == 0 || n <= e.cfg.MaxConsecutiveDutyDays
}

// NightDutyOK checks a weekly night duty count.
func (e *Engine) NightDutyOK(count int) bool {
	return e.cfg.MaxNightDutiesPerWeek == 0 || count <= e.cfg.MaxNightDutiesPerWeek
}

// ExtendedFDPOK checks the duty against the extended FDP limit when the duty
// is extended and one is configured, and against the normal FDP otherwise.
func (e *Engine) ExtendedFDPOK(start, end time.Time, extended bool) bool {
	d := end.Sub(start)
	if extended && e.cfg.MaxExtendedFDPHours > 0 {
		return d <= hours(e.cfg.MaxExtendedFDPHours)
	}
	return d <= hours(e.cfg.MaxFDPHours)
}

func (e *Engine) DailyFlightTimeOK(d time.Duration) bool {
	return withinCeiling(d, e.cfg.MaxFlightHoursPerDay)
}

func (e *Engine) WeeklyFlightTimeOK(d time.Duration) bool {
	return withinCeiling(d, e.cfg.MaxFlightHoursPerWeek)
}

func (e *Engine) MonthlyFlightTimeOK(d time.Duration) bool {
	return withinCeiling(d, e.cfg.MaxFlightHoursPerMonth)
}

// RequiredRestAfter returns the rest owed after a duty of length d under the
// extended FDP scheme.
func (e *Engine) RequiredRestAfter(d time.Duration) time.Duration {
	switch {
	case d <= 8*time.Hour:
		return 10 * time.Hour
	case d <= 10*time.Hour:
		return 12 * time.Hour
	case d <= 12*time.Hour:
		return 14 * time.Hour
	default:
		return 16 * time.Hour
	}
}

// IsDutyExtendable reports whether a duty may run under the extended FDP.
// Captains keep one hour of margin below the extended limit.
func (e *Engine) IsDutyExtendable(start, end time.Time, rank model.Rank, consecutive int) bool {
	if !e.ExtendedFDPOK(start, end, true) {
		return false
	}
	if e.cfg.MaxConsecutiveDutyDays > 0 && consecutive >= e.cfg.MaxConsecutiveDutyDays {
		return false
	}
	if rank == model.RankCaptain {
		limit := e.cfg.MaxExtendedFDPHours
		if limit == 0 {
			limit = e.cfg.MaxFDPHours
		}
		return end.Sub(start) <= hours(limit-1)
	}
	return true
}

func withinCeiling(d time.Duration, ceilingHours float64) bool {
	return ceilingHours == 0 || d <= hours(ceilingHours)
}

func sum(ds []time.Duration) time.Duration {
	var t time.Duration
	for _, d := range ds {
		t += d
	}
	return t
}
