package rules

import (
	"math"
	"sort"
	"time"

	"github.com/kilianp07/crewroster/core/model"
)

// Hard rule codes.
const (
	DutyDurationExceeded      = "duty_duration_exceeded"
	FDPExceeded               = "fdp_exceeded"
	WeeklyDutyExceeded        = "weekly_duty_exceeded"
	MonthlyDutyExceeded       = "monthly_duty_exceeded"
	ConsecutiveDaysExceeded   = "consecutive_duty_days_exceeded"
	DailyFlightTimeExceeded   = "daily_flight_time_exceeded"
	WeeklyFlightTimeExceeded  = "weekly_flight_time_exceeded"
	MonthlyFlightTimeExceeded = "monthly_flight_time_exceeded"
	NightDutyLimitExceeded    = "night_duty_limit_exceeded"
)

// Soft penalty names.
const (
	LongDutyHours        = "long_duty_hours"
	LongConsecutiveDays  = "long_consecutive_days"
	ExcessiveNightDuties = "excessive_night_duties"
	FairnessDeviation    = "fairness_deviation"
)

// HardViolationPenalty is the score charged per violated hard rule.
const HardViolationPenalty = 1000.0

// DutyContext describes one duty together with the aggregates of its crew
// member needed by the hard rules.
type DutyContext struct {
	Start time.Time
	End   time.Time
	Rank  model.Rank
	// ConsecutiveDays is the duty streak ending with this duty.
	ConsecutiveDays int
	// WeeklyDuties and MonthlyDuties include this duty.
	WeeklyDuties  []time.Duration
	MonthlyDuties []time.Duration
	// WeeklyNightDuties counts the night duties of the week before this one.
	WeeklyNightDuties int
	DailyFlightTime   time.Duration
	WeeklyFlightTime  time.Duration
	MonthlyFlightTime time.Duration
}

// ViolationSet lists violated hard rule codes in evaluation order without
// duplicates.
type ViolationSet []string

// Has reports whether code is part of the set.
func (s ViolationSet) Has(code string) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

// Empty reports whether the duty is valid.
func (s ViolationSet) Empty() bool { return len(s) == 0 }

func (s ViolationSet) add(code string) ViolationSet {
	if s.Has(code) {
		return s
	}
	return append(s, code)
}

// CheckHardViolations evaluates every hard rule for the duty. Captains get a
// consecutive-day ceiling one day stricter than other ranks.
func (e *Engine) CheckHardViolations(dc DutyContext) ViolationSet {
	var out ViolationSet
	d := dc.End.Sub(dc.Start)
	if d > hours(e.cfg.MaxDutyHoursPerDay) {
		out = out.add(DutyDurationExceeded)
	}
	if d > hours(e.cfg.MaxFDPHours) {
		out = out.add(FDPExceeded)
	}
	if !e.WeeklyDutyOK(dc.WeeklyDuties) {
		out = out.add(WeeklyDutyExceeded)
	}
	if !e.MonthlyDutyOK(dc.MonthlyDuties) {
		out = out.add(MonthlyDutyExceeded)
	}
	if ceiling := e.consecutiveCeiling(dc.Rank); ceiling > 0 && dc.ConsecutiveDays > ceiling {
		out = out.add(ConsecutiveDaysExceeded)
	}
	if !e.DailyFlightTimeOK(dc.DailyFlightTime) {
		out = out.add(DailyFlightTimeExceeded)
	}
	if !e.WeeklyFlightTimeOK(dc.WeeklyFlightTime) {
		out = out.add(WeeklyFlightTimeExceeded)
	}
	if !e.MonthlyFlightTimeOK(dc.MonthlyFlightTime) {
		out = out.add(MonthlyFlightTimeExceeded)
	}
	if e.IsNightDuty(dc.Start, dc.End) && !e.NightDutyOK(dc.WeeklyNightDuties+1) {
		out = out.add(NightDutyLimitExceeded)
	}
	return out
}

// ConsecutiveCeiling returns the streak limit that applies to rank, or zero
// when unlimited.
func (e *Engine) ConsecutiveCeiling(rank model.Rank) int { return e.consecutiveCeiling(rank) }

func (e *Engine) consecutiveCeiling(rank model.Rank) int {
	ceiling := e.cfg.MaxConsecutiveDutyDays
	if ceiling == 0 {
		return 0
	}
	if rank == model.RankCaptain {
		return ceiling - 1
	}
	return ceiling
}

// SoftContext describes one duty for soft rule scoring.
type SoftContext struct {
	Start           time.Time
	End             time.Time
	ConsecutiveDays int
	// WeeklyNightDuties counts the night duties of the week before this one.
	WeeklyNightDuties int
	DutyCount         int
	MeanDutyCount     float64
}

// Penalties maps soft penalty names to non-negative values.
type Penalties map[string]float64

// Total sums all penalties.
func (p Penalties) Total() float64 {
	var t float64
	for _, v := range p {
		t += v
	}
	return t
}

// Names returns the penalty names in lexical order.
func (p Penalties) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CheckSoftPenalties scores the soft rules for the duty.
func (e *Engine) CheckSoftPenalties(sc SoftContext) Penalties {
	s := e.cfg.Soft
	out := Penalties{}
	if excess := sc.End.Sub(sc.Start) - hours(s.PreferredMaxDutyHoursPerDay); excess > 0 {
		out[LongDutyHours] = excess.Hours() * s.DutyExcessRate
	}
	if excess := sc.ConsecutiveDays - s.PreferredMaxConsecutiveDays; excess > 0 {
		out[LongConsecutiveDays] = float64(excess) * s.ConsecutiveExcessRate
	}
	if e.IsNightDuty(sc.Start, sc.End) && sc.WeeklyNightDuties >= s.PreferredNightDutiesPerWeek {
		out[ExcessiveNightDuties] = s.NightExcessPenalty
	}
	if sc.MeanDutyCount > 0 {
		out[FairnessDeviation] = math.Abs(float64(sc.DutyCount)-sc.MeanDutyCount) * s.FairnessWeight
	}
	return out
}

// Evaluate combines hard violations and soft penalties into a total penalty.
// The duty is valid only when no hard rule is violated.
func (e *Engine) Evaluate(hard ViolationSet, soft Penalties) (float64, bool) {
	return float64(len(hard))*HardViolationPenalty + soft.Total(), hard.Empty()
}
