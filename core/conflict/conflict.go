// Package conflict audits committed rosters against the duty rules.
package conflict

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

// Severity ranks a conflict.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Type classifies a conflict.
type Type string

const (
	TypeOverlappingDuties     Type = "overlapping_duties"
	TypeHardRuleViolation     Type = "hard_rule_violation"
	TypeSoftRuleViolation     Type = "soft_rule_violation"
	TypeQualificationMismatch Type = "qualification_mismatch"
)

// Conflict is one finding of the auditor.
type Conflict struct {
	ID          int       `json:"id"`
	Type        Type      `json:"type"`
	Severity    Severity  `json:"severity"`
	CrewID      int64     `json:"crew_id"`
	CrewName    string    `json:"crew_name"`
	Description string    `json:"description"`
	FlightIDs   []int64   `json:"flight_ids"`
	Timestamp   time.Time `json:"timestamp"`
	// Rule is the violated hard rule code or the soft penalty name.
	Rule         string  `json:"rule,omitempty"`
	PenaltyValue float64 `json:"penalty_value,omitempty"`
}

// Input is the committed data of one audit.
type Input struct {
	Entries        []model.RosterEntry
	Qualifications model.QualificationIndex
}

type crewDuties struct {
	crew    model.Crew
	entries []model.RosterEntry
}

// Detect reports overlapping duties, hard and soft rule findings and
// qualification mismatches. The input is never modified. Conflicts are
// ordered by crew identifier, then by finding kind, and numbered from 1.
func Detect(ctx context.Context, in Input, e *rules.Engine) ([]Conflict, error) {
	groups := groupByCrew(in.Entries)
	mean := meanDutyCount(groups)

	var out []Conflict
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, overlaps(g)...)
		out = append(out, ruleFindings(e, g, mean)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out = append(out, qualificationMismatches(in)...)
	for i := range out {
		out[i].ID = i + 1
	}
	return out, nil
}

func groupByCrew(entries []model.RosterEntry) []crewDuties {
	idx := map[int64]int{}
	var groups []crewDuties
	for _, en := range entries {
		i, ok := idx[en.Crew.ID]
		if !ok {
			i = len(groups)
			idx[en.Crew.ID] = i
			groups = append(groups, crewDuties{crew: en.Crew})
		}
		groups[i].entries = append(groups[i].entries, en)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].crew.ID < groups[j].crew.ID })
	for i := range groups {
		list := groups[i].entries
		sort.SliceStable(list, func(a, b int) bool { return list[a].Duty.Start.Before(list[b].Duty.Start) })
	}
	return groups
}

func meanDutyCount(groups []crewDuties) float64 {
	if len(groups) == 0 {
		return 0
	}
	total := 0
	for _, g := range groups {
		total += len(g.entries)
	}
	return float64(total) / float64(len(groups))
}

func overlaps(g crewDuties) []Conflict {
	var out []Conflict
	for i := 1; i < len(g.entries); i++ {
		prev, cur := g.entries[i-1], g.entries[i]
		if !cur.Duty.Start.Before(prev.Duty.End) {
			continue
		}
		out = append(out, Conflict{
			Type:        TypeOverlappingDuties,
			Severity:    SeverityHigh,
			CrewID:      g.crew.ID,
			CrewName:    g.crew.Name,
			Description: fmt.Sprintf("Overlapping duties: %s and %s", prev.Flight.FlightNo, cur.Flight.FlightNo),
			FlightIDs:   []int64{prev.Flight.ID, cur.Flight.ID},
			Timestamp:   prev.Duty.Start,
		})
	}
	return out
}

func ruleFindings(e *rules.Engine, g crewDuties, mean float64) []Conflict {
	var out []Conflict
	w := newWindows(e, g.entries)
	for i, en := range g.entries {
		dc := w.dutyContext(i, g.crew.Rank)
		for _, code := range e.CheckHardViolations(dc) {
			out = append(out, Conflict{
				Type:        TypeHardRuleViolation,
				Severity:    SeverityHigh,
				CrewID:      g.crew.ID,
				CrewName:    g.crew.Name,
				Description: "Hard rule violation: " + title(code),
				FlightIDs:   []int64{en.Flight.ID},
				Timestamp:   en.Duty.Start,
				Rule:        code,
			})
		}
		soft := e.CheckSoftPenalties(rules.SoftContext{
			Start:             en.Duty.Start,
			End:               en.Duty.End,
			ConsecutiveDays:   dc.ConsecutiveDays,
			WeeklyNightDuties: dc.WeeklyNightDuties,
			DutyCount:         len(g.entries),
			MeanDutyCount:     mean,
		})
		for _, name := range soft.Names() {
			v := soft[name]
			if v <= 0 {
				continue
			}
			out = append(out, Conflict{
				Type:         TypeSoftRuleViolation,
				Severity:     SeverityMedium,
				CrewID:       g.crew.ID,
				CrewName:     g.crew.Name,
				Description:  fmt.Sprintf("Soft rule concern: %s (Penalty: %.1f)", title(name), v),
				FlightIDs:    []int64{en.Flight.ID},
				Timestamp:    en.Duty.Start,
				Rule:         name,
				PenaltyValue: v,
			})
		}
	}
	return out
}

func qualificationMismatches(in Input) []Conflict {
	var out []Conflict
	for _, en := range in.Entries {
		q, ok := in.Qualifications.Lookup(en.Crew.ID, en.Flight.AircraftCode)
		var desc string
		switch {
		case !ok:
			desc = fmt.Sprintf("Assigned to %s without required qualification", en.Flight.AircraftCode)
		case !q.ValidOn(flightDate(en.Flight)):
			desc = fmt.Sprintf("Assigned to %s without valid qualification", en.Flight.AircraftCode)
		default:
			continue
		}
		out = append(out, Conflict{
			Type:        TypeQualificationMismatch,
			Severity:    SeverityHigh,
			CrewID:      en.Crew.ID,
			CrewName:    en.Crew.Name,
			Description: desc,
			FlightIDs:   []int64{en.Flight.ID},
			Timestamp:   en.Duty.Start,
		})
	}
	return out
}

func flightDate(f model.Flight) time.Time {
	if f.Date.IsZero() {
		return f.SchedDep
	}
	return f.Date
}

// title turns a snake_case code into words, capitalizing each.
func title(code string) string {
	words := strings.Split(code, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
