package conflict

// Filter keeps the conflicts matching severity and typ. Empty values match
// every conflict.
func Filter(conflicts []Conflict, severity Severity, typ Type) []Conflict {
	out := make([]Conflict, 0, len(conflicts))
	for _, c := range conflicts {
		if severity != "" && c.Severity != severity {
			continue
		}
		if typ != "" && c.Type != typ {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Summary aggregates conflicts.
type Summary struct {
	Total        int              `json:"total_conflicts"`
	BySeverity   map[Severity]int `json:"by_severity"`
	ByType       map[Type]int     `json:"by_type"`
	CrewAffected int              `json:"crew_affected"`
}

// Summarize counts conflicts by severity and type and the distinct crew
// members involved.
func Summarize(conflicts []Conflict) Summary {
	s := Summary{
		Total:      len(conflicts),
		BySeverity: map[Severity]int{SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0},
		ByType:     map[Type]int{},
	}
	crew := map[int64]struct{}{}
	for _, c := range conflicts {
		sev := c.Severity
		if sev == "" {
			sev = SeverityLow
		}
		s.BySeverity[sev]++
		s.ByType[c.Type]++
		crew[c.CrewID] = struct{}{}
	}
	s.CrewAffected = len(crew)
	return s
}

// ParseSeverity validates a severity filter value.
func ParseSeverity(v string) (Severity, bool) {
	switch s := Severity(v); s {
	case "", SeverityHigh, SeverityMedium, SeverityLow:
		return s, true
	}
	return "", false
}

// ParseType validates a conflict type filter value.
func ParseType(v string) (Type, bool) {
	switch t := Type(v); t {
	case "", TypeOverlappingDuties, TypeHardRuleViolation, TypeSoftRuleViolation, TypeQualificationMismatch:
		return t, true
	}
	return "", false
}
