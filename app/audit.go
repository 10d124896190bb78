package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/crewroster/core/conflict"
	"github.com/kilianp07/crewroster/core/journal"
	coremetrics "github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/core/model"
)

// DetectConflicts audits the duties committed in [periodStart, periodEnd]
// and returns the conflicts matching severity and typ. Empty filters match
// everything.
func (s *Service) DetectConflicts(ctx context.Context, periodStart, periodEnd time.Time, rulesVersion, severity, typ string) ([]conflict.Conflict, error) {
	sev, ok := conflict.ParseSeverity(severity)
	if !ok {
		return nil, fmt.Errorf("unknown severity %q", severity)
	}
	t, ok := conflict.ParseType(typ)
	if !ok {
		return nil, fmt.Errorf("unknown conflict type %q", typ)
	}
	all, err := s.scan(ctx, periodStart, periodEnd, rulesVersion)
	if err != nil {
		return nil, err
	}
	return conflict.Filter(all, sev, t), nil
}

// ConflictSummary counts the conflicts of a period by severity and type.
func (s *Service) ConflictSummary(ctx context.Context, periodStart, periodEnd time.Time, rulesVersion string) (conflict.Summary, error) {
	all, err := s.scan(ctx, periodStart, periodEnd, rulesVersion)
	if err != nil {
		return conflict.Summary{}, err
	}
	return conflict.Summarize(all), nil
}

// scan detects every conflict of the period and records the audit.
func (s *Service) scan(ctx context.Context, periodStart, periodEnd time.Time, rulesVersion string) ([]conflict.Conflict, error) {
	from, last, err := period(periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	to := last.AddDate(0, 0, 1)
	release, err := s.locks.acquire(ctx, from, to)
	if err != nil {
		return nil, err
	}
	defer release()

	engine, version, err := s.rules(ctx, rulesVersion)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.DutiesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load duties: %w", err)
	}
	quals, err := s.store.Qualifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("load qualifications: %w", err)
	}
	found, err := conflict.Detect(ctx, conflict.Input{Entries: entries, Qualifications: model.NewQualificationIndex(quals)}, engine)
	if err != nil {
		return nil, err
	}

	sum := conflict.Summarize(found)
	scan := coremetrics.ConflictScan{
		PeriodStart:  from,
		PeriodEnd:    last,
		Total:        sum.Total,
		BySeverity:   make(map[string]int, len(sum.BySeverity)),
		ByType:       make(map[string]int, len(sum.ByType)),
		CrewAffected: sum.CrewAffected,
		Time:         s.now(),
	}
	for k, v := range sum.BySeverity {
		scan.BySeverity[string(k)] = v
	}
	for k, v := range sum.ByType {
		scan.ByType[string(k)] = v
	}
	if err := coremetrics.RecordConflicts(s.sink, scan); err != nil {
		s.log.Warnf("record conflict scan: %v", err)
	}
	s.append(ctx, journal.Record{
		RunID:        journal.NewRunID(),
		Kind:         journal.KindConflicts,
		PeriodStart:  from,
		PeriodEnd:    last,
		RulesVersion: version,
		Summary:      fmt.Sprintf("%d conflicts, %d crew affected", sum.Total, sum.CrewAffected),
		KPIs: map[string]float64{
			"total":         float64(sum.Total),
			"high":          float64(sum.BySeverity[conflict.SeverityHigh]),
			"medium":        float64(sum.BySeverity[conflict.SeverityMedium]),
			"low":           float64(sum.BySeverity[conflict.SeverityLow]),
			"crew_affected": float64(sum.CrewAffected),
		},
	})
	return found, nil
}

// RosterCalendar returns the committed duties of [periodStart, periodEnd]
// joined with their flight and crew member. A positive crewID restricts the
// view to one crew member.
func (s *Service) RosterCalendar(ctx context.Context, periodStart, periodEnd time.Time, crewID int64) ([]model.RosterEntry, error) {
	from, last, err := period(periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.DutiesBetween(ctx, from, last.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if crewID <= 0 {
		return entries, nil
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Crew.ID == crewID {
			out = append(out, e)
		}
	}
	return out, nil
}
