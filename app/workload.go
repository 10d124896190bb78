package app

import (
	"context"
	"time"

	"github.com/kilianp07/crewroster/core/metrics/workload"
	jobs "github.com/kilianp07/crewroster/jobs/workload"
)

// Workload derives the daily workload of crewID from the duties committed in
// [periodStart, periodEnd].
func (s *Service) Workload(ctx context.Context, periodStart, periodEnd time.Time, crewID int64) ([]workload.Record, error) {
	mem := workload.NewMemoryStore()
	if _, err := s.BackfillWorkload(ctx, mem, periodStart, periodEnd); err != nil {
		return nil, err
	}
	from, last, _ := period(periodStart, periodEnd)
	return mem.Query(crewID, from, last)
}

// BackfillWorkload rewrites the workload of [periodStart, periodEnd] in dst
// from the committed duties and returns the number of duties read. Night
// duties are classified with the default rules.
func (s *Service) BackfillWorkload(ctx context.Context, dst workload.Store, periodStart, periodEnd time.Time) (int, error) {
	from, last, err := period(periodStart, periodEnd)
	if err != nil {
		return 0, err
	}
	release, err := s.locks.acquire(ctx, from, last.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	defer release()
	engine, _, err := s.rules(ctx, "")
	if err != nil {
		return 0, err
	}
	n, err := jobs.Backfill(ctx, s.store, dst, from, last, engine.IsNightDuty)
	if err != nil {
		return 0, err
	}
	s.log.Infof("workload backfilled from %d duties, %s to %s", n, from.Format(time.DateOnly), last.Format(time.DateOnly))
	return n, nil
}
