// Package workload rebuilds daily workload records from committed duties.
package workload

import (
	"context"
	"time"

	"github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/core/metrics/workload"
	"github.com/kilianp07/crewroster/core/model"
)

// DutySource lists committed duties.
type DutySource interface {
	DutiesBetween(ctx context.Context, from, to time.Time) ([]model.RosterEntry, error)
}

// NightFunc classifies a duty as a night duty.
type NightFunc func(start, end time.Time) bool

// Records converts committed duties to single-duty workload records. Block
// time is taken from the scheduled flight.
func Records(entries []model.RosterEntry, night NightFunc) []workload.Record {
	recs := make([]workload.Record, 0, len(entries))
	for _, e := range entries {
		d := metrics.Duty{
			CrewID:    e.Duty.CrewID,
			Start:     e.Duty.Start,
			End:       e.Duty.End,
			BlockTime: e.Flight.BlockTime(),
		}
		if night != nil {
			d.Night = night(d.Start, d.End)
		}
		recs = append(recs, workload.FromDuty(d))
	}
	return recs
}

// Backfill replaces the workload of the days [from, to] in dst with the
// duties committed in src over the same days.
func Backfill(ctx context.Context, src DutySource, dst workload.Store, from, to time.Time, night NightFunc) (int, error) {
	from, to = model.Day(from), model.Day(to)
	entries, err := src.DutiesBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	if err := workload.Rebuild(dst, from, to, Records(entries, night)); err != nil {
		return 0, err
	}
	return len(entries), nil
}
