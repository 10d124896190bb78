// Package workload aggregates committed duties into daily per-crew workload
// records.
package workload

import (
	"time"

	"github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/core/model"
)

// Record aggregates the workload of a crew member on one day. A duty counts
// on the day it starts.
type Record struct {
	CrewID      int64
	Date        time.Time
	Duties      int
	DutyHours   float64
	BlockHours  float64
	NightDuties int
}

// add merges o into r.
func (r *Record) add(o Record) {
	r.Duties += o.Duties
	r.DutyHours += o.DutyHours
	r.BlockHours += o.BlockHours
	r.NightDuties += o.NightDuties
}

// Utilization returns the duty hours as a share of limitHours.
func (r Record) Utilization(limitHours float64) float64 {
	if limitHours <= 0 {
		return 0
	}
	return r.DutyHours / limitHours
}

// FromDuty converts one duty to a single-duty record.
func FromDuty(d metrics.Duty) Record {
	r := Record{
		CrewID:     d.CrewID,
		Date:       model.Day(d.Start),
		Duties:     1,
		DutyHours:  d.End.Sub(d.Start).Hours(),
		BlockHours: d.BlockTime.Hours(),
	}
	if d.Night {
		r.NightDuties = 1
	}
	return r
}
