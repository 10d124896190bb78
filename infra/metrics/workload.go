package metrics

import (
	"sort"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/crewroster/core/metrics"
	"github.com/kilianp07/crewroster/core/metrics/workload"
)

// WorkloadSink turns committed duties into daily per-crew workload records
// and gauges.
type WorkloadSink struct {
	store workload.Store
	limit float64
	duty  *prometheus.GaugeVec
	block *prometheus.GaugeVec
	night *prometheus.GaugeVec
	util  *prometheus.GaugeVec
}

// NewWorkloadSink creates a sink with Prometheus gauges registered on reg.
// limitHours is the daily duty limit used for utilization.
func NewWorkloadSink(store workload.Store, limitHours float64, reg prometheus.Registerer) (*WorkloadSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"crew_id", "day"}
	s := &WorkloadSink{store: store, limit: limitHours}
	var err error
	if s.duty, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crew_duty_hours",
		Help: "Daily duty hours per crew member",
	}, labels)); err != nil {
		return nil, err
	}
	if s.block, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crew_block_hours",
		Help: "Daily block hours per crew member",
	}, labels)); err != nil {
		return nil, err
	}
	if s.night, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crew_night_duties",
		Help: "Daily night duties per crew member",
	}, labels)); err != nil {
		return nil, err
	}
	if s.util, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crew_duty_utilization_ratio",
		Help: "Daily duty hours as a share of the daily duty limit",
	}, labels)); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordRosterRun rebuilds the workload of the run period from its duties.
func (s *WorkloadSink) RecordRosterRun(run coremetrics.RosterRun) error {
	recs := make([]workload.Record, 0, len(run.Duties))
	crew := map[int64]bool{}
	for _, d := range run.Duties {
		recs = append(recs, workload.FromDuty(d))
		crew[d.CrewID] = true
	}
	if err := workload.Rebuild(s.store, run.PeriodStart, run.PeriodEnd, recs); err != nil {
		return err
	}
	ids := make([]int64, 0, len(crew))
	for id := range crew {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		days, err := s.store.Query(id, run.PeriodStart, run.PeriodEnd)
		if err != nil {
			return err
		}
		for _, r := range days {
			crewID, day := strconv.FormatInt(id, 10), r.Date.Format(time.DateOnly)
			s.duty.WithLabelValues(crewID, day).Set(r.DutyHours)
			s.block.WithLabelValues(crewID, day).Set(r.BlockHours)
			s.night.WithLabelValues(crewID, day).Set(float64(r.NightDuties))
			s.util.WithLabelValues(crewID, day).Set(r.Utilization(s.limit))
		}
	}
	return nil
}
