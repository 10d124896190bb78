package workload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewroster/core/metrics/workload"
	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
	"github.com/kilianp07/crewroster/core/store"
)

var day0 = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func flight(id int64, no string, day, hour int) model.Flight {
	d := day0.AddDate(0, 0, day)
	dep := d.Add(time.Duration(hour) * time.Hour)
	return model.Flight{ID: id, FlightNo: no, Date: d, DepIATA: "DEL", ArrIATA: "BOM",
		SchedDep: dep, SchedArr: dep.Add(2 * time.Hour), AircraftCode: "A320"}
}

func TestBackfill(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	flights := []model.Flight{flight(1, "AI101", 0, 8), flight(2, "AI102", 0, 23), flight(3, "AI103", 1, 9)}
	require.NoError(t, store.Import(ctx, m, store.Dataset{
		Crew:    []model.Crew{{ID: 1, Name: "Asha", Rank: model.RankCaptain, Status: model.CrewActive}},
		Flights: flights,
	}))
	var duties []model.DutyAssignment
	for _, f := range flights {
		duties = append(duties, model.DutyAssignment{CrewID: 1, FlightID: f.ID,
			Start: f.SchedDep.Add(-time.Hour), End: f.SchedArr.Add(30 * time.Minute), BaseIATA: "DEL"})
	}
	require.NoError(t, m.ReplaceDuties(ctx, day0, day0.AddDate(0, 0, 2), duties))

	dst := workload.NewMemoryStore()
	require.NoError(t, dst.Add(workload.Record{CrewID: 1, Date: day0, Duties: 5, DutyHours: 40}))

	n, err := Backfill(ctx, m, dst, day0, day0, rules.IsNightDuty)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the overnight duty counts on the day it starts")

	recs, err := dst.Query(1, day0, day0.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].Duties)
	assert.InDelta(t, 7.0, recs[0].DutyHours, 1e-9)
	assert.InDelta(t, 4.0, recs[0].BlockHours, 1e-9)
	assert.Equal(t, 1, recs[0].NightDuties)
}

func TestRecordsClassifiesNight(t *testing.T) {
	f := flight(1, "AI101", 0, 23)
	e := model.RosterEntry{Flight: f, Duty: model.DutyPeriod{CrewID: 7, Start: f.SchedDep, End: f.SchedArr}}

	recs := Records([]model.RosterEntry{e}, func(time.Time, time.Time) bool { return true })
	require.Len(t, recs, 1)
	assert.Equal(t, int64(7), recs[0].CrewID)
	assert.Equal(t, 1, recs[0].NightDuties)

	recs = Records([]model.RosterEntry{e}, nil)
	assert.Zero(t, recs[0].NightDuties)
}
