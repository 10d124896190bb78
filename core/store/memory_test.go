package store

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

var day0 = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T) *Memory {
	t.Helper()
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutCrew(ctx, model.Crew{ID: 1, Name: "Asha", Rank: model.RankCaptain, Status: model.CrewActive}))
	require.NoError(t, m.PutCrew(ctx, model.Crew{ID: 2, Name: "Ravi", Rank: model.RankFirstOfficer, Status: model.CrewInactive}))
	for i, d := range []int{0, 1, 5} {
		dep := day0.AddDate(0, 0, d).Add(8 * time.Hour)
		require.NoError(t, m.PutFlight(ctx, model.Flight{
			ID: int64(i + 1), FlightNo: "AI101", Date: day0.AddDate(0, 0, d),
			SchedDep: dep, SchedArr: dep.Add(2 * time.Hour), AircraftCode: "A320",
		}))
	}
	return m
}

func TestMemoryCrew(t *testing.T) {
	m := seed(t)
	ctx := context.Background()

	all, err := m.Crew(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	active, err := m.ActiveCrew(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)

	_, err = m.CrewByID(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, m.PutCrew(ctx, model.Crew{ID: 3, Status: "Retired"}))
}

func TestMemoryFlights(t *testing.T) {
	m := seed(t)
	ctx := context.Background()

	fs, err := m.FlightsBetween(ctx, day0, day0.AddDate(0, 0, 1).Add(23*time.Hour))
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, int64(1), fs[0].ID)

	byNo, err := m.FlightsByNumber(ctx, "AI101")
	require.NoError(t, err)
	require.Len(t, byNo, 3)
	assert.Equal(t, int64(3), byNo[0].ID, "latest date first")
}

func TestMemoryReplaceDuties(t *testing.T) {
	m := seed(t)
	ctx := context.Background()
	from, to := day0, day0.AddDate(0, 0, 7)
	duty := func(flight int64, d int) model.DutyAssignment {
		s := day0.AddDate(0, 0, d).Add(8 * time.Hour)
		return model.DutyAssignment{CrewID: 1, FlightID: flight, Start: s, End: s.Add(2 * time.Hour)}
	}

	require.NoError(t, m.ReplaceDuties(ctx, from, to, []model.DutyAssignment{duty(1, 0), duty(2, 1)}))
	got, err := m.DutiesBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Asha", got[0].Crew.Name)
	assert.Equal(t, int64(1), got[0].Flight.ID)

	require.NoError(t, m.ReplaceDuties(ctx, from, to, []model.DutyAssignment{duty(3, 5)}))
	got, err = m.DutiesBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].Duty.ID, "identifiers keep increasing")

	err = m.ReplaceDuties(ctx, from, to, []model.DutyAssignment{duty(1, 0), duty(99, 0)})
	require.ErrorIs(t, err, ErrNotFound)
	got, err = m.DutiesBetween(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, got, 1, "failed replace leaves the roster untouched")
}

func TestMemoryDisruptionsSequence(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.AppendDisruption(ctx, model.DisruptionRecord{Type: model.DisruptionDelay, Date: day0})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := m.Disruptions(ctx, model.DisruptionFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 20)
	seen := map[int64]bool{}
	for _, r := range recs {
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
		assert.False(t, r.RecordedAt.IsZero())
	}
	assert.Equal(t, int64(20), recs[0].ID, "newest first")
}

func TestMemoryDisruptionFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	no := "AI101"
	crew := int64(4)
	_, _ = m.AppendDisruption(ctx, model.DisruptionRecord{Type: model.DisruptionDelay, FlightNo: &no, Date: day0})
	_, _ = m.AppendDisruption(ctx, model.DisruptionRecord{Type: model.DisruptionCrewUnavailability, CrewID: &crew, Date: day0.AddDate(0, 0, -40)})

	recs, err := m.Disruptions(ctx, model.DisruptionFilter{FlightNo: no})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	recs, err = m.Disruptions(ctx, model.DisruptionFilter{Since: day0.AddDate(0, 0, -30)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, model.DisruptionDelay, recs[0].Type)
}

func TestMemoryConstraintsConfig(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_, ok, err := m.ConstraintsConfig(ctx, "v2")
	require.NoError(t, err)
	assert.False(t, ok)

	cfg := rules.Defaults()
	cfg.Version = "v2"
	cfg.MaxDutyHoursPerDay = 9
	require.NoError(t, m.PutConstraintsConfig(ctx, cfg))
	got, ok, err := m.ConstraintsConfig(ctx, "v2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 9.0, got.MaxDutyHoursPerDay)
	assert.Error(t, m.PutConstraintsConfig(ctx, rules.Config{}))
}

func TestImportDataset(t *testing.T) {
	const doc = `{
  "crew": [{"id": 1, "emp_code": "E1", "name": "Asha", "rank": "Captain", "base_iata": "DEL", "status": "Active"}],
  "flights": [{"id": 10, "flight_no": "AI101", "date": "2025-03-03T00:00:00Z", "dep_iata": "DEL", "arr_iata": "BOM",
    "sched_dep": "2025-03-03T08:00:00Z", "sched_arr": "2025-03-03T10:00:00Z", "aircraft_code": "A320"}],
  "qualifications": [{"crew_id": 1, "aircraft_code": "A320", "qualified_on": "2024-01-01T00:00:00Z"}],
  "preferences": [{"crew_id": 1, "kind": "base", "value": "DEL", "weight": 2}],
  "availability": [{"crew_id": 1, "kind": "leave", "from": "2025-03-10T00:00:00Z", "to": "2025-03-12T00:00:00Z", "status": "approved"}],
  "constraints": [{"version": "strict", "max_duty_hours_per_day": 9}]
}`
	ds, err := ReadDataset(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 6, ds.Count())

	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, Import(ctx, m, ds))
	fs, err := m.FlightsByNumber(ctx, "AI101")
	require.NoError(t, err)
	require.Len(t, fs, 1)
	qs, _ := m.Qualifications(ctx)
	assert.Len(t, qs, 1)
	_, ok, _ := m.ConstraintsConfig(ctx, "strict")
	assert.True(t, ok)

	_, err = ReadDataset(strings.NewReader(`{"pilots": []}`))
	assert.Error(t, err)
}

func TestMemoryDutiesBetweenScopesByStart(t *testing.T) {
	m := seed(t)
	ctx := context.Background()
	from, to := day0, day0.AddDate(0, 0, 1)
	late := day0.Add(23 * time.Hour)
	require.NoError(t, m.ReplaceDuties(ctx, from, to, []model.DutyAssignment{
		{CrewID: 1, FlightID: 1, Start: late, End: late.Add(4 * time.Hour)},
	}))

	got, err := m.DutiesBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1, "a duty running past the window is still in scope")
	assert.Equal(t, late, got[0].Duty.Start)

	got, err = m.DutiesBetween(ctx, to, to.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, got)
}
