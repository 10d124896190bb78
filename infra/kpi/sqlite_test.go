package kpi

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewroster/core/metrics/workload"
)

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kpi.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Add(workload.Record{CrewID: 1, Date: d.Add(8 * time.Hour), Duties: 1, DutyHours: 2, BlockHours: 1.5}))
	require.NoError(t, s.Add(workload.Record{CrewID: 1, Date: d.Add(22 * time.Hour), Duties: 1, DutyHours: 3, BlockHours: 2.5, NightDuties: 1}))
	require.NoError(t, s.Add(workload.Record{CrewID: 1, Date: d.AddDate(0, 0, 9), Duties: 1, DutyHours: 1}))
	require.NoError(t, s.Add(workload.Record{CrewID: 2, Date: d, Duties: 1, DutyHours: 7}))

	recs, err := s.Query(1, d, d.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, d, recs[0].Date)
	assert.Equal(t, 2, recs[0].Duties)
	assert.InDelta(t, 5.0, recs[0].DutyHours, 1e-9)
	assert.InDelta(t, 4.0, recs[0].BlockHours, 1e-9)
	assert.Equal(t, 1, recs[0].NightDuties)

	require.NoError(t, workload.Rebuild(s, d, d.AddDate(0, 0, 6), []workload.Record{{CrewID: 1, Date: d, Duties: 1, DutyHours: 4}}))
	recs, err = s.Query(1, d, d.AddDate(0, 0, 30))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.InDelta(t, 4.0, recs[0].DutyHours, 1e-9)

	other, err := s.Query(2, d, d)
	require.NoError(t, err)
	assert.Empty(t, other, "cleared with the window")
}
