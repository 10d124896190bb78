package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/roster"
)

var start = time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)

func assignments() []roster.Assignment {
	id := int64(7)
	return []roster.Assignment{
		{FlightID: 1, FlightNo: "AI101", CrewID: &id, CrewName: "Asha", Start: start, End: start.Add(3 * time.Hour), PreferenceScore: 1.5},
		{FlightID: 2, FlightNo: "AI102", Start: start, End: start.Add(2 * time.Hour), Note: "UNASSIGNED", Reason: "no eligible crew"},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestAssignmentsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAssignments(&buf, FormatCSV, assignments()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "flight_id", rows[0][0])
	assert.Equal(t, []string{"1", "AI101", "7", "Asha", "2025-03-03T07:00:00Z", "2025-03-03T10:00:00Z", "1.5", "", ""}, rows[1])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "UNASSIGNED", rows[2][7])
}

func TestAssignmentsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAssignments(&buf, FormatJSON, assignments()))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "AI101", got[0]["flight_no"])
	_, hasCrew := got[1]["crew_id"]
	assert.False(t, hasCrew)
}

func TestCalendarCSV(t *testing.T) {
	entries := []model.RosterEntry{{
		Duty:   model.DutyPeriod{ID: 1, CrewID: 7, Start: start, End: start.Add(3 * time.Hour)},
		Flight: model.Flight{ID: 1, FlightNo: "AI101", DepIATA: "DEL", ArrIATA: "BOM", AircraftCode: "A320"},
		Crew:   model.Crew{ID: 7, Name: "Asha", Rank: model.RankCaptain},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCalendar(&buf, FormatCSV, entries))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-03", rows[1][0])
	assert.Equal(t, "A320", rows[1][9])
	assert.Equal(t, string(model.RankCaptain), rows[1][3])
}
