package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `{
  "crew": [
    {"id": 1, "name": "Asha", "rank": "Captain", "base_iata": "DEL", "status": "Active"},
    {"id": 2, "name": "Ravi", "rank": "FirstOfficer", "base_iata": "DEL", "status": "Active"}
  ],
  "flights": [
    {"id": 1, "flight_no": "AI101", "date": "2025-03-03T00:00:00Z", "dep_iata": "DEL", "arr_iata": "BOM",
     "sched_dep": "2025-03-03T08:00:00Z", "sched_arr": "2025-03-03T10:00:00Z", "aircraft_code": "A320"}
  ],
  "qualifications": [
    {"crew_id": 1, "aircraft_code": "A320", "qualified_on": "2024-01-01T00:00:00Z"}
  ]
}`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0o644))
	cfg := map[string]any{
		"database": map[string]any{"driver": "memory", "seed": seedPath},
		"logging":  map[string]any{"file": filepath.Join(dir, "crewroster.log")},
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { jsonOutput = false })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestGenerateCommand(t *testing.T) {
	path := writeConfig(t)
	exportPath := filepath.Join(t.TempDir(), "roster.csv")
	out := execute(t, "generate", "-c", path, "--from", "2025-03-03", "--json", "--export", exportPath)

	var run struct {
		RunID string `json:"run_id"`
		KPIs  struct {
			FlightsTotal    int `json:"flights_total"`
			FlightsAssigned int `json:"flights_assigned"`
		} `json:"kpis"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, 1, run.KPIs.FlightsTotal)
	assert.Equal(t, 1, run.KPIs.FlightsAssigned)

	csv, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "AI101")
}

func TestRulesCommand(t *testing.T) {
	out := execute(t, "rules", "-c", writeConfig(t), "--json")
	var got struct {
		Config struct {
			MaxDutyHoursPerDay float64 `json:"max_duty_hours_per_day"`
		} `json:"config"`
		Categories struct {
			Hard []string `json:"hard_rules"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 10, got.Config.MaxDutyHoursPerDay, 1e-9)
	assert.NotEmpty(t, got.Categories.Hard)
}

func TestParseDay(t *testing.T) {
	_, err := parseDay("from", "03/03/2025")
	assert.Error(t, err)
	d, err := parseDay("from", "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Day())
}
