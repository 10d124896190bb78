// Package export writes rosters in JSON and CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/roster"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// WriteAssignments writes the assignments of a roster run in format f.
func WriteAssignments(w io.Writer, f Format, asg []roster.Assignment) error {
	if f == FormatCSV {
		return assignmentsCSV(w, asg)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(asg)
}

func assignmentsCSV(w io.Writer, asg []roster.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"flight_id", "flight_no", "crew_id", "crew_name", "duty_start", "duty_end", "preference_score", "note", "reason"}); err != nil {
		return err
	}
	for _, a := range asg {
		crewID := ""
		if a.CrewID != nil {
			crewID = strconv.FormatInt(*a.CrewID, 10)
		}
		rec := []string{
			strconv.FormatInt(a.FlightID, 10),
			a.FlightNo,
			crewID,
			a.CrewName,
			a.Start.Format(time.RFC3339),
			a.End.Format(time.RFC3339),
			strconv.FormatFloat(a.PreferenceScore, 'f', -1, 64),
			a.Note,
			a.Reason,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCalendar writes committed duties joined with their flight and crew.
func WriteCalendar(w io.Writer, f Format, entries []model.RosterEntry) error {
	if f == FormatCSV {
		return calendarCSV(w, entries)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func calendarCSV(w io.Writer, entries []model.RosterEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "crew_id", "crew_name", "rank", "flight_no", "dep", "arr", "duty_start", "duty_end", "aircraft"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			model.Day(e.Duty.Start).Format(time.DateOnly),
			strconv.FormatInt(e.Crew.ID, 10),
			e.Crew.Name,
			string(e.Crew.Rank),
			e.Flight.FlightNo,
			e.Flight.DepIATA,
			e.Flight.ArrIATA,
			e.Duty.Start.Format(time.RFC3339),
			e.Duty.End.Format(time.RFC3339),
			e.Flight.AircraftCode,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
