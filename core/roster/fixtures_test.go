package roster

import (
	"fmt"
	"time"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

// monday is 2025-03-03, the first day of ISO week 10.
var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func at(dayOffset, hour int) time.Time {
	return monday.AddDate(0, 0, dayOffset).Add(time.Duration(hour) * time.Hour)
}

func flightAt(id int64, dayOffset, depHour, blockHours int, aircraft string) model.Flight {
	day := monday.AddDate(0, 0, dayOffset)
	dep := day.Add(time.Duration(depHour) * time.Hour)
	return model.Flight{
		ID:           id,
		FlightNo:     fmt.Sprintf("AI%d", 100+id),
		Date:         day,
		DepIATA:      "DEL",
		ArrIATA:      "BOM",
		SchedDep:     dep,
		SchedArr:     dep.Add(time.Duration(blockHours) * time.Hour),
		AircraftCode: aircraft,
	}
}

func crewMember(id int64, rank model.Rank) model.Crew {
	return model.Crew{
		ID:       id,
		EmpCode:  fmt.Sprintf("E%03d", id),
		Name:     fmt.Sprintf("crew-%d", id),
		Rank:     rank,
		BaseIATA: "DEL",
		Status:   model.CrewActive,
	}
}

func qualified(aircraft string, crewIDs ...int64) []model.Qualification {
	out := make([]model.Qualification, 0, len(crewIDs))
	for _, id := range crewIDs {
		out = append(out, model.Qualification{CrewID: id, AircraftCode: aircraft, QualifiedOn: monday.AddDate(-1, 0, 0)})
	}
	return out
}

func newInput(flights []model.Flight, crew []model.Crew, quals []model.Qualification,
	prefs []model.Preference, avail []model.Availability, cfg rules.Config) Input {
	return Input{
		Flights:  flights,
		Crew:     crew,
		Snapshot: model.NewSnapshot(quals, prefs, avail),
		Rules:    rules.New(cfg),
	}
}

func crewOf(a Assignment) int64 {
	if a.CrewID == nil {
		return 0
	}
	return *a.CrewID
}
