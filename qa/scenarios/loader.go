// Package scenarios replays YAML roster scenarios against the service.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/store"
)

type CrewDef struct {
	ID       int64    `yaml:"id"`
	Name     string   `yaml:"name"`
	Rank     string   `yaml:"rank"`
	Base     string   `yaml:"base"`
	Aircraft []string `yaml:"aircraft"`
}

type FlightDef struct {
	ID           int64  `yaml:"id"`
	FlightNo     string `yaml:"flight_no"`
	Date         string `yaml:"date"`
	Dep          string `yaml:"dep"`
	Arr          string `yaml:"arr"`
	DepTime      string `yaml:"dep_time"`
	BlockMinutes int    `yaml:"block_minutes"`
	Aircraft     string `yaml:"aircraft"`
}

type AbsenceDef struct {
	CrewID int64  `yaml:"crew_id"`
	Kind   string `yaml:"kind"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

type Expected struct {
	Assigned   int               `yaml:"assigned"`
	Unassigned int               `yaml:"unassigned"`
	Reasons    map[string]string `yaml:"reasons,omitempty"`
	Conflicts  *int              `yaml:"conflicts,omitempty"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Start       string       `yaml:"start"`
	End         string       `yaml:"end"`
	Strategy    string       `yaml:"strategy,omitempty"`
	Crew        []CrewDef    `yaml:"crew"`
	Flights     []FlightDef  `yaml:"flights"`
	Absences    []AbsenceDef `yaml:"absences,omitempty"`
	Expected    Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario has no name", path)
	}
	return &sc, nil
}

// Period returns the first and last roster day.
func (sc *Scenario) Period() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, sc.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := start
	if sc.End != "" {
		if end, err = time.Parse(time.DateOnly, sc.End); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// Dataset converts the scenario to an importable dataset. Every crew member
// is qualified on their aircraft types a year before the period starts.
func (sc *Scenario) Dataset() (store.Dataset, error) {
	start, _, err := sc.Period()
	if err != nil {
		return store.Dataset{}, err
	}
	since := start.AddDate(-1, 0, 0)
	var ds store.Dataset
	for _, c := range sc.Crew {
		rank := model.Rank(c.Rank)
		if rank == "" {
			rank = model.RankFirstOfficer
		}
		ds.Crew = append(ds.Crew, model.Crew{ID: c.ID, Name: c.Name, Rank: rank, BaseIATA: c.Base, Status: model.CrewActive})
		for _, code := range c.Aircraft {
			ds.Qualifications = append(ds.Qualifications, model.Qualification{CrewID: c.ID, AircraftCode: code, QualifiedOn: since})
		}
	}
	for _, f := range sc.Flights {
		fl, err := f.toModel()
		if err != nil {
			return store.Dataset{}, fmt.Errorf("flight %s: %w", f.FlightNo, err)
		}
		ds.Flights = append(ds.Flights, fl)
	}
	for _, a := range sc.Absences {
		from, err := time.Parse(time.DateOnly, a.From)
		if err != nil {
			return store.Dataset{}, err
		}
		to := from
		if a.To != "" {
			if to, err = time.Parse(time.DateOnly, a.To); err != nil {
				return store.Dataset{}, err
			}
		}
		ds.Availability = append(ds.Availability, model.Availability{
			CrewID: a.CrewID, Kind: a.Kind, From: from, To: to, Status: model.AvailabilityApproved,
		})
	}
	return ds, nil
}

func (f FlightDef) toModel() (model.Flight, error) {
	day, err := time.Parse(time.DateOnly, f.Date)
	if err != nil {
		return model.Flight{}, err
	}
	clock, err := time.Parse("15:04", f.DepTime)
	if err != nil {
		return model.Flight{}, err
	}
	dep := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	return model.Flight{
		ID:           f.ID,
		FlightNo:     f.FlightNo,
		Date:         day,
		DepIATA:      f.Dep,
		ArrIATA:      f.Arr,
		SchedDep:     dep,
		SchedArr:     dep.Add(time.Duration(f.BlockMinutes) * time.Minute),
		AircraftCode: f.Aircraft,
	}, nil
}
