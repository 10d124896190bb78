package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

func (s *Store) PutCrew(ctx context.Context, c model.Crew) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO crew (`+crewColumns+`) VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET emp_code = excluded.emp_code, name = excluded.name,
            rank = excluded.rank, base_iata = excluded.base_iata, status = excluded.status`,
		c.ID, c.EmpCode, c.Name, string(c.Rank), c.BaseIATA, string(c.Status))
	return err
}

func (s *Store) PutFlight(ctx context.Context, f model.Flight) error {
	if err := f.Validate(); err != nil {
		return err
	}
	date := f.Date
	if date.IsZero() {
		date = f.SchedDep
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO flights (`+flightColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET flight_no = excluded.flight_no, flight_date = excluded.flight_date,
            dep_iata = excluded.dep_iata, arr_iata = excluded.arr_iata, sched_dep = excluded.sched_dep,
            sched_arr = excluded.sched_arr, aircraft_code = excluded.aircraft_code`,
		f.ID, f.FlightNo, unix(model.Day(date)), f.DepIATA, f.ArrIATA, unix(f.SchedDep), unix(f.SchedArr), f.AircraftCode)
	return err
}

func (s *Store) PutQualification(ctx context.Context, q model.Qualification) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO crew_qualifications (crew_id, aircraft_code, qualified_on, expires_on)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(crew_id, aircraft_code, qualified_on) DO UPDATE SET expires_on = excluded.expires_on`,
		q.CrewID, q.AircraftCode, unix(q.QualifiedOn), nullTime(q.ExpiresOn))
	return err
}

func (s *Store) PutPreference(ctx context.Context, p model.Preference) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO crew_preferences (crew_id, kind, value, weight, valid_from, valid_to)
        VALUES (?, ?, ?, ?, ?, ?)`,
		p.CrewID, string(p.Kind), p.Value, p.Weight, nullTime(p.ValidFrom), nullTime(p.ValidTo))
	return err
}

func (s *Store) PutAvailability(ctx context.Context, a model.Availability) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO crew_availability (crew_id, kind, reason, from_date, to_date, status)
        VALUES (?, ?, ?, ?, ?, ?)`,
		a.CrewID, a.Kind, a.Reason, unix(model.Day(a.From)), unix(model.Day(a.To)), string(a.Status))
	return err
}

func (s *Store) PutConstraintsConfig(ctx context.Context, cfg rules.Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("constraints config without version")
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO constraints_config (version, config) VALUES (?, ?)
        ON CONFLICT(version) DO UPDATE SET config = excluded.config`, cfg.Version, string(raw))
	return err
}
