// Package sqlite implements the roster store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
	"github.com/kilianp07/crewroster/core/store"
)

// Store persists rosters in a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Writer = (*Store)(nil)
)

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func unix(t time.Time) int64 { return t.UTC().Unix() }

func fromUnix(ts int64) time.Time { return time.Unix(ts, 0).UTC() }

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: unix(*t), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnix(n.Int64)
	return &t
}

const crewColumns = `id, emp_code, name, rank, base_iata, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanCrew(r scanner) (model.Crew, error) {
	var c model.Crew
	var rank, status string
	if err := r.Scan(&c.ID, &c.EmpCode, &c.Name, &rank, &c.BaseIATA, &status); err != nil {
		return model.Crew{}, err
	}
	c.Rank = model.Rank(rank)
	c.Status = model.CrewStatus(status)
	return c, nil
}

func (s *Store) queryCrew(ctx context.Context, where string, args ...any) ([]model.Crew, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+crewColumns+` FROM crew `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Crew
	for rows.Next() {
		c, err := scanCrew(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *Store) Crew(ctx context.Context) ([]model.Crew, error) {
	return s.queryCrew(ctx, "")
}

func (s *Store) ActiveCrew(ctx context.Context) ([]model.Crew, error) {
	return s.queryCrew(ctx, "WHERE status = ?", string(model.CrewActive))
}

func (s *Store) CrewByID(ctx context.Context, id int64) (model.Crew, error) {
	c, err := scanCrew(s.db.QueryRowContext(ctx, `SELECT `+crewColumns+` FROM crew WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Crew{}, fmt.Errorf("crew %d: %w", id, store.ErrNotFound)
	}
	return c, err
}

const flightColumns = `id, flight_no, flight_date, dep_iata, arr_iata, sched_dep, sched_arr, aircraft_code`

func scanFlight(r scanner) (model.Flight, error) {
	var f model.Flight
	var date, dep, arr int64
	if err := r.Scan(&f.ID, &f.FlightNo, &date, &f.DepIATA, &f.ArrIATA, &dep, &arr, &f.AircraftCode); err != nil {
		return model.Flight{}, err
	}
	f.Date, f.SchedDep, f.SchedArr = fromUnix(date), fromUnix(dep), fromUnix(arr)
	return f, nil
}

func (s *Store) queryFlights(ctx context.Context, query string, args ...any) ([]model.Flight, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func (s *Store) FlightsBetween(ctx context.Context, from, to time.Time) ([]model.Flight, error) {
	return s.queryFlights(ctx, `SELECT `+flightColumns+` FROM flights
        WHERE flight_date >= ? AND flight_date <= ? ORDER BY sched_dep, id`,
		unix(model.Day(from)), unix(model.Day(to)))
}

func (s *Store) FlightsByNumber(ctx context.Context, flightNo string) ([]model.Flight, error) {
	return s.queryFlights(ctx, `SELECT `+flightColumns+` FROM flights
        WHERE flight_no = ? ORDER BY flight_date DESC, id DESC`, flightNo)
}

func (s *Store) Qualifications(ctx context.Context) ([]model.Qualification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT crew_id, aircraft_code, qualified_on, expires_on
        FROM crew_qualifications ORDER BY crew_id, aircraft_code, qualified_on`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Qualification
	for rows.Next() {
		var q model.Qualification
		var on int64
		var exp sql.NullInt64
		if err := rows.Scan(&q.CrewID, &q.AircraftCode, &on, &exp); err != nil {
			return nil, err
		}
		q.QualifiedOn = fromUnix(on)
		q.ExpiresOn = timePtr(exp)
		res = append(res, q)
	}
	return res, rows.Err()
}

func (s *Store) Preferences(ctx context.Context) ([]model.Preference, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT crew_id, kind, value, weight, valid_from, valid_to
        FROM crew_preferences ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Preference
	for rows.Next() {
		var p model.Preference
		var kind string
		var from, to sql.NullInt64
		if err := rows.Scan(&p.CrewID, &kind, &p.Value, &p.Weight, &from, &to); err != nil {
			return nil, err
		}
		p.Kind = model.PreferenceKind(kind)
		p.ValidFrom, p.ValidTo = timePtr(from), timePtr(to)
		res = append(res, p)
	}
	return res, rows.Err()
}

func (s *Store) Availability(ctx context.Context) ([]model.Availability, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT crew_id, kind, reason, from_date, to_date, status
        FROM crew_availability ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Availability
	for rows.Next() {
		var a model.Availability
		var from, to int64
		var status string
		if err := rows.Scan(&a.CrewID, &a.Kind, &a.Reason, &from, &to, &status); err != nil {
			return nil, err
		}
		a.From, a.To = fromUnix(from), fromUnix(to)
		a.Status = model.AvailabilityStatus(status)
		res = append(res, a)
	}
	return res, rows.Err()
}

func (s *Store) DutiesBetween(ctx context.Context, from, to time.Time) ([]model.RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT d.duty_id, d.crew_id, d.duty_start, d.duty_end, d.base_iata,
            f.id, f.flight_no, f.flight_date, f.dep_iata, f.arr_iata, f.sched_dep, f.sched_arr, f.aircraft_code,
            c.id, c.emp_code, c.name, c.rank, c.base_iata, c.status
        FROM duty_periods d
        JOIN duty_flights df ON df.duty_id = d.duty_id
        JOIN flights f ON f.id = df.flight_id
        JOIN crew c ON c.id = d.crew_id
        WHERE d.duty_start >= ? AND d.duty_start < ?
        ORDER BY d.duty_start, d.duty_id`, unix(from), unix(to))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.RosterEntry
	for rows.Next() {
		var e model.RosterEntry
		var ds, de, fd, fdep, farr int64
		var rank, status string
		if err := rows.Scan(&e.Duty.ID, &e.Duty.CrewID, &ds, &de, &e.Duty.BaseIATA,
			&e.Flight.ID, &e.Flight.FlightNo, &fd, &e.Flight.DepIATA, &e.Flight.ArrIATA, &fdep, &farr, &e.Flight.AircraftCode,
			&e.Crew.ID, &e.Crew.EmpCode, &e.Crew.Name, &rank, &e.Crew.BaseIATA, &status); err != nil {
			return nil, err
		}
		e.Duty.Start, e.Duty.End = fromUnix(ds), fromUnix(de)
		e.Flight.Date, e.Flight.SchedDep, e.Flight.SchedArr = fromUnix(fd), fromUnix(fdep), fromUnix(farr)
		e.Crew.Rank, e.Crew.Status = model.Rank(rank), model.CrewStatus(status)
		res = append(res, e)
	}
	return res, rows.Err()
}

// ReplaceDuties clears the duties starting in [from, to) and inserts duties
// in one transaction. Nothing is written when any duty references an unknown
// flight or crew member.
func (s *Store) ReplaceDuties(ctx context.Context, from, to time.Time, duties []model.DutyAssignment) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM duty_flights WHERE duty_id IN
        (SELECT duty_id FROM duty_periods WHERE duty_start >= ? AND duty_start < ?)`, unix(from), unix(to)); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM duty_periods WHERE duty_start >= ? AND duty_start < ?`,
		unix(from), unix(to)); err != nil {
		return err
	}
	for _, d := range duties {
		if err = exists(ctx, tx, `SELECT 1 FROM flights WHERE id = ?`, d.FlightID, "flight"); err != nil {
			return err
		}
		if err = exists(ctx, tx, `SELECT 1 FROM crew WHERE id = ?`, d.CrewID, "crew"); err != nil {
			return err
		}
		var res sql.Result
		res, err = tx.ExecContext(ctx, `INSERT INTO duty_periods (crew_id, duty_start, duty_end, base_iata)
            VALUES (?, ?, ?, ?)`, d.CrewID, unix(d.Start), unix(d.End), d.BaseIATA)
		if err != nil {
			return err
		}
		var id int64
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO duty_flights (duty_id, flight_id, leg_seq) VALUES (?, ?, 1)`,
			id, d.FlightID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func exists(ctx context.Context, tx *sql.Tx, query string, id int64, what string) error {
	var one int
	err := tx.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, store.ErrNotFound)
	}
	return err
}

// AppendDisruption inserts r. The identifier comes from the AUTOINCREMENT
// column so concurrent writers never collide.
func (s *Store) AppendDisruption(ctx context.Context, r model.DisruptionRecord) (model.DisruptionRecord, error) {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.now().UTC()
	}
	var flightNo sql.NullString
	if r.FlightNo != nil {
		flightNo = sql.NullString{String: *r.FlightNo, Valid: true}
	}
	var impact, crewID sql.NullInt64
	if r.ImpactMinutes != nil {
		impact = sql.NullInt64{Int64: int64(*r.ImpactMinutes), Valid: true}
	}
	if r.CrewID != nil {
		crewID = sql.NullInt64{Int64: *r.CrewID, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO disruptions
        (flight_no, type, disruption_date, impact_minutes, crew_id, reason, resolution, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		flightNo, string(r.Type), unix(model.Day(r.Date)), impact, crewID, r.Reason, r.Resolution, unix(r.RecordedAt))
	if err != nil {
		return model.DisruptionRecord{}, err
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return model.DisruptionRecord{}, err
	}
	r.RecordedAt = fromUnix(unix(r.RecordedAt))
	r.Date = model.Day(r.Date)
	return r, nil
}

// Disruptions returns the matching records, newest first.
func (s *Store) Disruptions(ctx context.Context, f model.DisruptionFilter) ([]model.DisruptionRecord, error) {
	query := `SELECT id, flight_no, type, disruption_date, impact_minutes, crew_id, reason, resolution, recorded_at
        FROM disruptions WHERE 1 = 1`
	var args []any
	if f.FlightNo != "" {
		query += ` AND flight_no = ?`
		args = append(args, f.FlightNo)
	}
	if f.CrewID != 0 {
		query += ` AND crew_id = ?`
		args = append(args, f.CrewID)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if !f.Since.IsZero() {
		query += ` AND disruption_date >= ?`
		args = append(args, unix(model.Day(f.Since)))
	}
	query += ` ORDER BY id DESC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.DisruptionRecord
	for rows.Next() {
		var r model.DisruptionRecord
		var flightNo sql.NullString
		var typ string
		var date, recorded int64
		var impact, crewID sql.NullInt64
		if err := rows.Scan(&r.ID, &flightNo, &typ, &date, &impact, &crewID, &r.Reason, &r.Resolution, &recorded); err != nil {
			return nil, err
		}
		r.Type = model.DisruptionType(typ)
		r.Date, r.RecordedAt = fromUnix(date), fromUnix(recorded)
		if flightNo.Valid {
			v := flightNo.String
			r.FlightNo = &v
		}
		if impact.Valid {
			v := int(impact.Int64)
			r.ImpactMinutes = &v
		}
		if crewID.Valid {
			v := crewID.Int64
			r.CrewID = &v
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *Store) ConstraintsConfig(ctx context.Context, version string) (rules.Config, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT config FROM constraints_config WHERE version = ?`, version).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return rules.Config{}, false, nil
	}
	if err != nil {
		return rules.Config{}, false, err
	}
	var cfg rules.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return rules.Config{}, false, fmt.Errorf("constraints %s: %w", version, err)
	}
	cfg.Version = version
	return cfg, true, nil
}
