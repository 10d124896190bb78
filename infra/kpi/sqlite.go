// Package kpi persists daily crew workload records in SQLite.
package kpi

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/crewroster/core/metrics/workload"
	"github.com/kilianp07/crewroster/core/model"
)

// SQLiteStore persists workload records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ workload.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS crew_workload (
        crew_id INTEGER NOT NULL,
        day INTEGER NOT NULL,
        duties INTEGER NOT NULL,
        duty_hours REAL NOT NULL,
        block_hours REAL NOT NULL,
        night_duties INTEGER NOT NULL,
        PRIMARY KEY(crew_id, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or accumulates into the record of the day.
func (s *SQLiteStore) Add(r workload.Record) error {
	_, err := s.db.Exec(`INSERT INTO crew_workload (crew_id, day, duties, duty_hours, block_hours, night_duties)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(crew_id, day) DO UPDATE SET
            duties = duties + excluded.duties,
            duty_hours = duty_hours + excluded.duty_hours,
            block_hours = block_hours + excluded.block_hours,
            night_duties = night_duties + excluded.night_duties`,
		r.CrewID, model.Day(r.Date).Unix(), r.Duties, r.DutyHours, r.BlockHours, r.NightDuties)
	return err
}

// Clear deletes the records dated within [from, to].
func (s *SQLiteStore) Clear(from, to time.Time) error {
	_, err := s.db.Exec(`DELETE FROM crew_workload WHERE day >= ? AND day <= ?`,
		model.Day(from).Unix(), model.Day(to).Unix())
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(crewID int64, start, end time.Time) ([]workload.Record, error) {
	rows, err := s.db.Query(`SELECT crew_id, day, duties, duty_hours, block_hours, night_duties
        FROM crew_workload WHERE crew_id = ? AND day >= ? AND day <= ? ORDER BY day`,
		crewID, model.Day(start).Unix(), model.Day(end).Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []workload.Record
	for rows.Next() {
		var r workload.Record
		var ts int64
		if err := rows.Scan(&r.CrewID, &ts, &r.Duties, &r.DutyHours, &r.BlockHours, &r.NightDuties); err != nil {
			return nil, err
		}
		r.Date = time.Unix(ts, 0).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
