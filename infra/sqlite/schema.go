package sqlite

// Times are stored as Unix seconds in UTC. Calendar dates are stored as the
// Unix time of their midnight.
const schema = `
CREATE TABLE IF NOT EXISTS crew (
    id INTEGER PRIMARY KEY,
    emp_code TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL,
    rank TEXT NOT NULL,
    base_iata TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS flights (
    id INTEGER PRIMARY KEY,
    flight_no TEXT NOT NULL,
    flight_date INTEGER NOT NULL,
    dep_iata TEXT NOT NULL DEFAULT '',
    arr_iata TEXT NOT NULL DEFAULT '',
    sched_dep INTEGER NOT NULL,
    sched_arr INTEGER NOT NULL,
    aircraft_code TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS flights_date ON flights(flight_date);
CREATE INDEX IF NOT EXISTS flights_no ON flights(flight_no);
CREATE TABLE IF NOT EXISTS crew_qualifications (
    crew_id INTEGER NOT NULL,
    aircraft_code TEXT NOT NULL,
    qualified_on INTEGER NOT NULL,
    expires_on INTEGER,
    PRIMARY KEY(crew_id, aircraft_code, qualified_on)
);
CREATE TABLE IF NOT EXISTS crew_preferences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    crew_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    value TEXT NOT NULL DEFAULT '',
    weight INTEGER NOT NULL DEFAULT 1,
    valid_from INTEGER,
    valid_to INTEGER
);
CREATE TABLE IF NOT EXISTS crew_availability (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    crew_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    from_date INTEGER NOT NULL,
    to_date INTEGER NOT NULL,
    status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS duty_periods (
    duty_id INTEGER PRIMARY KEY AUTOINCREMENT,
    crew_id INTEGER NOT NULL,
    duty_start INTEGER NOT NULL,
    duty_end INTEGER NOT NULL,
    base_iata TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS duty_periods_start ON duty_periods(duty_start);
CREATE TABLE IF NOT EXISTS duty_flights (
    duty_id INTEGER NOT NULL,
    flight_id INTEGER NOT NULL,
    leg_seq INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY(duty_id, flight_id)
);
CREATE TABLE IF NOT EXISTS disruptions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    flight_no TEXT,
    type TEXT NOT NULL,
    disruption_date INTEGER NOT NULL,
    impact_minutes INTEGER,
    crew_id INTEGER,
    reason TEXT NOT NULL DEFAULT '',
    resolution TEXT NOT NULL DEFAULT '',
    recorded_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS constraints_config (
    version TEXT PRIMARY KEY,
    config TEXT NOT NULL
);`
