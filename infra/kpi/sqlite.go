package kpi

import (
	"database/sql"
	"time"

	core "github.com/heatflex/heatflex/core/metrics/history"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists run-history records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS run_history (
        case_name TEXT,
        day INTEGER,
        shift_kwh REAL,
        cost_savings REAL,
        emissions_saved_t REAL,
        runs INTEGER,
        PRIMARY KEY(case_name, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or updates the daily record for the case.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO run_history (case_name, day, shift_kwh, cost_savings, emissions_saved_t, runs)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(case_name, day) DO UPDATE SET
            shift_kwh = shift_kwh + excluded.shift_kwh,
            cost_savings = cost_savings + excluded.cost_savings,
            emissions_saved_t = emissions_saved_t + excluded.emissions_saved_t,
            runs = runs + excluded.runs`,
		r.CaseName, d.Unix(), r.ElectricityShiftKWh, r.CostSavings, r.EmissionsSavedTonnes, r.Runs)
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(caseName string, start, end time.Time) ([]core.Record, error) {
	start = core.Day(start)
	end = core.Day(end)
	rows, err := s.db.Query(`SELECT case_name, day, shift_kwh, cost_savings, emissions_saved_t, runs
        FROM run_history WHERE case_name = ? AND day >= ? AND day <= ? ORDER BY day`,
		caseName, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var rec core.Record
		var ts int64
		if err := rows.Scan(&rec.CaseName, &ts, &rec.ElectricityShiftKWh, &rec.CostSavings, &rec.EmissionsSavedTonnes, &rec.Runs); err != nil {
			return nil, err
		}
		rec.Date = time.Unix(ts, 0).UTC()
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
