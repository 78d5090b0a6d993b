package store

import (
	"database/sql"
	"time"
)

// Scan run statuses. A run left in RUNNING means the process died mid-scan.
const (
	ScanStatusRunning   = "RUNNING"
	ScanStatusCompleted = "COMPLETED"
	ScanStatusAborted   = "ABORTED"
)

// LogScanStart records the start of a scan run with its session window and
// returns the row id.
func LogScanStart(db *sql.DB, scanType string, targetDate, windowStart, windowEnd time.Time) (int64, error) {
	res, err := db.Exec(`
INSERT INTO scan_runs (scan_type, target_date, window_start, window_end, status, started_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		scanType,
		targetDate.UTC().Format("2006-01-02"),
		windowStart.UTC().Format(time.RFC3339),
		windowEnd.UTC().Format(time.RFC3339),
		ScanStatusRunning,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LogScanEnd closes out a scan run with its final status and counters.
func LogScanEnd(db *sql.DB, runID int64, status string, inserted, dups, errors int) error {
	_, err := db.Exec(`
UPDATE scan_runs
SET finished_at = ?, status = ?, inserted = ?, duplicates = ?, errors = ?
WHERE id = ?;`,
		time.Now().UTC().Format(time.RFC3339),
		status, inserted, dups, errors, runID,
	)
	return err
}
