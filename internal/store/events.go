package store

import (
	"database/sql"
	"time"
)

type Event struct {
	ID   int64
	Name string
	Date time.Time
}

// UpcomingEvents returns events dated inside [from, to], ordered by date.
// These seed extra macro feeds for headline events like FOMC or CPI days.
func UpcomingEvents(db *sql.DB, from, to time.Time) ([]Event, error) {
	rows, err := db.Query(`
SELECT id, name, event_date FROM events
WHERE event_date >= ? AND event_date <= ?
ORDER BY event_date;`,
		from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var d string
		if err := rows.Scan(&e.ID, &e.Name, &d); err != nil {
			return nil, err
		}
		e.Date, _ = time.Parse("2006-01-02", d)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddEvent records a named calendar event.
func AddEvent(db *sql.DB, name string, date time.Time) error {
	_, err := db.Exec(`INSERT INTO events (name, event_date) VALUES (?, ?);`,
		name, date.UTC().Format("2006-01-02"))
	return err
}
