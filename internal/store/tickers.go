package store

import (
	"database/sql"
	"strings"
	"time"
)

type Ticker struct {
	Symbol      string
	CompanyName string
}

// MonitoredTickers returns the watchlist the company scan iterates over.
func MonitoredTickers(db *sql.DB) ([]Ticker, error) {
	rows, err := db.Query(`SELECT ticker, company_name FROM monitored_tickers ORDER BY ticker;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticker
	for rows.Next() {
		var t Ticker
		if err := rows.Scan(&t.Symbol, &t.CompanyName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AddTicker adds a symbol to the watchlist; re-adding is a no-op.
func AddTicker(db *sql.DB, symbol, companyName string) error {
	_, err := db.Exec(`
INSERT OR IGNORE INTO monitored_tickers (ticker, company_name, added_at)
VALUES (?, ?, ?);`,
		strings.ToUpper(strings.TrimSpace(symbol)), companyName,
		time.Now().UTC().Format(time.RFC3339))
	return err
}
