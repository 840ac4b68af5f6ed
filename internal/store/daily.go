package store

import "encoding/json"

// UpsertDailySynthesis inserts or replaces the synthesis row for a calendar
// day. Daily rows are the one aggregate permitted to be recomputed in place:
// a later run with fresh hourly data overwrites the prior row.
func (db *DB) UpsertDailySynthesis(d *DailySynthesis) error {
	topThemes, err := json.Marshal(d.TopThemes)
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO daily_syntheses
		(date, synthesis_count, top_themes, productivity_summary, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.Date, d.SynthesisCount, string(topThemes), d.ProductivitySummary, d.Recommendations, d.CreatedAt)
	return err
}

// DailySyntheses returns the most recent daily syntheses, newest first,
// limited to limit rows.
func (db *DB) DailySyntheses(limit int) ([]DailySynthesis, error) {
	rows, err := db.conn.Query(`
		SELECT id, date, synthesis_count, top_themes, productivity_summary, recommendations, created_at
		FROM daily_syntheses
		ORDER BY date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DailySynthesis
	for rows.Next() {
		var d DailySynthesis
		var topThemes string
		if err := rows.Scan(
			&d.ID, &d.Date, &d.SynthesisCount, &topThemes,
			&d.ProductivitySummary, &d.Recommendations, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(topThemes), &d.TopThemes)
		days = append(days, d)
	}
	return days, rows.Err()
}

// SynthesizedDates returns the set of calendar days that already have a
// daily synthesis row.
func (db *DB) SynthesizedDates() (map[string]bool, error) {
	rows, err := db.conn.Query("SELECT date FROM daily_syntheses")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates[date] = true
	}
	return dates, rows.Err()
}
