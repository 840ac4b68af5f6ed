package store

import "time"

// GetStats returns the aggregate counts served to the query layer: total
// events, total hourly syntheses, and events ingested in the trailing
// 24 hours.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&s.TotalEvents); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM syntheses").Scan(&s.TotalSyntheses); err != nil {
		return nil, err
	}

	dayAgo := time.Now().Add(-24*time.Hour).UnixMilli()
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM events WHERE timestamp > ?", dayAgo).Scan(&s.RecentEvents24h); err != nil {
		return nil, err
	}

	return &s, nil
}
