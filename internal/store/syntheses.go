package store

import (
	"encoding/json"
	"time"
)

const hourMillis = int64(time.Hour / time.Millisecond)

// HourBucket truncates an epoch-millisecond timestamp to the start of its
// clock hour.
func HourBucket(timestamp int64) int64 {
	return (timestamp / hourMillis) * hourMillis
}

// EligibleHours returns hour buckets that have at least minEvents classified
// events after since and no synthesis row yet, oldest first.
func (db *DB) EligibleHours(since int64, minEvents int) ([]HourCandidate, error) {
	rows, err := db.conn.Query(`
		SELECT (e.timestamp / ?) * ? AS hour_bucket, COUNT(*) AS event_count
		FROM events e
		JOIN interpretations i ON e.id = i.id
		WHERE e.timestamp > ?
		AND (e.timestamp / ?) * ? NOT IN (SELECT hour_bucket FROM syntheses)
		GROUP BY hour_bucket
		HAVING COUNT(*) >= ?
		ORDER BY hour_bucket ASC
	`, hourMillis, hourMillis, since, hourMillis, hourMillis, minEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []HourCandidate
	for rows.Next() {
		var h HourCandidate
		if err := rows.Scan(&h.HourBucket, &h.EventCount); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

// ThemeBreakdown returns per-theme event counts for events in
// [start, end), most frequent theme first.
func (db *DB) ThemeBreakdown(start, end int64) ([]ThemeCount, error) {
	rows, err := db.conn.Query(`
		SELECT i.theme, COUNT(*) AS count
		FROM events e
		JOIN interpretations i ON e.id = i.id
		WHERE e.timestamp >= ? AND e.timestamp < ?
		GROUP BY i.theme
		ORDER BY count DESC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var themes []ThemeCount
	for rows.Next() {
		var tc ThemeCount
		if err := rows.Scan(&tc.Theme, &tc.Count); err != nil {
			return nil, err
		}
		themes = append(themes, tc)
	}
	return themes, rows.Err()
}

// InsertHourlySynthesis inserts a synthesis row for an hour bucket. A bucket
// that already has a row is left untouched and false is returned; synthesized
// hours are immutable.
func (db *DB) InsertHourlySynthesis(s *HourlySynthesis) (bool, error) {
	breakdown, err := json.Marshal(s.ThemeBreakdown)
	if err != nil {
		return false, err
	}

	res, err := db.conn.Exec(`
		INSERT OR IGNORE INTO syntheses
		(hour_bucket, event_count, summary, dominant_theme, theme_breakdown, work_mode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.HourBucket, s.EventCount, s.Summary, s.DominantTheme, string(breakdown), s.WorkMode, s.CreatedAt)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SynthesesSince returns hourly syntheses with hour_bucket strictly greater
// than since, oldest first.
func (db *DB) SynthesesSince(since int64) ([]HourlySynthesis, error) {
	rows, err := db.conn.Query(`
		SELECT hour_bucket, event_count, summary, dominant_theme, theme_breakdown, work_mode, created_at
		FROM syntheses
		WHERE hour_bucket > ?
		ORDER BY hour_bucket ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var syntheses []HourlySynthesis
	for rows.Next() {
		var s HourlySynthesis
		var breakdown string
		if err := rows.Scan(
			&s.HourBucket, &s.EventCount, &s.Summary, &s.DominantTheme,
			&breakdown, &s.WorkMode, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		// A breakdown that fails to parse is left empty rather than
		// failing the whole query.
		_ = json.Unmarshal([]byte(breakdown), &s.ThemeBreakdown)
		syntheses = append(syntheses, s)
	}
	return syntheses, rows.Err()
}
