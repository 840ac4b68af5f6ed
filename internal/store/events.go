package store

import "database/sql"

// InsertEvents inserts a batch of events inside a single transaction and
// returns how many rows were actually inserted. Events whose
// (session_key, timestamp) pair already exists are silently skipped, so
// re-processing the same file lines is a no-op. A crash mid-batch leaves
// no partial batch visible.
func (db *DB) InsertEvents(events []Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO events
		(session_key, timestamp, model, type, content_snippet, status, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		res, err := stmt.Exec(
			e.SessionKey, e.Timestamp, e.Model, e.Type,
			e.ContentSnippet, e.Status, e.Source,
		)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// UnclassifiedEvents returns all events that have no interpretation yet,
// ordered by timestamp ascending.
func (db *DB) UnclassifiedEvents() ([]Event, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_key, timestamp, model, type, content_snippet, status, source
		FROM events
		WHERE id NOT IN (SELECT id FROM interpretations)
		ORDER BY timestamp ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// CountUnclassified returns how many events still lack an interpretation.
func (db *DB) CountUnclassified() (int64, error) {
	var n int64
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM events
		WHERE id NOT IN (SELECT id FROM interpretations)
	`).Scan(&n)
	return n, err
}

// RecentEvents returns events with timestamp strictly greater than since,
// newest first, limited to limit rows. A since of 0 returns the newest
// events overall.
func (db *DB) RecentEvents(since int64, limit int) ([]Event, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_key, timestamp, model, type, content_snippet, status, source
		FROM events
		WHERE timestamp > ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.SessionKey, &e.Timestamp, &e.Model, &e.Type,
			&e.ContentSnippet, &e.Status, &e.Source,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
