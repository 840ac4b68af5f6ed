package store

import "database/sql"

// InsertInterpretations inserts a batch of interpretations inside a single
// transaction and returns how many rows were actually inserted. An event
// that already has an interpretation is skipped, so concurrent or repeated
// classifier runs cannot produce duplicates.
func (db *DB) InsertInterpretations(batch []Interpretation) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO interpretations
		(id, session_key, timestamp, summary, theme, model)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, in := range batch {
		res, err := stmt.Exec(in.ID, in.SessionKey, in.Timestamp, in.Summary, in.Theme, in.Model)
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

// InterpretationFor returns the interpretation for the given event ID, or
// nil if the event has not been classified.
func (db *DB) InterpretationFor(eventID int64) (*Interpretation, error) {
	var in Interpretation
	err := db.conn.QueryRow(`
		SELECT id, session_key, timestamp, summary, theme, model
		FROM interpretations WHERE id = ?
	`, eventID).Scan(&in.ID, &in.SessionKey, &in.Timestamp, &in.Summary, &in.Theme, &in.Model)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &in, nil
}
