package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the four pipeline tables and their uniqueness indexes.
//
// events is the single source of truth; interpretations, syntheses and
// daily_syntheses are derived views keyed by event id, hour bucket and
// calendar date respectively. The unique indexes are what make every
// stage's insert-if-absent semantics hold.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			session_key     TEXT NOT NULL,
			timestamp       INTEGER NOT NULL,
			model           TEXT NOT NULL DEFAULT 'unknown',
			type            TEXT NOT NULL DEFAULT 'unknown',
			content_snippet TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL DEFAULT 'ok',
			source          TEXT NOT NULL DEFAULT 'unknown'
		)`,

		`CREATE TABLE IF NOT EXISTS interpretations (
			id          INTEGER PRIMARY KEY REFERENCES events(id),
			session_key TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			summary     TEXT NOT NULL,
			theme       TEXT NOT NULL,
			model       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS syntheses (
			hour_bucket     INTEGER PRIMARY KEY,
			event_count     INTEGER NOT NULL,
			summary         TEXT NOT NULL,
			dominant_theme  TEXT NOT NULL,
			theme_breakdown TEXT NOT NULL,
			work_mode       TEXT NOT NULL,
			created_at      INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS daily_syntheses (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			date                 TEXT NOT NULL UNIQUE,
			synthesis_count      INTEGER NOT NULL,
			top_themes           TEXT NOT NULL,
			productivity_summary TEXT NOT NULL,
			recommendations      TEXT NOT NULL,
			created_at           INTEGER NOT NULL
		)`,

		// Indexes.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_session_ts ON events(session_key, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_interpretations_ts ON interpretations(timestamp)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
