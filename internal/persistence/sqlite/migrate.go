package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrations holds the ordered schema history. Entries are append-only; an
// applied version is never edited.
var migrations = []migration{
	{
		version: 1,
		name:    "availability",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS availability_templates (
				mentor_id  TEXT PRIMARY KEY,
				timezone   TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS availability_slots (
				mentor_id  TEXT NOT NULL REFERENCES availability_templates(mentor_id) ON DELETE CASCADE,
				day        TEXT NOT NULL,
				position   INTEGER NOT NULL,
				start_time TEXT NOT NULL,
				end_time   TEXT NOT NULL,
				available  INTEGER NOT NULL DEFAULT 1,
				PRIMARY KEY (mentor_id, day, position)
			)`,
		},
	},
	{
		version: 2,
		name:    "sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS sessions (
				id              TEXT PRIMARY KEY,
				mentor_id       TEXT NOT NULL,
				student_id      TEXT NOT NULL,
				title           TEXT NOT NULL,
				description     TEXT NOT NULL DEFAULT '',
				scheduled_at    TEXT NOT NULL,
				duration        INTEGER NOT NULL CHECK (duration > 0),
				session_type    TEXT NOT NULL,
				status          TEXT NOT NULL,
				actual_duration INTEGER,
				mentor_rating   INTEGER,
				mentor_notes    TEXT,
				mentor_feedback TEXT,
				completed_at    TEXT,
				created_at      TEXT NOT NULL,
				updated_at      TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_mentor ON sessions(mentor_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_student ON sessions(student_id, status)`,
		},
	},
	{
		version: 3,
		name:    "events",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS events (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				start_at    TEXT NOT NULL,
				end_at      TEXT NOT NULL,
				event_type  TEXT NOT NULL,
				created_at  TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at)`,
		},
	},
}

type migration struct {
	version    int
	name       string
	statements []string
}

// Migrate applies pending schema migrations in order. It is safe to call on
// every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := cp.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if _, ok := applied[m.version]; ok {
			continue
		}
		if err := cp.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}

	return nil
}

func (cp *ConnectionPool) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	rows, err := cp.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

func (cp *ConnectionPool) applyMigration(ctx context.Context, m migration) error {
	return cp.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.version, m.name, time.Now().UTC().Format(time.RFC3339),
		)
		return err
	})
}
