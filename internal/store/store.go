// Package store persists events, RSVPs, notifications and per-recipient
// sent-message records in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrNotPending = errors.New("notification is not pending")
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	// SQLite benefits from a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	slug         TEXT NOT NULL UNIQUE,
	title        TEXT NOT NULL,
	location     TEXT NOT NULL,
	datetime     INTEGER NOT NULL,
	end_datetime INTEGER NOT NULL,
	organizer_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rsvps (
	id       TEXT PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id  TEXT,
	name     TEXT NOT NULL,
	phone    TEXT NOT NULL,
	status   TEXT NOT NULL,
	comment  TEXT
);

CREATE INDEX IF NOT EXISTS idx_rsvps_event_status ON rsvps(event_id, status);

CREATE TABLE IF NOT EXISTS notifications (
	id               TEXT PRIMARY KEY,
	event_id         TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	schedule_type    TEXT NOT NULL,
	relative_minutes INTEGER,
	scheduled_for    INTEGER NOT NULL,
	message_template TEXT,
	status           TEXT NOT NULL DEFAULT 'PENDING',
	created_by       TEXT NOT NULL,
	created_at       INTEGER NOT NULL,
	processed_at     INTEGER
);

CREATE INDEX IF NOT EXISTS idx_notifications_due ON notifications(status, scheduled_for);
CREATE INDEX IF NOT EXISTS idx_notifications_event ON notifications(event_id);

CREATE TABLE IF NOT EXISTS sent_messages (
	id                  TEXT PRIMARY KEY,
	notification_id     TEXT NOT NULL REFERENCES notifications(id) ON DELETE CASCADE,
	phone_number        TEXT NOT NULL,
	recipient_user_id   TEXT,
	recipient_name      TEXT NOT NULL,
	message_body        TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'PENDING',
	carrier_message_sid TEXT,
	carrier_status      TEXT,
	error_message       TEXT,
	sent_at             INTEGER,
	created_at          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sent_messages_sid ON sent_messages(carrier_message_sid);
CREATE INDEX IF NOT EXISTS idx_sent_messages_notification ON sent_messages(notification_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Timestamps are stored as unix milliseconds so due-set queries are plain
// integer comparisons.

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func toMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func fromMillisPtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
