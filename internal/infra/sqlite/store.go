// Package sqlite implements the bot's persistence on a single SQLite file.
// Schema migrations are plain statement slices executed one at a time;
// timestamps are stored as RFC3339 UTC text so string comparison matches
// time order.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle. All store interfaces in internal/domain are
// implemented on this one receiver.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies
// migrations. Use ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single writer keeps the conditional-update debit simple; WAL keeps
	// readers unblocked while it runs.
	sqlDB.SetMaxOpenConns(1)
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	db := &DB{db: sqlDB}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error { return db.db.Close() }

// Migrations returns the schema statements (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id           INTEGER PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			language     TEXT NOT NULL DEFAULT 'pl',
			model        TEXT NOT NULL DEFAULT '',
			mode         TEXT NOT NULL DEFAULT '',
			pending      TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL
		)`,

		// One row per user; current can never go negative. The CHECK is a
		// second line of defense — the debit statement already guards it.
		`CREATE TABLE IF NOT EXISTS credit_balances (
			user_id         INTEGER PRIMARY KEY,
			current         INTEGER NOT NULL DEFAULT 0 CHECK (current >= 0),
			total_purchased INTEGER NOT NULL DEFAULT 0,
			total_spent     REAL NOT NULL DEFAULT 0,
			last_purchase   TEXT
		)`,

		// Append-only ledger. No UPDATE or DELETE is ever issued against
		// this table.
		`CREATE TABLE IF NOT EXISTS credit_transactions (
			id          TEXT PRIMARY KEY,
			user_id     INTEGER NOT NULL,
			amount      INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       REAL NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tx_user_created ON credit_transactions(user_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id)`,

		`CREATE TABLE IF NOT EXISTS notes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id)`,

		`CREATE TABLE IF NOT EXISTS reminders (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			text       TEXT NOT NULL,
			due_at     TEXT NOT NULL,
			sent       INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(sent, due_at)`,

		`CREATE TABLE IF NOT EXISTS activation_codes (
			code       TEXT PRIMARY KEY,
			credits    INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			used_by    INTEGER,
			used_at    TEXT
		)`,

		// invitee is the primary key: a user can be referred at most once.
		`CREATE TABLE IF NOT EXISTS referrals (
			invitee_id  INTEGER PRIMARY KEY,
			referrer_id INTEGER NOT NULL,
			created_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals(referrer_id)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Time Helpers ───────────────────────────────────────────────────────────

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored timestamp %q: %w", s, err)
	}
	return t, nil
}
