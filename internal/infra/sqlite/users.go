package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// ─── User Store ─────────────────────────────────────────────────────────────

// EnsureUser creates the user (and a zero credit balance) on first contact
// and returns the stored row either way. Display name refreshes on every
// contact; preferences do not.
func (db *DB) EnsureUser(id int64, displayName, language string) (domain.User, error) {
	_, err := db.db.Exec(
		`INSERT INTO users (id, display_name, language, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
		id, displayName, language, formatTime(time.Now()),
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("ensure user: %w", err)
	}
	if _, err := db.db.Exec(
		`INSERT INTO credit_balances (user_id, current) VALUES (?, 0)
		 ON CONFLICT(user_id) DO NOTHING`, id,
	); err != nil {
		return domain.User{}, fmt.Errorf("ensure balance: %w", err)
	}
	return db.GetUser(id)
}

// GetUser returns the stored user, ErrUserNotFound when absent.
func (db *DB) GetUser(id int64) (domain.User, error) {
	var u domain.User
	var created string
	err := db.db.QueryRow(
		`SELECT id, display_name, language, model, mode, pending, created_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.DisplayName, &u.Language, &u.Model, &u.Mode, &u.PendingAct, &created)
	if err == sql.ErrNoRows {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("query user: %w", err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return domain.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// SetLanguage updates the interface language preference.
func (db *DB) SetLanguage(id int64, language string) error {
	return db.setUserField(id, "language", language)
}

// SetDisplayName updates the name shown in the bot.
func (db *DB) SetDisplayName(id int64, name string) error {
	return db.setUserField(id, "display_name", name)
}

// SetModel updates the preferred completion model.
func (db *DB) SetModel(id int64, model string) error {
	return db.setUserField(id, "model", model)
}

// SetMode updates the active chat mode.
func (db *DB) SetMode(id int64, mode string) error {
	return db.setUserField(id, "mode", mode)
}

// SetPending stores the awaited-input marker ("" clears it).
func (db *DB) SetPending(id int64, pending string) error {
	return db.setUserField(id, "pending", pending)
}

func (db *DB) setUserField(id int64, field, value string) error {
	res, err := db.db.Exec(
		`UPDATE users SET `+field+` = ? WHERE id = ?`, value, id,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
