package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// ─── Message Store ──────────────────────────────────────────────────────────

// AppendMessage records one conversation turn.
func (db *DB) AppendMessage(userID int64, role, content string) error {
	_, err := db.db.Exec(
		`INSERT INTO messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		userID, role, content, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// History returns the last limit turns in chronological order.
func (db *DB) History(userID int64, limit int) ([]domain.ChatMessage, error) {
	rows, err := db.db.Query(
		`SELECT id, user_id, role, content, created_at FROM (
			SELECT id, user_id, role, content, created_at
			FROM messages WHERE user_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var created string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ClearHistory starts a fresh conversation.
func (db *DB) ClearHistory(userID int64) error {
	if _, err := db.db.Exec(`DELETE FROM messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// ─── Note Store ─────────────────────────────────────────────────────────────

// CreateNote stores a note and returns it with its assigned id.
func (db *DB) CreateNote(userID int64, title, content string) (domain.Note, error) {
	now := time.Now()
	res, err := db.db.Exec(
		`INSERT INTO notes (user_id, title, content, created_at) VALUES (?, ?, ?, ?)`,
		userID, title, content, formatTime(now),
	)
	if err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	return domain.Note{ID: id, UserID: userID, Title: title, Content: content, CreatedAt: now.UTC()}, nil
}

// ListNotes returns the user's notes, newest first.
func (db *DB) ListNotes(userID int64) ([]domain.Note, error) {
	rows, err := db.db.Query(
		`SELECT id, user_id, title, content, created_at
		 FROM notes WHERE user_id = ? ORDER BY id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNote returns one of the user's notes, ErrNoteNotFound when absent.
func (db *DB) GetNote(userID, noteID int64) (domain.Note, error) {
	row := db.db.QueryRow(
		`SELECT id, user_id, title, content, created_at
		 FROM notes WHERE user_id = ? AND id = ?`, userID, noteID,
	)
	var n domain.Note
	var created string
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &created)
	if err == sql.ErrNoRows {
		return domain.Note{}, domain.ErrNoteNotFound
	}
	if err != nil {
		return domain.Note{}, fmt.Errorf("get note: %w", err)
	}
	if n.CreatedAt, err = parseTime(created); err != nil {
		return domain.Note{}, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// DeleteNote removes one of the user's notes.
func (db *DB) DeleteNote(userID, noteID int64) error {
	res, err := db.db.Exec(`DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, noteID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func scanNote(rows *sql.Rows) (domain.Note, error) {
	var n domain.Note
	var created string
	if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &created); err != nil {
		return domain.Note{}, fmt.Errorf("scan note: %w", err)
	}
	var err error
	if n.CreatedAt, err = parseTime(created); err != nil {
		return domain.Note{}, fmt.Errorf("scan note: %w", err)
	}
	return n, nil
}

// ─── Reminder Store ─────────────────────────────────────────────────────────

// CreateReminder stores a one-shot reminder.
func (db *DB) CreateReminder(userID int64, text string, dueAt time.Time) (domain.Reminder, error) {
	now := time.Now()
	res, err := db.db.Exec(
		`INSERT INTO reminders (user_id, text, due_at, created_at) VALUES (?, ?, ?, ?)`,
		userID, text, formatTime(dueAt), formatTime(now),
	)
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}
	return domain.Reminder{ID: id, UserID: userID, Text: text, DueAt: dueAt.UTC(), CreatedAt: now.UTC()}, nil
}

// ListReminders returns the user's pending reminders, soonest first.
func (db *DB) ListReminders(userID int64) ([]domain.Reminder, error) {
	rows, err := db.db.Query(
		`SELECT id, user_id, text, due_at, sent, created_at
		 FROM reminders WHERE user_id = ? AND sent = 0 ORDER BY due_at ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// DeleteReminder removes one of the user's reminders.
func (db *DB) DeleteReminder(userID, reminderID int64) error {
	res, err := db.db.Exec(`DELETE FROM reminders WHERE user_id = ? AND id = ?`, userID, reminderID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if n == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

// DueReminders returns unsent reminders due at or before now.
func (db *DB) DueReminders(now time.Time) ([]domain.Reminder, error) {
	rows, err := db.db.Query(
		`SELECT id, user_id, text, due_at, sent, created_at
		 FROM reminders WHERE sent = 0 AND due_at <= ? ORDER BY due_at ASC`,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("query due reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// MarkSent flips a reminder to delivered.
func (db *DB) MarkSent(reminderID int64) error {
	if _, err := db.db.Exec(`UPDATE reminders SET sent = 1 WHERE id = ?`, reminderID); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

func scanReminders(rows *sql.Rows) ([]domain.Reminder, error) {
	var out []domain.Reminder
	for rows.Next() {
		var r domain.Reminder
		var due, created string
		var sent int
		if err := rows.Scan(&r.ID, &r.UserID, &r.Text, &due, &sent, &created); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		var err error
		if r.DueAt, err = parseTime(due); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		r.Sent = sent == 1
		if r.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
