package domain

import "time"

// ─── Users & Conversations ──────────────────────────────────────────────────

// User is a chat platform user. Created on first contact, mutated when
// preferences change, never deleted.
type User struct {
	ID          int64     `json:"id"` // platform-assigned
	DisplayName string    `json:"display_name,omitempty"`
	Language    string    `json:"language"`    // pl, en, ru
	Model       string    `json:"model"`       // preferred completion model
	Mode        string    `json:"mode"`        // active chat mode id
	PendingAct  string    `json:"pending_act"` // awaited input ("" when none)
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessage is one turn of a conversation, persisted so context survives
// restarts and /newchat can reset it.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"` // user | assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMode is a preconfigured persona with its own system prompt and cost.
type ChatMode struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Prompt     string `json:"prompt"`
	CreditCost int64  `json:"credit_cost"`
}

// ─── Notes & Reminders ──────────────────────────────────────────────────────

// Note is a user-owned free-text note.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Reminder fires once at DueAt; Sent flips when delivered.
type Reminder struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	DueAt     time.Time `json:"due_at"`
	Sent      bool      `json:"sent"`
	CreatedAt time.Time `json:"created_at"`
}

// ─── Codes ──────────────────────────────────────────────────────────────────

// ActivationCode is a one-shot promotional code worth a fixed grant.
type ActivationCode struct {
	Code      string     `json:"code"`
	Credits   int64      `json:"credits"`
	CreatedAt time.Time  `json:"created_at"`
	UsedBy    *int64     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Referral records that Invitee joined through Referrer's code.
// One row per invitee — a user can be referred at most once.
type Referral struct {
	ReferrerID int64     `json:"referrer_id"`
	InviteeID  int64     `json:"invitee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
