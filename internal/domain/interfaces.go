package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// CreditStore is the ledger's sole storage dependency: a balance-per-user
// table plus an append-only transaction log.
//
// Debit must be a single atomic read-modify-write — the balance is
// re-validated at write time, never trusted from an earlier read. Both
// Debit and Credit append their transaction row and update the balance in
// one storage transaction, so a failure leaves the balance untouched.
type CreditStore interface {
	// Balance returns the current balance, 0 for unknown users.
	Balance(userID int64) (int64, error)

	// Debit atomically decrements the balance by cost and appends tx.
	// Returns ErrInsufficientCredits when balance < cost; the store is
	// unchanged in that case no matter how often the call is retried.
	Debit(userID int64, cost int64, tx CreditTransaction) (newBalance int64, err error)

	// Credit atomically increments the balance by tx.Amount and appends
	// tx. Purchase rows also bump the lifetime counters and the
	// last-purchase timestamp.
	Credit(userID int64, tx CreditTransaction) (newBalance int64, err error)

	// BalanceRow returns the full denormalized row (zero row for
	// unknown users).
	BalanceRow(userID int64) (CreditBalance, error)

	// Recent returns up to n transactions, newest first.
	Recent(userID int64, n int) ([]CreditTransaction, error)

	// DebitsSince returns debit transactions created at or after since,
	// newest first.
	DebitsSince(userID int64, since time.Time) ([]CreditTransaction, error)

	// TransactionSum recomputes the signed sum of all transactions for
	// the reconciliation invariant (sum == current balance).
	TransactionSum(userID int64) (int64, error)
}

// UserStore persists users and their preferences.
type UserStore interface {
	// EnsureUser creates the user on first contact and returns the
	// stored row either way.
	EnsureUser(id int64, displayName, language string) (User, error)
	GetUser(id int64) (User, error)
	SetLanguage(id int64, language string) error
	SetDisplayName(id int64, name string) error
	SetModel(id int64, model string) error
	SetMode(id int64, mode string) error
	// SetPending stores the awaited-input marker ("" clears it).
	// Session state is persisted, never held in process memory.
	SetPending(id int64, pending string) error
}

// MessageStore persists conversation history.
type MessageStore interface {
	AppendMessage(userID int64, role, content string) error
	History(userID int64, limit int) ([]ChatMessage, error)
	ClearHistory(userID int64) error
}

// NoteStore persists user notes.
type NoteStore interface {
	CreateNote(userID int64, title, content string) (Note, error)
	ListNotes(userID int64) ([]Note, error)
	GetNote(userID, noteID int64) (Note, error)
	DeleteNote(userID, noteID int64) error
}

// ReminderStore persists one-shot reminders.
type ReminderStore interface {
	CreateReminder(userID int64, text string, dueAt time.Time) (Reminder, error)
	ListReminders(userID int64) ([]Reminder, error)
	DeleteReminder(userID, reminderID int64) error
	// DueReminders returns unsent reminders due at or before now.
	DueReminders(now time.Time) ([]Reminder, error)
	MarkSent(reminderID int64) error
}

// CodeStore persists activation codes and referral links.
type CodeStore interface {
	CreateCode(code string, credits int64) error
	// RedeemCode marks the code used by userID; ErrCodeInvalid when the
	// code does not exist or was already redeemed.
	RedeemCode(code string, userID int64) (credits int64, err error)
	// RecordReferral links invitee to referrer; ErrAlreadyReferred when
	// the invitee has been referred before.
	RecordReferral(referrerID, inviteeID int64) error
	ReferralCount(referrerID int64) (int, error)
}

// Completer abstracts the completion provider (LLM API).
// The ledger knows nothing about models or operation kinds; callers
// compute the credit cost, check sufficiency, run the completion, and
// only then debit.
type Completer interface {
	// Complete returns the full assistant reply.
	Complete(ctx context.Context, model string, msgs []CompletionMessage) (string, error)

	// CompleteStream streams reply fragments to fn as they arrive and
	// returns the assembled full text. A non-nil error from fn aborts
	// the stream.
	CompleteStream(ctx context.Context, model string, msgs []CompletionMessage, fn func(delta string) error) (string, error)

	// GenerateImage returns a URL for a generated image.
	GenerateImage(ctx context.Context, prompt string) (string, error)

	// AnalyzeImage describes or translates the given image bytes.
	AnalyzeImage(ctx context.Context, image []byte, instruction string) (string, error)
}

// CompletionMessage is one turn in provider wire format.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
