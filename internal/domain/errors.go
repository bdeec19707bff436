package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Ledger errors
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrUnknownPackage      = errors.New("unknown credit package")
	ErrUnknownStarsAmount  = errors.New("unsupported stars amount")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")

	// StorageUnavailable wraps any backing-store failure. A debit or
	// credit that returns it has NOT been applied.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// User / code errors
	ErrUserNotFound    = errors.New("user not found")
	ErrCodeInvalid     = errors.New("activation code invalid or already used")
	ErrSelfReferral    = errors.New("cannot use your own referral code")
	ErrAlreadyReferred = errors.New("referral code already used by this user")

	// Content errors
	ErrNoteNotFound     = errors.New("note not found")
	ErrReminderNotFound = errors.New("reminder not found")
	ErrReminderInPast   = errors.New("reminder time is in the past")
)
