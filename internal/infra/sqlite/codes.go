package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// ─── Code Store ─────────────────────────────────────────────────────────────

// CreateCode registers a one-shot activation code.
func (db *DB) CreateCode(code string, credits int64) error {
	_, err := db.db.Exec(
		`INSERT INTO activation_codes (code, credits, created_at) VALUES (?, ?, ?)`,
		code, credits, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("create code: %w", err)
	}
	return nil
}

// RedeemCode marks the code used by userID and returns its value.
// The conditional update makes redemption one-shot even under concurrent
// attempts: only the first caller flips used_by.
func (db *DB) RedeemCode(code string, userID int64) (int64, error) {
	res, err := db.db.Exec(
		`UPDATE activation_codes SET used_by = ?, used_at = ?
		 WHERE code = ? AND used_by IS NULL`,
		userID, formatTime(time.Now()), code,
	)
	if err != nil {
		return 0, fmt.Errorf("redeem code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("redeem code: %w", err)
	}
	if n == 0 {
		return 0, domain.ErrCodeInvalid
	}

	var credits int64
	if err := db.db.QueryRow(
		`SELECT credits FROM activation_codes WHERE code = ?`, code,
	).Scan(&credits); err != nil {
		return 0, fmt.Errorf("read code: %w", err)
	}
	return credits, nil
}

// RecordReferral links invitee to referrer. The invitee primary key makes
// a second referral for the same user fail with ErrAlreadyReferred.
func (db *DB) RecordReferral(referrerID, inviteeID int64) error {
	res, err := db.db.Exec(
		`INSERT INTO referrals (invitee_id, referrer_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(invitee_id) DO NOTHING`,
		inviteeID, referrerID, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("record referral: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record referral: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyReferred
	}
	return nil
}

// ReferralCount returns how many users joined through referrerID's code.
func (db *DB) ReferralCount(referrerID int64) (int, error) {
	var count int
	err := db.db.QueryRow(
		`SELECT COUNT(*) FROM referrals WHERE referrer_id = ?`, referrerID,
	).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("count referrals: %w", err)
	}
	return count, nil
}
