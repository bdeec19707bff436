// Package credit implements the prepaid credit subsystem: the ledger (the
// single source of truth for spendable balances), the package catalog, the
// purchase flow, and usage analytics.
//
// Every numeric change to a balance flows through the Ledger. The backing
// store performs the balance check and the ledger append atomically, so a
// debit can never race another debit into a negative balance, and a storage
// failure can never half-apply.
package credit

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// DefaultStatsHistory is how many recent transactions Stats returns when
// the caller does not say.
const DefaultStatsHistory = 10

// Ledger owns all balance mutations and their audit trail.
type Ledger struct {
	store domain.CreditStore
	log   zerolog.Logger
}

// NewLedger creates a ledger over the given store.
func NewLedger(store domain.CreditStore, log zerolog.Logger) *Ledger {
	return &Ledger{store: store, log: log}
}

// Balance returns the user's current balance; 0 for first-time users.
func (l *Ledger) Balance(userID int64) (int64, error) {
	bal, err := l.store.Balance(userID)
	if err != nil {
		return 0, storageErr("balance", err)
	}
	return bal, nil
}

// HasSufficient reports whether the balance covers cost. This is advisory:
// Debit re-validates at write time regardless.
func (l *Ledger) HasSufficient(userID int64, cost int64) (bool, error) {
	if cost <= 0 {
		return false, fmt.Errorf("cost %d: %w", cost, domain.ErrInvalidAmount)
	}
	bal, err := l.Balance(userID)
	if err != nil {
		return false, err
	}
	return bal >= cost, nil
}

// Debit removes cost credits and appends the audit row. Returns the new
// balance, ErrInsufficientCredits when the balance does not cover cost, or
// a storage error — in both failure cases nothing was applied.
func (l *Ledger) Debit(userID int64, cost int64, description string) (int64, error) {
	if cost <= 0 {
		return 0, fmt.Errorf("cost %d: %w", cost, domain.ErrInvalidAmount)
	}

	tx := domain.CreditTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      -cost,
		Kind:        domain.TxDebit,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	newBal, err := l.store.Debit(userID, cost, tx)
	if errors.Is(err, domain.ErrInsufficientCredits) {
		return 0, err
	}
	if err != nil {
		return 0, storageErr("debit", err)
	}

	l.log.Debug().
		Int64("user_id", userID).
		Int64("cost", cost).
		Int64("balance", newBal).
		Str("description", description).
		Msg("credits debited")
	return newBal, nil
}

// Credit adds amount credits with the given kind (grant or purchase with
// no money attached). Purchases that carry a currency price go through
// RecordPurchase instead.
func (l *Ledger) Credit(userID int64, amount int64, description string, kind domain.TransactionKind) (int64, error) {
	if kind != domain.TxGrant && kind != domain.TxPurchase {
		return 0, fmt.Errorf("kind %q cannot increase a balance: %w", kind, domain.ErrInvalidAmount)
	}
	return l.apply(userID, amount, description, kind, 0)
}

// RecordPurchase credits a bought package: amount credits at the given
// currency price. Lifetime counters and the last-purchase timestamp update
// in the same storage transaction.
func (l *Ledger) RecordPurchase(userID int64, amount int64, price float64, description string) (int64, error) {
	return l.apply(userID, amount, description, domain.TxPurchase, price)
}

func (l *Ledger) apply(userID int64, amount int64, description string, kind domain.TransactionKind, price float64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount %d: %w", amount, domain.ErrInvalidAmount)
	}

	tx := domain.CreditTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		Price:       price,
		CreatedAt:   time.Now().UTC(),
	}
	newBal, err := l.store.Credit(userID, tx)
	if err != nil {
		return 0, storageErr("credit", err)
	}

	l.log.Debug().
		Int64("user_id", userID).
		Int64("amount", amount).
		Int64("balance", newBal).
		Str("kind", string(kind)).
		Msg("credits added")
	return newBal, nil
}

// Stats returns the balance row plus the n most recent transactions,
// newest first. n <= 0 selects DefaultStatsHistory.
func (l *Ledger) Stats(userID int64, n int) (domain.CreditStats, error) {
	if n <= 0 {
		n = DefaultStatsHistory
	}

	row, err := l.store.BalanceRow(userID)
	if err != nil {
		return domain.CreditStats{}, storageErr("stats", err)
	}
	recent, err := l.store.Recent(userID, n)
	if err != nil {
		return domain.CreditStats{}, storageErr("stats", err)
	}

	return domain.CreditStats{
		Balance:        row.Current,
		TotalPurchased: row.TotalPurchased,
		TotalSpent:     row.TotalSpent,
		LastPurchase:   row.LastPurchase,
		Recent:         recent,
	}, nil
}

// Reconcile recomputes the ledger sum and reports whether it matches the
// denormalized balance. Used by the ops API and tests.
func (l *Ledger) Reconcile(userID int64) (balance, sum int64, ok bool, err error) {
	balance, err = l.Balance(userID)
	if err != nil {
		return 0, 0, false, err
	}
	sum, err = l.store.TransactionSum(userID)
	if err != nil {
		return 0, 0, false, storageErr("reconcile", err)
	}
	return balance, sum, balance == sum, nil
}

// storageErr tags a backing-store failure so callers can tell a transient
// infrastructure problem from a business refusal. The operation did not
// apply.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
