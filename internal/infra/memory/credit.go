// Package memory provides an in-process CreditStore used by unit tests and
// as the documented fallback when no database path is configured. It honors
// the same atomicity contract as the SQLite store: balance check and ledger
// append happen under one lock.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// CreditStore is a mutex-guarded implementation of domain.CreditStore.
type CreditStore struct {
	mu       sync.Mutex
	balances map[int64]*domain.CreditBalance
	ledger   map[int64][]domain.CreditTransaction
}

// NewCreditStore returns an empty store.
func NewCreditStore() *CreditStore {
	return &CreditStore{
		balances: make(map[int64]*domain.CreditBalance),
		ledger:   make(map[int64][]domain.CreditTransaction),
	}
}

func (s *CreditStore) row(userID int64) *domain.CreditBalance {
	b, ok := s.balances[userID]
	if !ok {
		b = &domain.CreditBalance{UserID: userID}
		s.balances[userID] = b
	}
	return b
}

// Balance returns the current balance, 0 for unknown users.
func (s *CreditStore) Balance(userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[userID]; ok {
		return b.Current, nil
	}
	return 0, nil
}

// Debit re-validates the balance under the lock, the in-memory equivalent
// of the SQL conditional update.
func (s *CreditStore) Debit(userID int64, cost int64, tx domain.CreditTransaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.row(userID)
	if b.Current < cost {
		return 0, domain.ErrInsufficientCredits
	}
	b.Current -= cost
	s.ledger[userID] = append(s.ledger[userID], tx)
	return b.Current, nil
}

// Credit increments the balance and appends the ledger row.
func (s *CreditStore) Credit(userID int64, tx domain.CreditTransaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.row(userID)
	b.Current += tx.Amount
	if tx.Kind == domain.TxPurchase {
		b.TotalPurchased += tx.Amount
		b.TotalSpent += tx.Price
		at := tx.CreatedAt
		b.LastPurchase = &at
	}
	s.ledger[userID] = append(s.ledger[userID], tx)
	return b.Current, nil
}

// BalanceRow returns a copy of the denormalized row.
func (s *CreditStore) BalanceRow(userID int64) (domain.CreditBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[userID]; ok {
		return *b, nil
	}
	return domain.CreditBalance{UserID: userID}, nil
}

// Recent returns up to n transactions, newest first.
func (s *CreditStore) Recent(userID int64, n int) ([]domain.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := append([]domain.CreditTransaction(nil), s.ledger[userID]...)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	if len(txs) > n {
		txs = txs[:n]
	}
	return txs, nil
}

// DebitsSince returns debit transactions at or after since, newest first.
func (s *CreditStore) DebitsSince(userID int64, since time.Time) ([]domain.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.CreditTransaction
	for _, tx := range s.ledger[userID] {
		if tx.Kind == domain.TxDebit && !tx.CreatedAt.Before(since) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// TransactionSum recomputes the signed ledger sum.
func (s *CreditStore) TransactionSum(userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, tx := range s.ledger[userID] {
		sum += tx.Amount
	}
	return sum, nil
}
