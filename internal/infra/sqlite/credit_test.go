package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/kdziekansky/telegram2/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func grantTx(userID, amount int64, desc string) domain.CreditTransaction {
	return domain.CreditTransaction{
		ID: desc + "-id", UserID: userID, Amount: amount,
		Kind: domain.TxGrant, Description: desc, CreatedAt: time.Now(),
	}
}

func debitTx(userID, cost int64, desc string) domain.CreditTransaction {
	return domain.CreditTransaction{
		ID: desc + "-id", UserID: userID, Amount: -cost,
		Kind: domain.TxDebit, Description: desc, CreatedAt: time.Now(),
	}
}

// ─── Balance & Debit ────────────────────────────────────────────────────────

func TestBalance_UnknownUserIsZero(t *testing.T) {
	db := newTestDB(t)
	bal, err := db.Balance(999)
	if err != nil {
		t.Fatalf("Balance() error: %v", err)
	}
	if bal != 0 {
		t.Errorf("Balance() = %d, want 0", bal)
	}
}

func TestDebit_InsufficientLeavesStoreUnchanged(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.EnsureUser(1, "alice", "en"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Credit(1, grantTx(1, 50, "grant")); err != nil {
		t.Fatal(err)
	}

	// Retry several times: every attempt must be a no-op.
	for i := 0; i < 3; i++ {
		_, err := db.Debit(1, 80, debitTx(1, 80, "too-big"))
		if !errors.Is(err, domain.ErrInsufficientCredits) {
			t.Fatalf("Debit() error = %v, want ErrInsufficientCredits", err)
		}
	}

	bal, _ := db.Balance(1)
	if bal != 50 {
		t.Errorf("balance = %d, want 50", bal)
	}
	txs, _ := db.Recent(1, 10)
	if len(txs) != 1 {
		t.Errorf("transaction count = %d, want 1 (failed debits must not append)", len(txs))
	}
}

func TestDebit_Success(t *testing.T) {
	db := newTestDB(t)
	db.EnsureUser(1, "alice", "en")
	db.Credit(1, grantTx(1, 100, "grant"))

	newBal, err := db.Debit(1, 30, debitTx(1, 30, "message"))
	if err != nil {
		t.Fatalf("Debit() error: %v", err)
	}
	if newBal != 70 {
		t.Errorf("new balance = %d, want 70", newBal)
	}

	txs, _ := db.Recent(1, 10)
	if len(txs) != 2 {
		t.Fatalf("transaction count = %d, want 2", len(txs))
	}
	if txs[0].Amount != -30 || txs[0].Kind != domain.TxDebit {
		t.Errorf("newest tx = %+v, want -30 debit", txs[0])
	}
}

func TestDebit_UnknownUser(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Debit(404, 1, debitTx(404, 1, "x"))
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Errorf("Debit() error = %v, want ErrInsufficientCredits", err)
	}
}

// ─── Credit & Purchase Counters ─────────────────────────────────────────────

func TestCredit_PurchaseUpdatesLifetimeCounters(t *testing.T) {
	db := newTestDB(t)
	db.EnsureUser(1, "alice", "en")

	purchase := domain.CreditTransaction{
		ID: "p1", UserID: 1, Amount: 300, Kind: domain.TxPurchase,
		Description: "purchase:Standard", Price: 13.99, CreatedAt: time.Now(),
	}
	newBal, err := db.Credit(1, purchase)
	if err != nil {
		t.Fatalf("Credit() error: %v", err)
	}
	if newBal != 300 {
		t.Errorf("new balance = %d, want 300", newBal)
	}

	row, err := db.BalanceRow(1)
	if err != nil {
		t.Fatal(err)
	}
	if row.TotalPurchased != 300 {
		t.Errorf("TotalPurchased = %d, want 300", row.TotalPurchased)
	}
	if row.TotalSpent != 13.99 {
		t.Errorf("TotalSpent = %v, want 13.99", row.TotalSpent)
	}
	if row.LastPurchase == nil {
		t.Error("LastPurchase not set")
	}
}

func TestCredit_GrantDoesNotTouchLifetimeCounters(t *testing.T) {
	db := newTestDB(t)
	db.EnsureUser(1, "alice", "en")
	db.Credit(1, grantTx(1, 25, "referral"))

	row, _ := db.BalanceRow(1)
	if row.Current != 25 {
		t.Errorf("Current = %d, want 25", row.Current)
	}
	if row.TotalPurchased != 0 || row.TotalSpent != 0 || row.LastPurchase != nil {
		t.Errorf("grant must not touch purchase counters: %+v", row)
	}
}

// ─── Reconciliation Invariant ───────────────────────────────────────────────

func TestTransactionSum_MatchesBalance(t *testing.T) {
	db := newTestDB(t)
	db.EnsureUser(1, "alice", "en")
	db.Credit(1, grantTx(1, 100, "g1"))
	db.Debit(1, 30, debitTx(1, 30, "d1"))
	db.Credit(1, domain.CreditTransaction{
		ID: "p1", UserID: 1, Amount: 50, Kind: domain.TxPurchase,
		Description: "purchase:Starter", Price: 4.99, CreatedAt: time.Now(),
	})
	db.Debit(1, 10, debitTx(1, 10, "d2"))
	// Failed debit must not affect the sum.
	db.Debit(1, 10000, debitTx(1, 10000, "d3"))

	bal, _ := db.Balance(1)
	sum, err := db.TransactionSum(1)
	if err != nil {
		t.Fatal(err)
	}
	if bal != sum {
		t.Errorf("balance %d != transaction sum %d", bal, sum)
	}
	if bal != 110 {
		t.Errorf("balance = %d, want 110", bal)
	}
}

// ─── Windowed Queries ───────────────────────────────────────────────────────

func TestDebitsSince_ExcludesOutOfWindow(t *testing.T) {
	db := newTestDB(t)
	db.EnsureUser(1, "alice", "en")
	db.Credit(1, grantTx(1, 100, "g"))

	old := domain.CreditTransaction{
		ID: "old", UserID: 1, Amount: -5, Kind: domain.TxDebit,
		Description: "message old", CreatedAt: time.Now().AddDate(0, 0, -40),
	}
	if _, err := db.Debit(1, 5, old); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Debit(1, 10, debitTx(1, 10, "message fresh")); err != nil {
		t.Fatal(err)
	}

	since := time.Now().AddDate(0, 0, -30)
	txs, err := db.DebitsSince(1, since)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("len = %d, want 1 (out-of-window debit excluded)", len(txs))
	}
	if txs[0].Description != "message fresh" {
		t.Errorf("got %q, want the in-window debit", txs[0].Description)
	}
}

func TestRecent_NewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	db.EnsureUser(1, "alice", "en")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		tx := grantTx(1, 10, "g")
		tx.ID = tx.ID + string(rune('a'+i))
		tx.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if _, err := db.Credit(1, tx); err != nil {
			t.Fatal(err)
		}
	}

	txs, err := db.Recent(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 {
		t.Fatalf("len = %d, want 3", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i-1].CreatedAt.Before(txs[i].CreatedAt) {
			t.Errorf("transactions not newest-first at %d", i)
		}
	}
}
