package credit

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/infra/memory"
)

var testPackages = []domain.CreditPackage{
	{ID: 1, Name: "Starter", Credits: 100, Price: 4.99},
	{ID: 2, Name: "Standard", Credits: 300, Price: 13.99},
}

var testStars = []domain.StarsOption{
	{Stars: 100, Credits: 110},
	{Stars: 250, Credits: 300},
}

func newFlow(confirm PaymentConfirmation) (*PurchaseFlow, *Ledger) {
	ledger := NewLedger(memory.NewCreditStore(), zerolog.Nop())
	catalog := NewCatalog(testPackages, testStars)
	return NewPurchaseFlow(ledger, catalog, confirm), ledger
}

func TestPurchase_RoundTrip(t *testing.T) {
	flow, ledger := newFlow(nil)

	receipt, err := flow.Purchase(7, 2)
	if err != nil {
		t.Fatalf("Purchase() error: %v", err)
	}
	if receipt.PackageName != "Standard" || receipt.Credits != 300 || receipt.Price != 13.99 {
		t.Errorf("receipt = %+v", receipt)
	}
	if receipt.NewBalance != 300 {
		t.Errorf("NewBalance = %d, want 300", receipt.NewBalance)
	}

	stats, err := ledger.Stats(7, 5)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPurchased != 300 || stats.TotalSpent != 13.99 {
		t.Errorf("lifetime counters = %+v", stats)
	}
	if len(stats.Recent) != 1 || stats.Recent[0].Kind != domain.TxPurchase {
		t.Fatalf("recent = %+v, want one purchase row", stats.Recent)
	}
	if stats.Recent[0].Description != "purchase:Standard" {
		t.Errorf("description = %q", stats.Recent[0].Description)
	}
}

func TestPurchase_UnknownPackage(t *testing.T) {
	flow, ledger := newFlow(nil)

	if _, err := flow.Purchase(7, 99); !errors.Is(err, domain.ErrUnknownPackage) {
		t.Fatalf("error = %v, want ErrUnknownPackage", err)
	}
	if bal, _ := ledger.Balance(7); bal != 0 {
		t.Errorf("balance = %d, want 0", bal)
	}
}

type refusingConfirmation struct{ reason error }

func (r refusingConfirmation) Confirm(int64, domain.CreditPackage) error { return r.reason }

func TestPurchase_RefusedPaymentGrantsNothing(t *testing.T) {
	flow, ledger := newFlow(refusingConfirmation{reason: errors.New("card declined")})

	_, err := flow.Purchase(7, 1)
	if !errors.Is(err, domain.ErrPaymentNotConfirmed) {
		t.Fatalf("error = %v, want ErrPaymentNotConfirmed", err)
	}

	bal, _ := ledger.Balance(7)
	if bal != 0 {
		t.Errorf("balance = %d, want 0 after refused payment", bal)
	}
	stats, _ := ledger.Stats(7, 5)
	if len(stats.Recent) != 0 {
		t.Errorf("refused payment left %d transactions", len(stats.Recent))
	}
}

func TestPurchaseWithStars(t *testing.T) {
	flow, ledger := newFlow(nil)

	receipt, err := flow.PurchaseWithStars(7, 250)
	if err != nil {
		t.Fatalf("PurchaseWithStars() error: %v", err)
	}
	if receipt.Credits != 300 || receipt.NewBalance != 300 {
		t.Errorf("receipt = %+v", receipt)
	}
	if receipt.Price != 0 {
		t.Errorf("stars purchase carries price %v, want 0", receipt.Price)
	}

	stats, _ := ledger.Stats(7, 5)
	if stats.TotalSpent != 0 {
		t.Errorf("TotalSpent = %v, want 0 for stars", stats.TotalSpent)
	}

	if _, err := flow.PurchaseWithStars(7, 123); !errors.Is(err, domain.ErrUnknownStarsAmount) {
		t.Errorf("odd amount error = %v, want ErrUnknownStarsAmount", err)
	}
}
