package credit

import (
	"fmt"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// PaymentConfirmation approves a payment before any credits are granted.
// This is the seam where a real payment gateway plugs in: the purchase flow
// refuses to credit until Confirm returns nil.
type PaymentConfirmation interface {
	Confirm(userID int64, pkg domain.CreditPackage) error
}

// ManualConfirmation is the documented default: it approves every
// purchase. Deployments without a payment gateway grant packages manually
// through it (the same behavior the bot has always had).
type ManualConfirmation struct{}

// Confirm always approves.
func (ManualConfirmation) Confirm(int64, domain.CreditPackage) error { return nil }

// PurchaseFlow converts a catalog selection into a ledger credit.
type PurchaseFlow struct {
	ledger  *Ledger
	catalog *Catalog
	confirm PaymentConfirmation
}

// NewPurchaseFlow wires the flow. A nil confirm falls back to
// ManualConfirmation.
func NewPurchaseFlow(ledger *Ledger, catalog *Catalog, confirm PaymentConfirmation) *PurchaseFlow {
	if confirm == nil {
		confirm = ManualConfirmation{}
	}
	return &PurchaseFlow{ledger: ledger, catalog: catalog, confirm: confirm}
}

// Purchase validates the package, confirms payment, credits the bundle and
// returns a receipt. ErrUnknownPackage for a bad id; a payment refusal or
// storage failure grants nothing.
func (f *PurchaseFlow) Purchase(userID int64, packageID int) (domain.PurchaseReceipt, error) {
	pkg, err := f.catalog.ByID(packageID)
	if err != nil {
		return domain.PurchaseReceipt{}, err
	}

	if err := f.confirm.Confirm(userID, pkg); err != nil {
		return domain.PurchaseReceipt{}, fmt.Errorf("%w: %w", domain.ErrPaymentNotConfirmed, err)
	}

	newBal, err := f.ledger.RecordPurchase(userID, pkg.Credits, pkg.Price, "purchase:"+pkg.Name)
	if err != nil {
		return domain.PurchaseReceipt{}, err
	}

	return domain.PurchaseReceipt{
		PackageName: pkg.Name,
		Credits:     pkg.Credits,
		Price:       pkg.Price,
		NewBalance:  newBal,
	}, nil
}

// PurchaseWithStars exchanges a Telegram Stars amount for credits. Stars
// purchases carry no currency price — the stars were the payment.
func (f *PurchaseFlow) PurchaseWithStars(userID int64, stars int) (domain.PurchaseReceipt, error) {
	credits, err := f.catalog.StarsCredits(stars)
	if err != nil {
		return domain.PurchaseReceipt{}, err
	}

	desc := fmt.Sprintf("purchase:stars:%d", stars)
	newBal, err := f.ledger.RecordPurchase(userID, credits, 0, desc)
	if err != nil {
		return domain.PurchaseReceipt{}, err
	}

	return domain.PurchaseReceipt{
		PackageName: fmt.Sprintf("%d stars", stars),
		Credits:     credits,
		NewBalance:  newBal,
	}, nil
}
