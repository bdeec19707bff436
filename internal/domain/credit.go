package domain

import "time"

// ─── Credit Types ───────────────────────────────────────────────────────────
// These live in domain because they represent core business rules.
// The ledger (internal/app/credit) is the only writer of balances and
// transactions; everything else reads.

// TransactionKind represents the business reason for a balance change.
type TransactionKind string

const (
	// TxPurchase increases the balance and carries a currency price.
	TxPurchase TransactionKind = "purchase"
	// TxGrant increases the balance with no money attached (promo,
	// referral bonus, admin top-up, activation code).
	TxGrant TransactionKind = "grant"
	// TxDebit is the sole decreasing kind.
	TxDebit TransactionKind = "debit"
)

// Valid reports whether k is one of the closed set of kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case TxPurchase, TxGrant, TxDebit:
		return true
	}
	return false
}

// CreditTransaction is a single append-only row in the credit ledger.
// Amount is signed: positive for purchase/grant, negative for debit.
// Rows are never updated or deleted — the sum of a user's transactions
// must always equal that user's current balance.
type CreditTransaction struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      int64           `json:"amount"`
	Kind        TransactionKind `json:"kind"`
	Description string          `json:"description,omitempty"`
	// Price is the currency amount paid, set only for purchase rows.
	// Credits and currency are deliberately separate units.
	Price     float64   `json:"price,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreditBalance is the denormalized per-user balance row.
// Current is maintained in the same storage transaction as the ledger
// append, so it cannot drift from the transaction sum.
type CreditBalance struct {
	UserID         int64      `json:"user_id"`
	Current        int64      `json:"current"`
	TotalPurchased int64      `json:"total_purchased"` // lifetime credits bought
	TotalSpent     float64    `json:"total_spent"`     // lifetime currency paid
	LastPurchase   *time.Time `json:"last_purchase,omitempty"`
}

// CreditStats is the read model behind /creditstats.
type CreditStats struct {
	Balance        int64               `json:"balance"`
	TotalPurchased int64               `json:"total_purchased"`
	TotalSpent     float64             `json:"total_spent"`
	LastPurchase   *time.Time          `json:"last_purchase,omitempty"`
	Recent         []CreditTransaction `json:"recent"`
}

// CreditPackage is a purchasable bundle of credits at a fixed price.
// Catalog entries come from deployment configuration and never mutate
// at runtime.
type CreditPackage struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Credits int64   `json:"credits"`
	Price   float64 `json:"price"`
}

// StarsOption maps a Telegram Stars amount to a credit grant.
type StarsOption struct {
	Stars   int   `json:"stars"`
	Credits int64 `json:"credits"`
}

// PurchaseReceipt is returned by the purchase flow on success.
type PurchaseReceipt struct {
	PackageName string  `json:"package_name"`
	Credits     int64   `json:"credits"`
	Price       float64 `json:"price"`
	NewBalance  int64   `json:"new_balance"`
}

// Forecast is a linear credit-depletion projection.
// It deliberately ignores trend and seasonality: average daily usage over
// the sampled window is extrapolated flat into the future.
type Forecast struct {
	Balance       int64     `json:"balance"`
	AvgDailyUsage float64   `json:"avg_daily_usage"`
	DaysLeft      int       `json:"days_left"`
	DepletionDate time.Time `json:"depletion_date"`
}

// UsageCategory classifies a debit by what it paid for.
type UsageCategory string

const (
	UsageMessage  UsageCategory = "message"
	UsageImage    UsageCategory = "image"
	UsageDocument UsageCategory = "document"
	UsagePhoto    UsageCategory = "photo"
	UsageOther    UsageCategory = "other"
)
