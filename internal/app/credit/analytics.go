package credit

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// Analytics derives read-only insight from the transaction history.
// It never mutates state, and callers are expected to present any failure
// here as "not enough data" — unlike the ledger, nothing financial is at
// risk.
type Analytics struct {
	store domain.CreditStore
	// now is swappable for tests.
	now func() time.Time
}

// NewAnalytics creates an analytics reader over the store.
func NewAnalytics(store domain.CreditStore) *Analytics {
	return &Analytics{store: store, now: time.Now}
}

// UsageBreakdown groups debits over the trailing days window by category,
// summing absolute amounts. Categories without activity are omitted; no
// debits at all yields an empty map.
func (a *Analytics) UsageBreakdown(userID int64, days int) (map[domain.UsageCategory]int64, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days %d: %w", days, domain.ErrInvalidAmount)
	}

	since := a.now().AddDate(0, 0, -days)
	debits, err := a.store.DebitsSince(userID, since)
	if err != nil {
		return nil, storageErr("usage breakdown", err)
	}

	out := make(map[domain.UsageCategory]int64)
	for _, tx := range debits {
		out[CategoryFor(tx.Description)] += -tx.Amount
	}
	return out, nil
}

// DepletionForecast projects when the balance runs out, assuming usage
// stays flat at the window's daily average. Returns (nil, nil) when there
// is nothing to project: zero balance or no usage in the window. The
// projection is deliberately naive — no trend or seasonality.
func (a *Analytics) DepletionForecast(userID int64, days int) (*domain.Forecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days %d: %w", days, domain.ErrInvalidAmount)
	}

	balance, err := a.store.Balance(userID)
	if err != nil {
		return nil, storageErr("forecast", err)
	}
	if balance <= 0 {
		return nil, nil
	}

	since := a.now().AddDate(0, 0, -days)
	debits, err := a.store.DebitsSince(userID, since)
	if err != nil {
		return nil, storageErr("forecast", err)
	}

	var spent int64
	for _, tx := range debits {
		spent += -tx.Amount
	}
	if spent <= 0 {
		return nil, nil
	}

	avg := float64(spent) / float64(days)
	daysLeft := int(math.Floor(float64(balance) / avg))
	return &domain.Forecast{
		Balance:       balance,
		AvgDailyUsage: avg,
		DaysLeft:      daysLeft,
		DepletionDate: a.now().AddDate(0, 0, daysLeft),
	}, nil
}

// CategoryFor maps a debit description to a usage category by its prefix.
// Handlers write descriptions like "message (gpt-4o)", "image: sunset",
// "document:report.pdf", "photo analysis".
func CategoryFor(description string) domain.UsageCategory {
	d := strings.ToLower(strings.TrimSpace(description))
	switch {
	case strings.HasPrefix(d, "message"):
		return domain.UsageMessage
	case strings.HasPrefix(d, "image"):
		return domain.UsageImage
	case strings.HasPrefix(d, "document"):
		return domain.UsageDocument
	case strings.HasPrefix(d, "photo"):
		return domain.UsagePhoto
	default:
		return domain.UsageOther
	}
}
