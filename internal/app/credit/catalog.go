package credit

import (
	"fmt"

	"github.com/kdziekansky/telegram2/internal/domain"
)

// Catalog is the static list of purchasable credit bundles plus the
// Telegram Stars conversion table. Both come from deployment configuration
// and never change at runtime.
type Catalog struct {
	packages []domain.CreditPackage
	stars    []domain.StarsOption
}

// NewCatalog builds a catalog preserving the configured order.
func NewCatalog(packages []domain.CreditPackage, stars []domain.StarsOption) *Catalog {
	return &Catalog{
		packages: append([]domain.CreditPackage(nil), packages...),
		stars:    append([]domain.StarsOption(nil), stars...),
	}
}

// Packages returns the bundles in display order.
func (c *Catalog) Packages() []domain.CreditPackage {
	return append([]domain.CreditPackage(nil), c.packages...)
}

// ByID finds a bundle, ErrUnknownPackage when absent.
func (c *Catalog) ByID(id int) (domain.CreditPackage, error) {
	for _, p := range c.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.CreditPackage{}, fmt.Errorf("package %d: %w", id, domain.ErrUnknownPackage)
}

// StarsOptions returns the conversion table in display order.
func (c *Catalog) StarsOptions() []domain.StarsOption {
	return append([]domain.StarsOption(nil), c.stars...)
}

// StarsCredits converts a stars amount, ErrUnknownStarsAmount when the
// amount is not in the table.
func (c *Catalog) StarsCredits(stars int) (int64, error) {
	for _, opt := range c.stars {
		if opt.Stars == stars {
			return opt.Credits, nil
		}
	}
	return 0, fmt.Errorf("%d stars: %w", stars, domain.ErrUnknownStarsAmount)
}
