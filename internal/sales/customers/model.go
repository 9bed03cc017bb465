package customers

import (
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

type Customer struct {
	ID               int64        `json:"id" db:"id"`
	Code             string       `json:"code" db:"code"`
	Name             string       `json:"name" db:"name"`
	TaxID            *string      `json:"tax_id,omitempty" db:"tax_id"`
	Phone            *string      `json:"phone,omitempty" db:"phone"`
	Email            *string      `json:"email,omitempty" db:"email"`
	PriceTier        pricing.Tier `json:"price_tier" db:"price_tier"`
	CreditAuthorized bool         `json:"credit_authorized" db:"credit_authorized"`
	CreditDays       int          `json:"credit_days" db:"credit_days"`
	IsActive         bool         `json:"is_active" db:"is_active"`
	Notes            *string      `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// Ref is the pricing view of the customer.
func (c Customer) Ref() pricing.ClientRef {
	return pricing.ClientRef{
		ID:   c.ID,
		Tier: c.PriceTier.Normalize(),
		Credit: pricing.CreditTerms{
			Authorized: c.CreditAuthorized,
			Days:       c.CreditDays,
		},
	}
}
