// Package pricing computes tax-inclusive line amounts and document totals
// for invoices, quotations, purchases and returns.
//
// Every function in this package is pure: inputs are values, outputs are
// values, and nothing is cached between calls. Amounts keep full decimal
// precision; rounding is a formatting concern (see FormatAmount).
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Tier identifies one of the three price levels a client can be assigned.
type Tier int

const (
	TierOne   Tier = 1
	TierTwo   Tier = 2
	TierThree Tier = 3
)

// Valid reports whether the tier is one of the supported levels.
func (t Tier) Valid() bool {
	return t >= TierOne && t <= TierThree
}

// Normalize maps unknown tiers onto tier one.
func (t Tier) Normalize() Tier {
	if !t.Valid() {
		return TierOne
	}
	return t
}

// PriceSourceKind tells where a tier price comes from.
type PriceSourceKind string

const (
	SourceInherited   PriceSourceKind = "INHERITED"
	SourceFixed       PriceSourceKind = "FIXED"
	SourceAutoDerived PriceSourceKind = "AUTO_DERIVED"
)

// PriceSource is the resolved origin of a tier price.
type PriceSource struct {
	Kind  PriceSourceKind `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Fixed is an explicitly stored price. Non-positive values count as unset.
func Fixed(value decimal.Decimal) PriceSource {
	if !value.IsPositive() {
		return Inherited()
	}
	return PriceSource{Kind: SourceFixed, Value: value}
}

// AutoDerived is a price derived from tier one by a catalog percentage.
// It is honoured even when the derived value is zero.
func AutoDerived(value decimal.Decimal) PriceSource {
	return PriceSource{Kind: SourceAutoDerived, Value: value}
}

// Inherited defers to the next lower tier.
func Inherited() PriceSource {
	return PriceSource{Kind: SourceInherited}
}

// IsSet reports whether the source provides its own value.
func (s PriceSource) IsSet() bool {
	return s.Kind == SourceFixed || s.Kind == SourceAutoDerived
}

// Presentation is the catalog record a line is priced from.
type Presentation struct {
	Price1      decimal.Decimal `json:"price1"`
	Price2      decimal.Decimal `json:"price2"`
	Price3      decimal.Decimal `json:"price3"`
	AutoPrice2  bool            `json:"auto_price2"`
	AutoPrice3  bool            `json:"auto_price3"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxPct      decimal.Decimal `json:"tax_pct"`
	Cost        decimal.Decimal `json:"cost"`
}

// Source maps the stored price and auto flag of a tier onto a PriceSource.
func (p Presentation) Source(tier Tier) PriceSource {
	switch tier {
	case TierTwo:
		if p.AutoPrice2 {
			return AutoDerived(p.Price2)
		}
		return Fixed(p.Price2)
	case TierThree:
		if p.AutoPrice3 {
			return AutoDerived(p.Price3)
		}
		return Fixed(p.Price3)
	default:
		return PriceSource{Kind: SourceFixed, Value: p.Price1}
	}
}

// TaxRate returns the presentation tax as a fraction (18 -> 0.18).
func (p Presentation) TaxRate() decimal.Decimal {
	return RateFromPercent(p.TaxPct)
}

// CatalogItem pairs a presentation with its identifiers and label.
type CatalogItem struct {
	ProductID      int64        `json:"product_id"`
	PresentationID int64        `json:"presentation_id"`
	Code           string       `json:"code"`
	Description    string       `json:"description"`
	Presentation   Presentation `json:"presentation"`
}

// TierPrice is the outcome of selecting a price tier.
type TierPrice struct {
	Tier           Tier            `json:"tier"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	MaxDiscountPct decimal.Decimal `json:"max_discount_pct"`
	Source         PriceSourceKind `json:"source"`
}

// Line holds the inputs and derived amounts of one document line.
type Line struct {
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Gross       decimal.Decimal `json:"gross"`
	Discount    decimal.Decimal `json:"discount"`
	Net         decimal.Decimal `json:"net"`
	TaxBase     decimal.Decimal `json:"tax_base"`
	Tax         decimal.Decimal `json:"tax"`
}

// Total is the tax-inclusive line amount.
func (l Line) Total() decimal.Decimal {
	return l.Net
}

// DocumentTotals aggregates the active lines of a document.
type DocumentTotals struct {
	SubTotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"discount"`
	TotalTax      decimal.Decimal `json:"tax"`
	Surcharge     decimal.Decimal `json:"surcharge"`
	GrandTotal    decimal.Decimal `json:"total"`
	Lines         int             `json:"lines"`
}

// PurchaseLine is a supplier invoice line in either tax mode.
type PurchaseLine struct {
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxIncluded bool            `json:"tax_included"`
	UnitCostNet decimal.Decimal `json:"unit_cost_net"`
	Discount    decimal.Decimal `json:"discount"`
	Base        decimal.Decimal `json:"base"`
	Tax         decimal.Decimal `json:"tax"`
	Importe     decimal.Decimal `json:"importe"`
	PrintedTax  decimal.Decimal `json:"printed_tax"`
}

// TaxDiscrepancy is the printed tax minus the ledger tax.
func (l PurchaseLine) TaxDiscrepancy() decimal.Decimal {
	return l.PrintedTax.Sub(l.Tax)
}

// ReturnLine is the pro-rated share of an original line being returned.
type ReturnLine struct {
	Quantity decimal.Decimal `json:"quantity"`
	Ratio    decimal.Decimal `json:"ratio"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Amount   decimal.Decimal `json:"amount"`
}

// PaymentType is the settlement mode of a document.
type PaymentType string

const (
	PaymentCash   PaymentType = "CASH"
	PaymentCredit PaymentType = "CREDIT"
)

// CreditTerms are the credit conditions granted to a client or supplier.
type CreditTerms struct {
	Authorized bool `json:"authorized"`
	Days       int  `json:"days"`
}

var (
	// ErrNonPositiveQuantity rejects lines added with quantity <= 0.
	ErrNonPositiveQuantity = errors.New("pricing: quantity must be greater than zero")
	// ErrLineIndex signals an out of range draft line.
	ErrLineIndex = errors.New("pricing: line index out of range")
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)
