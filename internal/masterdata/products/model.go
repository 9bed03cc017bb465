package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// Product represents a product entity
type Product struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	TaxPct        decimal.Decimal `json:"tax_pct"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Presentations []Presentation  `json:"presentations"`
}

// Presentation is a sellable packaging of a product (unit, box, bag) with
// its own three price tiers.
type Presentation struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Barcode     string          `json:"barcode"`
	Price1      decimal.Decimal `json:"price1"`
	Price2      decimal.Decimal `json:"price2"`
	Price3      decimal.Decimal `json:"price3"`
	AutoPrice2  bool            `json:"auto_price2"`
	AutoPrice3  bool            `json:"auto_price3"`
	AutoPct2    decimal.Decimal `json:"auto_pct2"`
	AutoPct3    decimal.Decimal `json:"auto_pct3"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Cost        decimal.Decimal `json:"cost"`
}

// Derive recomputes the auto-derived tier prices from price 1.
func (p Presentation) Derive() Presentation {
	if p.AutoPrice2 {
		p.Price2 = pricing.DerivePrice(p.Price1, p.AutoPct2)
	}
	if p.AutoPrice3 {
		p.Price3 = pricing.DerivePrice(p.Price1, p.AutoPct3)
	}
	return p
}

// Pricing converts the stored record into the pricing engine view.
func (p Presentation) Pricing(taxPct decimal.Decimal) pricing.Presentation {
	return pricing.Presentation{
		Price1:      p.Price1,
		Price2:      p.Price2,
		Price3:      p.Price3,
		AutoPrice2:  p.AutoPrice2,
		AutoPrice3:  p.AutoPrice3,
		DiscountPct: p.DiscountPct,
		TaxPct:      taxPct,
		Cost:        p.Cost,
	}
}

// CatalogItem builds the priced catalog entry of one presentation.
func (p Product) CatalogItem(pres Presentation) pricing.CatalogItem {
	description := p.Name
	if pres.Name != "" {
		description = p.Name + " " + pres.Name
	}
	return pricing.CatalogItem{
		ProductID:      p.ID,
		PresentationID: pres.ID,
		Code:           p.Code,
		Description:    description,
		Presentation:   pres.Pricing(p.TaxPct),
	}
}
