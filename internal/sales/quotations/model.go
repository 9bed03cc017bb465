package quotations

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

type QuotationStatus string

const (
	QuotationStatusOpen      QuotationStatus = "OPEN"
	QuotationStatusConverted QuotationStatus = "CONVERTED"
	QuotationStatusCancelled QuotationStatus = "CANCELLED"
)

type Quotation struct {
	ID          int64               `json:"id" db:"id"`
	DocNumber   string              `json:"doc_number" db:"doc_number"`
	CustomerID  *int64              `json:"customer_id,omitempty" db:"customer_id"`
	PriceTier   pricing.Tier        `json:"price_tier" db:"price_tier"`
	PaymentType pricing.PaymentType `json:"payment_type" db:"payment_type"`
	CreditDays  int                 `json:"credit_days" db:"credit_days"`
	QuoteDate   time.Time           `json:"quote_date" db:"quote_date"`
	ValidUntil  time.Time           `json:"valid_until" db:"valid_until"`
	Status      QuotationStatus     `json:"status" db:"status"`
	Subtotal    decimal.Decimal     `json:"subtotal" db:"subtotal"`
	Discount    decimal.Decimal     `json:"discount" db:"discount"`
	Tax         decimal.Decimal     `json:"tax" db:"tax"`
	Surcharge   decimal.Decimal     `json:"surcharge" db:"surcharge"`
	Total       decimal.Decimal     `json:"total" db:"total"`
	Notes       *string             `json:"notes,omitempty" db:"notes"`
	InvoiceID   *int64              `json:"invoice_id,omitempty" db:"invoice_id"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	Lines       []QuotationLine     `json:"lines,omitempty" db:"-"`
	Warnings    []string            `json:"warnings,omitempty" db:"-"`
}

// Expired reports whether the quotation can no longer be honoured at now.
func (q Quotation) Expired(now time.Time) bool {
	return now.After(q.ValidUntil)
}

type QuotationLine struct {
	ID             int64           `json:"id" db:"id"`
	QuotationID    int64           `json:"quotation_id" db:"quotation_id"`
	LineOrder      int             `json:"line_order" db:"line_order"`
	ProductID      int64           `json:"product_id" db:"product_id"`
	PresentationID int64           `json:"presentation_id" db:"presentation_id"`
	Description    string          `json:"description" db:"description"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct" db:"discount_pct"`
	TaxRate        decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	Discount       decimal.Decimal `json:"discount" db:"discount"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
}

// DraftLine restores the quoted line for re-pricing at the quoted price.
func (l QuotationLine) DraftLine(tier pricing.Tier) pricing.DraftLine {
	return pricing.DraftLine{
		ProductID:      l.ProductID,
		PresentationID: l.PresentationID,
		Description:    l.Description,
		Tier:           tier,
		Quantity:       l.Quantity,
		UnitPrice:      l.UnitPrice,
		DiscountPct:    l.DiscountPct,
		MaxDiscountPct: l.DiscountPct,
		TaxRate:        l.TaxRate,
	}
}

// Draft rebuilds the priced document the quotation was created from.
func (q Quotation) Draft() pricing.DraftDocument {
	doc := pricing.NewDraft(pricing.KindInvoice)
	if q.CustomerID != nil {
		id := *q.CustomerID
		doc.CustomerID = &id
	}
	doc.Tier = q.PriceTier.Normalize()
	doc.PaymentType = q.PaymentType
	doc.CreditDays = q.CreditDays
	doc = pricing.SetSurcharge(doc, q.Surcharge)
	for _, l := range q.Lines {
		doc.Lines = append(doc.Lines, l.DraftLine(doc.Tier))
	}
	return doc
}
