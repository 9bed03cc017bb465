package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	InvoiceStatusVoid   InvoiceStatus = "VOID"
)

type Invoice struct {
	ID          int64               `json:"id" db:"id"`
	DocNumber   string              `json:"doc_number" db:"doc_number"`
	CustomerID  *int64              `json:"customer_id,omitempty" db:"customer_id"`
	PriceTier   pricing.Tier        `json:"price_tier" db:"price_tier"`
	PaymentType pricing.PaymentType `json:"payment_type" db:"payment_type"`
	CreditDays  int                 `json:"credit_days" db:"credit_days"`
	IssueDate   time.Time           `json:"issue_date" db:"issue_date"`
	DueDate     *time.Time          `json:"due_date,omitempty" db:"due_date"`
	Status      InvoiceStatus       `json:"status" db:"status"`
	Subtotal    decimal.Decimal     `json:"subtotal" db:"subtotal"`
	Discount    decimal.Decimal     `json:"discount" db:"discount"`
	Tax         decimal.Decimal     `json:"tax" db:"tax"`
	Surcharge   decimal.Decimal     `json:"surcharge" db:"surcharge"`
	Total       decimal.Decimal     `json:"total" db:"total"`
	Notes       *string             `json:"notes,omitempty" db:"notes"`
	QuotationID *int64              `json:"quotation_id,omitempty" db:"quotation_id"`
	VoidReason  *string             `json:"void_reason,omitempty" db:"void_reason"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	Lines       []InvoiceLine       `json:"lines,omitempty" db:"-"`
	Warnings    []string            `json:"warnings,omitempty" db:"-"`
}

type InvoiceLine struct {
	ID             int64           `json:"id" db:"id"`
	InvoiceID      int64           `json:"invoice_id" db:"invoice_id"`
	LineOrder      int             `json:"line_order" db:"line_order"`
	ProductID      int64           `json:"product_id" db:"product_id"`
	PresentationID int64           `json:"presentation_id" db:"presentation_id"`
	Description    string          `json:"description" db:"description"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct" db:"discount_pct"`
	TaxRate        decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	Discount       decimal.Decimal `json:"discount" db:"discount"`
	TaxBase        decimal.Decimal `json:"tax_base" db:"tax_base"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
}

// Priced rebuilds the computed line exactly as it was stored.
func (l InvoiceLine) Priced() pricing.Line {
	return pricing.Line{
		Quantity:    l.Quantity,
		UnitPrice:   l.UnitPrice,
		DiscountPct: l.DiscountPct,
		TaxRate:     l.TaxRate,
		Gross:       l.Amount.Add(l.Discount),
		Discount:    l.Discount,
		Net:         l.Amount,
		TaxBase:     l.TaxBase,
		Tax:         l.Tax,
	}
}

// newLine stores a draft line and its computed amounts.
func newLine(order int, dl pricing.DraftLine, computed pricing.Line) InvoiceLine {
	return InvoiceLine{
		LineOrder:      order,
		ProductID:      dl.ProductID,
		PresentationID: dl.PresentationID,
		Description:    dl.Description,
		Quantity:       computed.Quantity,
		UnitPrice:      computed.UnitPrice,
		DiscountPct:    computed.DiscountPct,
		TaxRate:        computed.TaxRate,
		Discount:       computed.Discount,
		TaxBase:        computed.TaxBase,
		Tax:            computed.Tax,
		Amount:         computed.Net,
	}
}
