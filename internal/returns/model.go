package returns

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// Return credits part or all of an issued invoice back to the customer.
type Return struct {
	ID         int64           `json:"id" db:"id"`
	Number     string          `json:"number" db:"number"`
	InvoiceID  int64           `json:"invoice_id" db:"invoice_id"`
	Reason     string          `json:"reason" db:"reason"`
	ReturnDate time.Time       `json:"return_date" db:"return_date"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	Tax        decimal.Decimal `json:"tax" db:"tax"`
	Total      decimal.Decimal `json:"total" db:"total"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	Lines      []ReturnLine    `json:"lines,omitempty" db:"-"`
}

// ReturnLine is the pro-rated share of one invoice line.
type ReturnLine struct {
	ID            int64           `json:"id" db:"id"`
	ReturnID      int64           `json:"return_id" db:"return_id"`
	InvoiceLineID int64           `json:"invoice_line_id" db:"invoice_line_id"`
	ProductID     int64           `json:"product_id" db:"product_id"`
	Description   string          `json:"description" db:"description"`
	Quantity      decimal.Decimal `json:"quantity" db:"quantity"`
	Ratio         decimal.Decimal `json:"ratio" db:"ratio"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Tax           decimal.Decimal `json:"tax" db:"tax"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
}

// LineReturned is what earlier returns already credited for one invoice line.
type LineReturned struct {
	Quantity decimal.Decimal
	Totals   pricing.ReturnTotals
}
