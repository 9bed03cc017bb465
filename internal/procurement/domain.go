package procurement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// PurchaseStatus tracks settlement of a supplier invoice.
type PurchaseStatus string

const (
	PurchaseStatusOpen PurchaseStatus = "OPEN"
	PurchaseStatusPaid PurchaseStatus = "PAID"
	PurchaseStatusVoid PurchaseStatus = "VOID"
)

var (
	ErrNotFound     = fmt.Errorf("procurement record %w", httpx.ErrNotFound)
	ErrInvalidState = fmt.Errorf("purchase %w", httpx.ErrConflict)
	ErrValidation   = fmt.Errorf("procurement %w", httpx.ErrValidation)
)

// Supplier is a vendor issuing purchase invoices.
type Supplier struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TaxID      string    `json:"tax_id"`
	CreditDays int       `json:"credit_days"`
	CreatedAt  time.Time `json:"created_at"`
}

// Purchase is a supplier invoice registered into accounts payable.
type Purchase struct {
	ID              int64               `json:"id"`
	Number          string              `json:"number"`
	SupplierID      int64               `json:"supplier_id"`
	SupplierInvoice string              `json:"supplier_invoice"`
	TaxIncluded     bool                `json:"tax_included"`
	PaymentType     pricing.PaymentType `json:"payment_type"`
	PurchaseDate    time.Time           `json:"purchase_date"`
	DueDate         *time.Time          `json:"due_date,omitempty"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Discount        decimal.Decimal     `json:"discount"`
	Tax             decimal.Decimal     `json:"tax"`
	PrintedTax      decimal.Decimal     `json:"printed_tax"`
	Total           decimal.Decimal     `json:"total"`
	Balance         decimal.Decimal     `json:"balance"`
	Status          PurchaseStatus      `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	Lines           []PurchaseLine      `json:"lines,omitempty"`
}

// PurchaseLine stores the inputs and computed amounts of a supplier line.
type PurchaseLine struct {
	ID          int64           `json:"id"`
	PurchaseID  int64           `json:"purchase_id"`
	LineOrder   int             `json:"line_order"`
	ProductID   int64           `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	UnitCostNet decimal.Decimal `json:"unit_cost_net"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Discount    decimal.Decimal `json:"discount"`
	Base        decimal.Decimal `json:"base"`
	Tax         decimal.Decimal `json:"tax"`
	PrintedTax  decimal.Decimal `json:"printed_tax"`
	Importe     decimal.Decimal `json:"importe"`
}

// Payment settles part or all of a purchase balance.
type Payment struct {
	ID         int64           `json:"id"`
	PurchaseID int64           `json:"purchase_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
}

// Payable is an outstanding purchase balance.
type Payable struct {
	PurchaseID      int64           `json:"purchase_id"`
	Number          string          `json:"number"`
	SupplierID      int64           `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	SupplierInvoice string          `json:"supplier_invoice"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Total           decimal.Decimal `json:"total"`
	Balance         decimal.Decimal `json:"balance"`
}

func newLine(order int, productID int64, description string, computed pricing.PurchaseLine) PurchaseLine {
	return PurchaseLine{
		LineOrder:   order,
		ProductID:   productID,
		Description: description,
		Quantity:    computed.Quantity,
		UnitCost:    computed.UnitCost,
		UnitCostNet: computed.UnitCostNet,
		DiscountPct: computed.DiscountPct,
		TaxRate:     computed.TaxRate,
		Discount:    computed.Discount,
		Base:        computed.Base,
		Tax:         computed.Tax,
		PrintedTax:  computed.PrintedTax,
		Importe:     computed.Importe,
	}
}
