package procurement

import (
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

type CreateSupplierRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	TaxID      string `json:"tax_id" validate:"max=20"`
	CreditDays int    `json:"credit_days" validate:"gte=0,lte=365"`
}

type PurchaseLineRequest struct {
	ProductID   int64          `json:"product_id" validate:"gte=0"`
	Description string         `json:"description" validate:"required,max=255"`
	Quantity    pricing.Amount `json:"quantity"`
	UnitCost    pricing.Amount `json:"unit_cost"`
	DiscountPct pricing.Amount `json:"discount_pct"`
	TaxPct      pricing.Amount `json:"tax_pct"`
}

type CreatePurchaseRequest struct {
	SupplierID      int64                 `json:"supplier_id" validate:"required,gt=0"`
	SupplierInvoice string                `json:"supplier_invoice" validate:"required,max=19"`
	TaxIncluded     bool                  `json:"tax_included"`
	PaymentType     pricing.PaymentType   `json:"payment_type" validate:"required,oneof=CASH CREDIT"`
	PurchaseDate    *time.Time            `json:"purchase_date"`
	DueDate         *time.Time            `json:"due_date"`
	Lines           []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type PaymentRequest struct {
	Amount    pricing.Amount `json:"amount"`
	Reference string         `json:"reference" validate:"max=100"`
}
