package invoices

import (
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/shared"
)

type CreateInvoiceRequest struct {
	CustomerID *int64               `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	Surcharge  *pricing.Amount      `json:"surcharge,omitempty"`
	Notes      *string              `json:"notes,omitempty" validate:"omitempty,max=500"`
	Lines      []shared.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type VoidInvoiceRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

type ListInvoicesRequest struct {
	CustomerID *int64         `json:"customer_id,omitempty"`
	Status     *InvoiceStatus `json:"status,omitempty" validate:"omitempty,oneof=ISSUED VOID"`
	Limit      int            `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int            `json:"offset" validate:"gte=0"`
}

// PreviewResponse is a priced draft plus the user-facing discount notices.
type PreviewResponse struct {
	shared.Draft
	Messages []string `json:"messages,omitempty"`
}
