package quotations

import (
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/shared"
)

type CreateQuotationRequest struct {
	CustomerID *int64               `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	ValidDays  int                  `json:"valid_days" validate:"gte=0,lte=365"`
	Surcharge  *pricing.Amount      `json:"surcharge,omitempty"`
	Notes      *string              `json:"notes,omitempty" validate:"omitempty,max=500"`
	Lines      []shared.LineRequest `json:"lines" validate:"required,min=1,dive"`
}

type ListQuotationsRequest struct {
	CustomerID *int64           `json:"customer_id,omitempty"`
	Status     *QuotationStatus `json:"status,omitempty" validate:"omitempty,oneof=OPEN CONVERTED CANCELLED"`
	Limit      int              `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int              `json:"offset" validate:"gte=0"`
}
