package returns

import "github.com/odyssey-erp/odyssey-pos/internal/pricing"

type LineRequest struct {
	InvoiceLineID int64          `json:"invoice_line_id" validate:"required,gt=0"`
	Quantity      pricing.Amount `json:"quantity"`
}

type CreateReturnRequest struct {
	InvoiceID int64         `json:"invoice_id" validate:"required,gt=0"`
	Reason    string        `json:"reason" validate:"required,max=255"`
	Lines     []LineRequest `json:"lines" validate:"required,min=1,dive"`
}
