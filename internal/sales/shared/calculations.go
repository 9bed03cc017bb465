// Package shared holds the draft builder used by invoices and quotations.
package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// Catalog resolves presentations for pricing.
type Catalog interface {
	CatalogItem(ctx context.Context, presentationID int64) (pricing.CatalogItem, error)
}

// LineRequest is one requested document line.
type LineRequest struct {
	PresentationID int64           `json:"presentation_id" validate:"required,gt=0"`
	Quantity       pricing.Amount  `json:"quantity"`
	UnitPrice      *pricing.Amount `json:"unit_price,omitempty"`
	DiscountPct    pricing.Amount  `json:"discount_pct"`
}

// DraftRequest describes a document to price.
type DraftRequest struct {
	Kind      pricing.DocumentKind
	Client    *pricing.ClientRef
	Surcharge decimal.Decimal
	Lines     []LineRequest
}

// Draft is a priced draft with the discount truncations applied on the way.
type Draft struct {
	Document pricing.DraftDocument    `json:"document"`
	Lines    []pricing.Line           `json:"lines"`
	Totals   pricing.DocumentTotals   `json:"totals"`
	Notices  []pricing.DiscountNotice `json:"notices,omitempty"`
}

// Messages returns the user-facing text of every capped discount.
func (d Draft) Messages() []string {
	var out []string
	for _, n := range d.Notices {
		if msg := n.Message(); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// BuildDraft prices a document request line by line through the pricing
// engine. A unit price override replaces the tier price; the discount is
// truncated to the line cap and reported in Notices.
func BuildDraft(ctx context.Context, catalog Catalog, req DraftRequest, policy pricing.TierPolicy) (Draft, error) {
	if len(req.Lines) == 0 {
		return Draft{}, fmt.Errorf("%w: document has no lines", httpx.ErrValidation)
	}
	doc := pricing.NewDraft(req.Kind)
	if req.Client != nil {
		doc = pricing.SelectClient(doc, *req.Client)
	}

	var notices []pricing.DiscountNotice
	for i, line := range req.Lines {
		item, err := catalog.CatalogItem(ctx, line.PresentationID)
		if err != nil {
			return Draft{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		doc, err = pricing.AddItem(doc, item, line.Quantity.Decimal, policy)
		if err != nil {
			if errors.Is(err, pricing.ErrNonPositiveQuantity) {
				return Draft{}, fmt.Errorf("%w: line %d: %v", httpx.ErrValidation, i+1, err)
			}
			return Draft{}, err
		}
		idx := len(doc.Lines) - 1
		if line.UnitPrice != nil {
			if doc, err = pricing.SetUnitPrice(doc, idx, line.UnitPrice.Decimal); err != nil {
				return Draft{}, err
			}
		}
		if !line.DiscountPct.IsZero() {
			var notice pricing.DiscountNotice
			doc, notice, err = pricing.ApplyDiscount(doc, idx, line.DiscountPct.Decimal)
			if err != nil {
				return Draft{}, err
			}
			if notice.Capped {
				notices = append(notices, notice)
			}
		}
	}
	doc = pricing.SetSurcharge(doc, req.Surcharge)

	return Draft{
		Document: doc,
		Lines:    pricing.Lines(doc),
		Totals:   pricing.Totals(doc),
		Notices:  notices,
	}, nil
}
