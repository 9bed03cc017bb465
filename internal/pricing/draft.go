package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DocumentKind names the document a draft will become.
type DocumentKind string

const (
	KindInvoice   DocumentKind = "INVOICE"
	KindQuotation DocumentKind = "QUOTATION"
)

// ClientRef is the slice of a client record pricing cares about.
type ClientRef struct {
	ID     int64       `json:"id"`
	Tier   Tier        `json:"tier"`
	Credit CreditTerms `json:"credit"`
}

// DraftLine is an editable document line. Derived amounts are never stored
// here; they are recomputed from these inputs.
type DraftLine struct {
	ProductID      int64           `json:"product_id"`
	PresentationID int64           `json:"presentation_id"`
	Description    string          `json:"description"`
	Tier           Tier            `json:"tier"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	MaxDiscountPct decimal.Decimal `json:"max_discount_pct"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
}

// Compute derives the line amounts.
func (l DraftLine) Compute() Line {
	return ComputeLine(l.Quantity, l.UnitPrice, l.DiscountPct, l.TaxRate)
}

// DraftDocument is a serializable document under edition. Functions in
// this file never modify their input draft; they return an updated copy.
type DraftDocument struct {
	Kind        DocumentKind    `json:"kind"`
	CustomerID  *int64          `json:"customer_id,omitempty"`
	Tier        Tier            `json:"tier"`
	PaymentType PaymentType     `json:"payment_type"`
	CreditDays  int             `json:"credit_days"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Lines       []DraftLine     `json:"lines"`
}

// DiscountNotice reports whether a requested discount was truncated.
type DiscountNotice struct {
	Line      int             `json:"line"`
	Requested decimal.Decimal `json:"requested"`
	Applied   decimal.Decimal `json:"applied"`
	Capped    bool            `json:"capped"`
}

// Message renders the notice for end users.
func (n DiscountNotice) Message() string {
	if !n.Capped {
		return ""
	}
	return fmt.Sprintf("line %d: discount %s%% exceeds the maximum, applied %s%%",
		n.Line+1, n.Requested.String(), n.Applied.String())
}

// NewDraft starts an empty cash document at tier one.
func NewDraft(kind DocumentKind) DraftDocument {
	return DraftDocument{
		Kind:        kind,
		Tier:        TierOne,
		PaymentType: PaymentCash,
		Surcharge:   decimal.Zero,
	}
}

// CreditTermsFor picks the payment mode a client's terms imply.
func CreditTermsFor(terms CreditTerms) (PaymentType, int) {
	if terms.Authorized {
		days := terms.Days
		if days < 0 {
			days = 0
		}
		return PaymentCredit, days
	}
	return PaymentCash, 0
}

func (d DraftDocument) clone() DraftDocument {
	out := d
	out.Lines = append([]DraftLine(nil), d.Lines...)
	if d.CustomerID != nil {
		id := *d.CustomerID
		out.CustomerID = &id
	}
	return out
}

// SelectClient assigns the client, its price tier and its payment terms.
// Lines already on the draft keep their prices.
func SelectClient(doc DraftDocument, client ClientRef) DraftDocument {
	out := doc.clone()
	id := client.ID
	out.CustomerID = &id
	out.Tier = client.Tier.Normalize()
	out.PaymentType, out.CreditDays = CreditTermsFor(client.Credit)
	return out
}

// ClearClient returns the draft to an anonymous cash sale.
func ClearClient(doc DraftDocument) DraftDocument {
	out := doc.clone()
	out.CustomerID = nil
	out.Tier = TierOne
	out.PaymentType = PaymentCash
	out.CreditDays = 0
	return out
}

// AddItem appends a catalog item priced at the draft tier.
func AddItem(doc DraftDocument, item CatalogItem, quantity decimal.Decimal, policy TierPolicy) (DraftDocument, error) {
	if !quantity.IsPositive() {
		return doc, ErrNonPositiveQuantity
	}
	if policy == nil {
		policy = DefaultTierPolicy
	}
	price := policy.PriceFor(item.Presentation, doc.Tier)
	out := doc.clone()
	out.Lines = append(out.Lines, DraftLine{
		ProductID:      item.ProductID,
		PresentationID: item.PresentationID,
		Description:    item.Description,
		Tier:           price.Tier,
		Quantity:       quantity,
		UnitPrice:      price.UnitPrice,
		DiscountPct:    decimal.Zero,
		MaxDiscountPct: price.MaxDiscountPct,
		TaxRate:        item.Presentation.TaxRate(),
	})
	return out, nil
}

// SetQuantity replaces the quantity of line i. Negative values become zero.
func SetQuantity(doc DraftDocument, i int, quantity decimal.Decimal) (DraftDocument, error) {
	if i < 0 || i >= len(doc.Lines) {
		return doc, ErrLineIndex
	}
	out := doc.clone()
	out.Lines[i].Quantity = nonNegative(quantity)
	return out, nil
}

// SetUnitPrice replaces the tax-inclusive unit price of line i.
func SetUnitPrice(doc DraftDocument, i int, price decimal.Decimal) (DraftDocument, error) {
	if i < 0 || i >= len(doc.Lines) {
		return doc, ErrLineIndex
	}
	out := doc.clone()
	out.Lines[i].UnitPrice = nonNegative(price)
	return out, nil
}

// ApplyDiscount sets the discount of line i, truncating it to the line's
// maximum. The notice tells whether truncation happened.
func ApplyDiscount(doc DraftDocument, i int, pct decimal.Decimal) (DraftDocument, DiscountNotice, error) {
	if i < 0 || i >= len(doc.Lines) {
		return doc, DiscountNotice{}, ErrLineIndex
	}
	applied, capped := ClampDiscount(pct, doc.Lines[i].MaxDiscountPct)
	out := doc.clone()
	out.Lines[i].DiscountPct = applied
	return out, DiscountNotice{Line: i, Requested: pct, Applied: applied, Capped: capped}, nil
}

// ClampDiscount bounds pct to [0, max]. capped is true when pct was above max.
func ClampDiscount(pct, max decimal.Decimal) (decimal.Decimal, bool) {
	max = decimal.Min(nonNegative(max), hundred)
	if pct.IsNegative() {
		return decimal.Zero, false
	}
	if pct.GreaterThan(max) {
		return max, true
	}
	return pct, false
}

// RemoveLine drops line i.
func RemoveLine(doc DraftDocument, i int) (DraftDocument, error) {
	if i < 0 || i >= len(doc.Lines) {
		return doc, ErrLineIndex
	}
	out := doc.clone()
	out.Lines = append(out.Lines[:i], out.Lines[i+1:]...)
	return out, nil
}

// SetSurcharge sets the document level surcharge.
func SetSurcharge(doc DraftDocument, surcharge decimal.Decimal) DraftDocument {
	out := doc.clone()
	out.Surcharge = nonNegative(surcharge)
	return out
}

// Lines computes every active line of the draft, in document order.
// Lines with zero quantity are skipped.
func Lines(doc DraftDocument) []Line {
	lines := make([]Line, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		if !l.Quantity.IsPositive() {
			continue
		}
		lines = append(lines, l.Compute())
	}
	return lines
}

// Totals recomputes the document totals from scratch.
func Totals(doc DraftDocument) DocumentTotals {
	return Aggregate(Lines(doc), doc.Surcharge)
}
