package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/procurement"
	"github.com/odyssey-erp/odyssey-pos/internal/returns"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/invoices"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/quotations"
)

// Document is the printable view shared by every document kind.
type Document struct {
	Kind           documents.Kind
	Title          string
	Number         string
	Date           time.Time
	DueDate        *time.Time
	PartyLabel     string
	Party          string
	PartyTaxID     string
	ReferenceLabel string
	Reference      string
	PaymentType    string
	Status         string
	ShowPrintedTax bool
	Lines          []LineView
	Totals         []TotalRow
	Notes          string
}

// LineView is one printed line.
type LineView struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	Tax         decimal.Decimal
	PrintedTax  decimal.Decimal
	Amount      decimal.Decimal
}

// TotalRow is a labelled amount in the totals block.
type TotalRow struct {
	Label  string
	Amount decimal.Decimal
	Grand  bool
}

// FileName is the name the stored PDF gets.
func (d Document) FileName() string {
	return fmt.Sprintf("%s-%s.pdf", d.Kind, d.Number)
}

func saleTotals(subtotal, discount, tax, surcharge, total decimal.Decimal) []TotalRow {
	rows := []TotalRow{
		{Label: "Subtotal", Amount: subtotal},
		{Label: "Descuento", Amount: discount},
		{Label: "ITBIS", Amount: tax},
	}
	if !surcharge.IsZero() {
		rows = append(rows, TotalRow{Label: "Cargo", Amount: surcharge})
	}
	return append(rows, TotalRow{Label: "Total", Amount: total, Grand: true})
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// InvoiceDocument builds the printable invoice.
func InvoiceDocument(inv *invoices.Invoice, customer string) Document {
	doc := Document{
		Kind:        documents.KindInvoice,
		Title:       "Factura",
		Number:      inv.DocNumber,
		Date:        inv.IssueDate,
		DueDate:     inv.DueDate,
		PartyLabel:  "Cliente",
		Party:       customer,
		PaymentType: string(inv.PaymentType),
		Status:      string(inv.Status),
		Totals:      saleTotals(inv.Subtotal, inv.Discount, inv.Tax, inv.Surcharge, inv.Total),
		Notes:       optional(inv.Notes),
	}
	for _, l := range inv.Lines {
		doc.Lines = append(doc.Lines, LineView{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			Tax:         l.Tax,
			Amount:      l.Amount,
		})
	}
	return doc
}

// QuotationDocument builds the printable quotation.
func QuotationDocument(q *quotations.Quotation, customer string) Document {
	valid := q.ValidUntil
	doc := Document{
		Kind:        documents.KindQuotation,
		Title:       "Cotización",
		Number:      q.DocNumber,
		Date:        q.QuoteDate,
		DueDate:     &valid,
		PartyLabel:  "Cliente",
		Party:       customer,
		PaymentType: string(q.PaymentType),
		Status:      string(q.Status),
		Totals:      saleTotals(q.Subtotal, q.Discount, q.Tax, q.Surcharge, q.Total),
		Notes:       optional(q.Notes),
	}
	for _, l := range q.Lines {
		doc.Lines = append(doc.Lines, LineView{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			Tax:         l.Tax,
			Amount:      l.Amount,
		})
	}
	return doc
}

// PurchaseDocument builds the printable purchase. Lines show the printed
// tax, which may differ from the ledger tax.
func PurchaseDocument(p procurement.Purchase, supplier procurement.Supplier) Document {
	doc := Document{
		Kind:           documents.KindPurchase,
		Title:          "Compra",
		Number:         p.Number,
		Date:           p.PurchaseDate,
		DueDate:        p.DueDate,
		PartyLabel:     "Suplidor",
		Party:          supplier.Name,
		PartyTaxID:     supplier.TaxID,
		ReferenceLabel: "NCF",
		Reference:      p.SupplierInvoice,
		PaymentType:    string(p.PaymentType),
		Status:         string(p.Status),
		ShowPrintedTax: true,
		Totals: []TotalRow{
			{Label: "Subtotal", Amount: p.Subtotal},
			{Label: "Descuento", Amount: p.Discount},
			{Label: "ITBIS", Amount: p.PrintedTax},
			{Label: "Total", Amount: p.Total, Grand: true},
			{Label: "Balance", Amount: p.Balance},
		},
	}
	for _, l := range p.Lines {
		doc.Lines = append(doc.Lines, LineView{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitCost,
			DiscountPct: l.DiscountPct,
			Tax:         l.Tax,
			PrintedTax:  l.PrintedTax,
			Amount:      l.Importe,
		})
	}
	return doc
}

// ReturnDocument builds the printable return against invoiceNumber.
func ReturnDocument(ret *returns.Return, invoiceNumber string) Document {
	doc := Document{
		Kind:           documents.KindReturn,
		Title:          "Devolución",
		Number:         ret.Number,
		Date:           ret.ReturnDate,
		ReferenceLabel: "Factura",
		Reference:      invoiceNumber,
		PaymentType:    "-",
		Status:         "REGISTERED",
		Totals: []TotalRow{
			{Label: "Descuento", Amount: ret.Discount},
			{Label: "ITBIS", Amount: ret.Tax},
			{Label: "Total", Amount: ret.Total, Grand: true},
		},
		Notes: ret.Reason,
	}
	for _, l := range ret.Lines {
		doc.Lines = append(doc.Lines, LineView{
			Description: l.Description,
			Quantity:    l.Quantity,
			Tax:         l.Tax,
			Amount:      l.Amount,
		})
	}
	return doc
}
