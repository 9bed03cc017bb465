package report

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/procurement"
	"github.com/odyssey-erp/odyssey-pos/internal/returns"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/invoices"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/quotations"
)

type InvoiceLoader interface {
	Get(ctx context.Context, id int64) (*invoices.Invoice, error)
}

type QuotationLoader interface {
	Get(ctx context.Context, id int64) (*quotations.Quotation, error)
}

type PurchaseLoader interface {
	GetPurchase(ctx context.Context, id int64) (procurement.Purchase, error)
	GetSupplier(ctx context.Context, id int64) (procurement.Supplier, error)
}

type ReturnLoader interface {
	Get(ctx context.Context, id int64) (*returns.Return, error)
}

type CustomerLoader interface {
	Get(ctx context.Context, id int64) (*customers.Customer, error)
}

// Source loads any printable document by kind and id.
type Source struct {
	Invoices   InvoiceLoader
	Quotations QuotationLoader
	Purchases  PurchaseLoader
	Returns    ReturnLoader
	Customers  CustomerLoader
}

// Load fetches the document and builds its printable view.
func (s *Source) Load(ctx context.Context, kind documents.Kind, id int64) (Document, error) {
	switch kind {
	case documents.KindInvoice:
		if s.Invoices == nil {
			break
		}
		inv, err := s.Invoices.Get(ctx, id)
		if err != nil {
			return Document{}, err
		}
		return InvoiceDocument(inv, s.customerName(ctx, inv.CustomerID)), nil
	case documents.KindQuotation:
		if s.Quotations == nil {
			break
		}
		q, err := s.Quotations.Get(ctx, id)
		if err != nil {
			return Document{}, err
		}
		return QuotationDocument(q, s.customerName(ctx, q.CustomerID)), nil
	case documents.KindPurchase:
		if s.Purchases == nil {
			break
		}
		p, err := s.Purchases.GetPurchase(ctx, id)
		if err != nil {
			return Document{}, err
		}
		supplier, err := s.Purchases.GetSupplier(ctx, p.SupplierID)
		if err != nil {
			return Document{}, fmt.Errorf("get supplier: %w", err)
		}
		return PurchaseDocument(p, supplier), nil
	case documents.KindReturn:
		if s.Returns == nil || s.Invoices == nil {
			break
		}
		ret, err := s.Returns.Get(ctx, id)
		if err != nil {
			return Document{}, err
		}
		inv, err := s.Invoices.Get(ctx, ret.InvoiceID)
		if err != nil {
			return Document{}, fmt.Errorf("get returned invoice: %w", err)
		}
		return ReturnDocument(ret, inv.DocNumber), nil
	}
	return Document{}, fmt.Errorf("report: no source for %q documents", kind)
}

func (s *Source) customerName(ctx context.Context, id *int64) string {
	if id == nil || s.Customers == nil {
		return "Consumidor final"
	}
	c, err := s.Customers.Get(ctx, *id)
	if err != nil {
		return fmt.Sprintf("Cliente #%d", *id)
	}
	return c.Name
}
