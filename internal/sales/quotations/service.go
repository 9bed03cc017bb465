package quotations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/invoices"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/shared"
)

// DefaultValidDays applies when a request does not say how long the quote holds.
const DefaultValidDays = 15

// InvoiceIssuer turns a priced draft into an invoice.
type InvoiceIssuer interface {
	Issue(ctx context.Context, doc pricing.DraftDocument, opts invoices.IssueOptions) (*invoices.Invoice, error)
}

type Service struct {
	repo      Repository
	catalog   shared.Catalog
	customers invoices.CustomerDirectory
	issuer    InvoiceIssuer
	policy    pricing.TierPolicy
	notifier  documents.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, catalog shared.Catalog, customers invoices.CustomerDirectory, issuer InvoiceIssuer, opts invoices.Options) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		customers: customers,
		issuer:    issuer,
		policy:    opts.Policy,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.policy == nil {
		s.policy = pricing.DefaultTierPolicy
	}
	if s.notifier == nil {
		s.notifier = documents.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Create(ctx context.Context, req CreateQuotationRequest) (*Quotation, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	draftReq := shared.DraftRequest{Kind: pricing.KindQuotation, Lines: req.Lines}
	if req.Surcharge != nil {
		draftReq.Surcharge = req.Surcharge.Decimal
	}
	if req.CustomerID != nil {
		ref, err := s.customers.ClientRef(ctx, *req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("verify customer: %w", err)
		}
		draftReq.Client = &ref
	}
	draft, err := shared.BuildDraft(ctx, s.catalog, draftReq, s.policy)
	if err != nil {
		return nil, err
	}

	days := req.ValidDays
	if days == 0 {
		days = DefaultValidDays
	}
	quoted := s.now()
	doc := draft.Document
	quotation := Quotation{
		CustomerID:  doc.CustomerID,
		PriceTier:   doc.Tier,
		PaymentType: doc.PaymentType,
		CreditDays:  doc.CreditDays,
		QuoteDate:   quoted,
		ValidUntil:  quoted.AddDate(0, 0, days),
		Status:      QuotationStatusOpen,
		Subtotal:    draft.Totals.SubTotal,
		Discount:    draft.Totals.TotalDiscount,
		Tax:         draft.Totals.TotalTax,
		Surcharge:   draft.Totals.Surcharge,
		Total:       draft.Totals.GrandTotal,
		Notes:       req.Notes,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("generate doc number: %w", err)
		}
		quotation.DocNumber = number
		id, err := repo.Create(ctx, quotation)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		quotation.ID = id

		for i, dl := range doc.Lines {
			computed := draft.Lines[i]
			line := QuotationLine{
				QuotationID:    id,
				LineOrder:      i + 1,
				ProductID:      dl.ProductID,
				PresentationID: dl.PresentationID,
				Description:    dl.Description,
				Quantity:       computed.Quantity,
				UnitPrice:      computed.UnitPrice,
				DiscountPct:    computed.DiscountPct,
				TaxRate:        computed.TaxRate,
				Discount:       computed.Discount,
				Tax:            computed.Tax,
				Amount:         computed.Net,
			}
			lineID, err := repo.InsertLine(ctx, line)
			if err != nil {
				return fmt.Errorf("insert quotation line: %w", err)
			}
			line.ID = lineID
			quotation.Lines = append(quotation.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	quotation.Warnings = draft.Messages()
	s.notifier.DocumentCreated(ctx, documents.KindQuotation, quotation.ID)
	return &quotation, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Cancel(ctx context.Context, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if q.Status != QuotationStatusOpen {
		return nil, fmt.Errorf("%w: only OPEN quotations can be cancelled", ErrInvalidStatus)
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Transition(ctx, id, QuotationStatusOpen, QuotationStatusCancelled, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel quotation: %w", err)
	}
	q.Status = QuotationStatusCancelled
	return q, nil
}

// Convert issues an invoice with the quoted lines at the quoted prices.
// The customer's current credit terms apply.
func (s *Service) Convert(ctx context.Context, id int64) (*invoices.Invoice, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if q.Status != QuotationStatusOpen {
		return nil, fmt.Errorf("%w: only OPEN quotations can be converted", ErrInvalidStatus)
	}
	if q.Expired(s.now()) {
		return nil, fmt.Errorf("%w: quotation expired on %s", ErrInvalidStatus, q.ValidUntil.Format(time.DateOnly))
	}

	doc := q.Draft()
	if q.CustomerID != nil {
		ref, err := s.customers.ClientRef(ctx, *q.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("verify customer: %w", err)
		}
		doc = pricing.SelectClient(doc, ref)
	}

	// Claim the quotation before issuing so only one convert can win.
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Transition(ctx, id, QuotationStatusOpen, QuotationStatusConverted, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("claim quotation: %w", err)
	}

	quotationID := q.ID
	inv, err := s.issuer.Issue(ctx, doc, invoices.IssueOptions{Notes: q.Notes, QuotationID: &quotationID})
	if err != nil {
		rerr := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
			return repo.Transition(ctx, id, QuotationStatusConverted, QuotationStatusOpen, nil)
		})
		if rerr != nil {
			s.logger.Error("release quotation",
				slog.Int64("quotation_id", id),
				slog.Any("error", rerr))
		}
		return nil, fmt.Errorf("issue invoice: %w", err)
	}

	invoiceID := inv.ID
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Transition(ctx, id, QuotationStatusConverted, QuotationStatusConverted, &invoiceID)
	})
	if err != nil {
		s.logger.Error("link quotation invoice",
			slog.Int64("quotation_id", id),
			slog.Int64("invoice_id", invoiceID),
			slog.Any("error", err))
		return nil, fmt.Errorf("link quotation invoice: %w", err)
	}
	return inv, nil
}
