package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/shared"
)

// CustomerDirectory resolves the pricing view of a customer.
type CustomerDirectory interface {
	ClientRef(ctx context.Context, id int64) (pricing.ClientRef, error)
}

// Options carries the optional collaborators of the service.
type Options struct {
	Policy           pricing.TierPolicy
	DefaultSurcharge decimal.Decimal
	Notifier         documents.Notifier
	Logger           *slog.Logger
	Now              func() time.Time
}

type Service struct {
	repo      Repository
	catalog   shared.Catalog
	customers CustomerDirectory
	policy    pricing.TierPolicy
	surcharge decimal.Decimal
	notifier  documents.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, catalog shared.Catalog, customers CustomerDirectory, opts Options) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		customers: customers,
		policy:    opts.Policy,
		surcharge: opts.DefaultSurcharge,
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

// Preview prices a request without persisting anything.
func (s *Service) Preview(ctx context.Context, req CreateInvoiceRequest) (PreviewResponse, error) {
	draft, err := s.draft(ctx, req)
	if err != nil {
		return PreviewResponse{}, err
	}
	return PreviewResponse{Draft: draft, Messages: draft.Messages()}, nil
}

// Create prices, numbers and stores an invoice, then schedules its PDF.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	draft, err := s.draft(ctx, req)
	if err != nil {
		return nil, err
	}
	inv, err := s.Issue(ctx, draft.Document, IssueOptions{Notes: req.Notes})
	if err != nil {
		return nil, err
	}
	inv.Warnings = draft.Messages()
	return inv, nil
}

// IssueOptions are the non-priced attributes of an issued invoice.
type IssueOptions struct {
	Notes       *string
	QuotationID *int64
}

// Issue persists an already priced draft as it stands.
func (s *Service) Issue(ctx context.Context, doc pricing.DraftDocument, opts IssueOptions) (*Invoice, error) {
	lines := make([]InvoiceLine, 0, len(doc.Lines))
	for _, dl := range doc.Lines {
		if !dl.Quantity.IsPositive() {
			continue
		}
		lines = append(lines, newLine(len(lines)+1, dl, dl.Compute()))
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: invoice has no lines", httpx.ErrValidation)
	}
	totals := pricing.Totals(doc)

	issued := s.now()
	inv := Invoice{
		CustomerID:  doc.CustomerID,
		PriceTier:   doc.Tier,
		PaymentType: doc.PaymentType,
		CreditDays:  doc.CreditDays,
		IssueDate:   issued,
		Status:      InvoiceStatusIssued,
		Subtotal:    totals.SubTotal,
		Discount:    totals.TotalDiscount,
		Tax:         totals.TotalTax,
		Surcharge:   totals.Surcharge,
		Total:       totals.GrandTotal,
		Notes:       opts.Notes,
		QuotationID: opts.QuotationID,
	}
	if doc.PaymentType == pricing.PaymentCredit {
		due := issued.AddDate(0, 0, doc.CreditDays)
		inv.DueDate = &due
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("generate doc number: %w", err)
		}
		inv.DocNumber = number
		id, err := repo.Create(ctx, inv)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		inv.ID = id
		for i := range lines {
			lines[i].InvoiceID = id
			lineID, err := repo.InsertLine(ctx, lines[i])
			if err != nil {
				return fmt.Errorf("create invoice line %d: %w", i+1, err)
			}
			lines[i].ID = lineID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv.Lines = lines

	s.logger.Info("invoice issued",
		slog.Int64("id", inv.ID),
		slog.String("doc_number", inv.DocNumber),
		slog.String("total", pricing.FormatAmount(inv.Total)))
	s.notifier.DocumentCreated(ctx, documents.KindInvoice, inv.ID)
	return &inv, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, req)
}

// Void cancels an issued invoice that has no returns against it.
func (s *Service) Void(ctx context.Context, id int64, req VoidInvoiceRequest) (*Invoice, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.Status != InvoiceStatusIssued {
		return nil, fmt.Errorf("%w: invoice is %s", ErrInvalidState, inv.Status)
	}

	reason := req.Reason
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		status, err := repo.Lock(ctx, id)
		if err != nil {
			return err
		}
		if status != InvoiceStatusIssued {
			return fmt.Errorf("%w: invoice is %s", ErrInvalidState, status)
		}
		returned, err := repo.ReturnedQuantities(ctx, id)
		if err != nil {
			return fmt.Errorf("returned quantities: %w", err)
		}
		if len(returned) > 0 {
			return fmt.Errorf("%w: invoice has returns", ErrInvalidState)
		}
		return repo.UpdateStatus(ctx, id, InvoiceStatusVoid, &reason)
	})
	if err != nil {
		return nil, fmt.Errorf("void invoice: %w", err)
	}
	inv.Status = InvoiceStatusVoid
	inv.VoidReason = &reason
	return inv, nil
}

func (s *Service) draft(ctx context.Context, req CreateInvoiceRequest) (shared.Draft, error) {
	if err := httpx.Validate(req); err != nil {
		return shared.Draft{}, err
	}
	draftReq := shared.DraftRequest{
		Kind:      pricing.KindInvoice,
		Surcharge: s.surcharge,
		Lines:     req.Lines,
	}
	if req.Surcharge != nil {
		draftReq.Surcharge = req.Surcharge.Decimal
	}
	if req.CustomerID != nil {
		ref, err := s.customers.ClientRef(ctx, *req.CustomerID)
		if err != nil {
			return shared.Draft{}, fmt.Errorf("verify customer: %w", err)
		}
		draftReq.Client = &ref
	}
	return shared.BuildDraft(ctx, s.catalog, draftReq, s.policy)
}
