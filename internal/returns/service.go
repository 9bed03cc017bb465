package returns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/invoices"
)

// InvoiceSource exposes the invoices being returned against.
type InvoiceSource interface {
	Get(ctx context.Context, id int64) (*invoices.Invoice, error)
}

type Service struct {
	repo     Repository
	invoices InvoiceSource
	notifier documents.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, source InvoiceSource, notifier documents.Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = documents.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invoices: source, notifier: notifier, logger: logger, now: time.Now}
}

// Create registers a return against an issued invoice. Every line is
// pro-rated against the original invoice line. The return that brings a line
// to its full quantity takes whatever earlier returns left, so the partial
// returns of a line add up to the original amounts.
func (s *Service) Create(ctx context.Context, req CreateReturnRequest) (*Return, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	inv, err := s.invoices.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.Status != invoices.InvoiceStatusIssued {
		return nil, fmt.Errorf("%w: invoice is %s", ErrInvalidState, inv.Status)
	}

	byID := make(map[int64]invoices.InvoiceLine, len(inv.Lines))
	for _, l := range inv.Lines {
		byID[l.ID] = l
	}
	requested := make(map[int64]decimal.Decimal, len(req.Lines))
	order := make([]int64, 0, len(req.Lines))
	for i, in := range req.Lines {
		if _, ok := byID[in.InvoiceLineID]; !ok {
			return nil, fmt.Errorf("%w: line %d is not on invoice %s", ErrValidation, i+1, inv.DocNumber)
		}
		if !in.Quantity.Decimal.IsPositive() {
			return nil, fmt.Errorf("%w: line %d quantity must be greater than zero", ErrValidation, i+1)
		}
		if _, seen := requested[in.InvoiceLineID]; !seen {
			order = append(order, in.InvoiceLineID)
			requested[in.InvoiceLineID] = decimal.Zero
		}
		requested[in.InvoiceLineID] = requested[in.InvoiceLineID].Add(in.Quantity.Decimal)
	}

	ret := Return{
		InvoiceID:  inv.ID,
		Reason:     strings.TrimSpace(req.Reason),
		ReturnDate: s.now(),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		status, err := repo.LockInvoice(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("lock invoice: %w", err)
		}
		if status != invoices.InvoiceStatusIssued {
			return fmt.Errorf("%w: invoice is %s", ErrInvalidState, status)
		}
		returned, err := repo.Returned(ctx, inv.ID)
		if err != nil {
			return fmt.Errorf("returned quantities: %w", err)
		}

		lines := make([]ReturnLine, 0, len(order))
		computed := make([]pricing.ReturnLine, 0, len(order))
		for _, lineID := range order {
			original := byID[lineID]
			qty := requested[lineID]
			prior := returned[lineID]
			remaining := original.Quantity.Sub(prior.Quantity)
			if qty.GreaterThan(remaining) {
				return fmt.Errorf("%w: %s returns %s but only %s remain", ErrValidation,
					original.Description, qty.String(), remaining.String())
			}
			rl := pricing.ComputeClosingReturnLine(original.Priced(), prior.Quantity, prior.Totals, qty)
			computed = append(computed, rl)
			lines = append(lines, ReturnLine{
				InvoiceLineID: lineID,
				ProductID:     original.ProductID,
				Description:   original.Description,
				Quantity:      rl.Quantity,
				Ratio:         rl.Ratio,
				Discount:      rl.Discount,
				Tax:           rl.Tax,
				Amount:        rl.Amount,
			})
		}
		totals := pricing.AggregateReturn(computed)
		ret.Discount = totals.Discount
		ret.Tax = totals.Tax
		ret.Total = totals.Amount

		number, err := repo.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("generate return number: %w", err)
		}
		ret.Number = number
		id, err := repo.Create(ctx, ret)
		if err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		ret.ID = id
		for i := range lines {
			lines[i].ReturnID = id
			lineID, err := repo.InsertLine(ctx, lines[i])
			if err != nil {
				return fmt.Errorf("create return line %d: %w", i+1, err)
			}
			lines[i].ID = lineID
		}
		ret.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return registered",
		slog.Int64("id", ret.ID),
		slog.String("number", ret.Number),
		slog.String("invoice", inv.DocNumber),
		slog.String("total", pricing.FormatAmount(ret.Total)))
	s.notifier.DocumentCreated(ctx, documents.KindReturn, ret.ID)
	return &ret, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Return, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID int64) ([]Return, error) {
	if invoiceID <= 0 {
		return nil, fmt.Errorf("%w: invoice_id is required", ErrValidation)
	}
	return s.repo.ListByInvoice(ctx, invoiceID)
}
