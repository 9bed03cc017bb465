package procurement

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
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetPurchase(ctx context.Context, id int64) (Purchase, error)
	ListPayables(ctx context.Context) ([]Payable, error)
}

// Service orchestrates purchases and accounts payable.
type Service struct {
	repo     RepositoryPort
	notifier documents.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs procurement service. notifier and logger may be nil.
func NewService(repo RepositoryPort, notifier documents.Notifier, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = documents.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// CreateSupplier registers a supplier.
func (s *Service) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (Supplier, error) {
	if err := httpx.Validate(req); err != nil {
		return Supplier{}, err
	}
	supplier := Supplier{Name: strings.TrimSpace(req.Name), TaxID: strings.TrimSpace(req.TaxID), CreditDays: req.CreditDays}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateSupplier(ctx, supplier)
		if err != nil {
			return fmt.Errorf("create supplier: %w", err)
		}
		supplier.ID = id
		return nil
	})
	if err != nil {
		return Supplier{}, err
	}
	supplier.CreatedAt = s.now()
	return supplier, nil
}

// GetSupplier fetches one supplier.
func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// ListSuppliers returns every supplier.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// CreatePurchase computes and stores a supplier invoice. CREDIT purchases
// open a payable for the full total; CASH purchases are settled at once.
func (s *Service) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (Purchase, error) {
	if err := httpx.Validate(req); err != nil {
		return Purchase{}, err
	}
	supplier, err := s.repo.GetSupplier(ctx, req.SupplierID)
	if err != nil {
		return Purchase{}, fmt.Errorf("get supplier: %w", err)
	}

	lines := make([]PurchaseLine, 0, len(req.Lines))
	computed := make([]pricing.PurchaseLine, 0, len(req.Lines))
	for i, in := range req.Lines {
		if err := validateLine(in); err != nil {
			return Purchase{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		pl := pricing.ComputePurchaseLine(in.Quantity.Decimal, in.UnitCost.Decimal, in.DiscountPct.Decimal,
			pricing.RateFromPercent(in.TaxPct.Decimal), req.TaxIncluded)
		if diff := pl.TaxDiscrepancy(); !diff.IsZero() {
			s.logger.Warn("purchase printed tax differs from ledger tax",
				slog.Int64("supplier_id", supplier.ID),
				slog.String("supplier_invoice", req.SupplierInvoice),
				slog.Int("line", i+1),
				slog.String("printed_tax", pl.PrintedTax.String()),
				slog.String("tax", pl.Tax.String()))
		}
		computed = append(computed, pl)
		lines = append(lines, newLine(i+1, in.ProductID, strings.TrimSpace(in.Description), pl))
	}
	totals := pricing.AggregatePurchase(computed)

	purchased := s.now()
	if req.PurchaseDate != nil {
		purchased = *req.PurchaseDate
	}
	p := Purchase{
		SupplierID:      supplier.ID,
		SupplierInvoice: strings.TrimSpace(req.SupplierInvoice),
		TaxIncluded:     req.TaxIncluded,
		PaymentType:     req.PaymentType,
		PurchaseDate:    purchased,
		Subtotal:        totals.SubTotal,
		Discount:        totals.Discount,
		Tax:             totals.Tax,
		PrintedTax:      totals.PrintedTax,
		Total:           totals.Total,
		Balance:         decimal.Zero,
		Status:          PurchaseStatusPaid,
	}
	if req.PaymentType == pricing.PaymentCredit {
		due := purchased.AddDate(0, 0, supplier.CreditDays)
		if req.DueDate != nil {
			due = *req.DueDate
		}
		p.DueDate = &due
		p.Balance = totals.Total
		p.Status = PurchaseStatusOpen
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := tx.NextNumber(ctx)
		if err != nil {
			return fmt.Errorf("generate purchase number: %w", err)
		}
		p.Number = number
		id, err := tx.CreatePurchase(ctx, p)
		if err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		p.ID = id
		for i := range lines {
			lines[i].PurchaseID = id
			lineID, err := tx.InsertLine(ctx, lines[i])
			if err != nil {
				return fmt.Errorf("create purchase line %d: %w", i+1, err)
			}
			lines[i].ID = lineID
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	p.Lines = lines

	s.logger.Info("purchase registered",
		slog.Int64("id", p.ID),
		slog.String("number", p.Number),
		slog.String("payment_type", string(p.PaymentType)),
		slog.String("total", pricing.FormatAmount(p.Total)))
	s.notifier.DocumentCreated(ctx, documents.KindPurchase, p.ID)
	return p, nil
}

func validateLine(in PurchaseLineRequest) error {
	switch {
	case !in.Quantity.Decimal.IsPositive():
		return fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	case in.UnitCost.Decimal.IsNegative():
		return fmt.Errorf("%w: unit cost cannot be negative", ErrValidation)
	case !percent(in.DiscountPct.Decimal):
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	case !percent(in.TaxPct.Decimal):
		return fmt.Errorf("%w: tax must be between 0 and 100", ErrValidation)
	}
	return nil
}

func percent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

// GetPurchase fetches a purchase with its lines.
func (s *Service) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.GetPurchase(ctx, id)
}

// ListPayables returns outstanding balances, oldest due first.
func (s *Service) ListPayables(ctx context.Context) ([]Payable, error) {
	return s.repo.ListPayables(ctx)
}

// RecordPayment applies a payment to an open purchase. The amount may not
// exceed the balance rounded to cents; the purchase is PAID once nothing
// remains.
func (s *Service) RecordPayment(ctx context.Context, purchaseID int64, req PaymentRequest) (Purchase, error) {
	if err := httpx.Validate(req); err != nil {
		return Purchase{}, err
	}
	amount := req.Amount.Decimal
	if !amount.IsPositive() {
		return Purchase{}, fmt.Errorf("%w: payment amount must be greater than zero", ErrValidation)
	}

	var updated Purchase
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.LockPurchase(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p.Status != PurchaseStatusOpen {
			return fmt.Errorf("%w: purchase is %s", ErrInvalidState, p.Status)
		}
		due := pricing.Round2(p.Balance)
		if amount.GreaterThan(due) {
			return fmt.Errorf("%w: payment %s exceeds balance %s", ErrValidation,
				pricing.FormatAmount(amount), pricing.FormatAmount(due))
		}
		if _, err := tx.CreatePayment(ctx, Payment{PurchaseID: purchaseID, Amount: amount,
			Reference: strings.TrimSpace(req.Reference), PaidAt: s.now()}); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		p.Balance = p.Balance.Sub(amount)
		if amount.Equal(due) || !p.Balance.IsPositive() {
			p.Balance = decimal.Zero
			p.Status = PurchaseStatusPaid
		}
		if err := tx.UpdateSettlement(ctx, purchaseID, p.Balance, p.Status); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	s.logger.Info("purchase payment recorded",
		slog.Int64("purchase_id", purchaseID),
		slog.String("amount", pricing.FormatAmount(amount)),
		slog.String("balance", pricing.FormatAmount(updated.Balance)))
	return updated, nil
}

// Void cancels a purchase that has no payments recorded.
func (s *Service) Void(ctx context.Context, purchaseID int64) (Purchase, error) {
	var voided Purchase
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.LockPurchase(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p.Status == PurchaseStatusVoid {
			return fmt.Errorf("%w: purchase already void", ErrInvalidState)
		}
		n, err := tx.CountPayments(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("count payments: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: purchase has payments", ErrInvalidState)
		}
		p.Balance = decimal.Zero
		p.Status = PurchaseStatusVoid
		if err := tx.UpdateSettlement(ctx, purchaseID, p.Balance, p.Status); err != nil {
			return fmt.Errorf("void purchase: %w", err)
		}
		voided = p
		return nil
	})
	return voided, err
}
