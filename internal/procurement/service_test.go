package procurement

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

type memoryProcRepo struct {
	suppliers map[int64]Supplier
	purchases map[int64]Purchase
	payments  map[int64][]Payment
	nextID    int64
	seq       int64
}

type memoryProcTx struct {
	repo *memoryProcRepo
}

func newMemoryProcRepo() *memoryProcRepo {
	return &memoryProcRepo{
		suppliers: map[int64]Supplier{
			1: {ID: 1, Name: "Distribuidora Caribe", TaxID: "101000001", CreditDays: 30},
		},
		purchases: make(map[int64]Purchase),
		payments:  make(map[int64][]Payment),
		nextID:    100,
	}
}

func (r *memoryProcRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryProcTx{repo: r})
}

func (r *memoryProcRepo) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

func (r *memoryProcRepo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (r *memoryProcRepo) GetPurchase(ctx context.Context, id int64) (Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return Purchase{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryProcRepo) ListPayables(ctx context.Context) ([]Payable, error) {
	var out []Payable
	for _, p := range r.purchases {
		if p.Status != PurchaseStatusOpen || !p.Balance.IsPositive() {
			continue
		}
		out = append(out, Payable{PurchaseID: p.ID, Number: p.Number, SupplierID: p.SupplierID,
			DueDate: p.DueDate, Total: p.Total, Balance: p.Balance})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	return out, nil
}

func (tx *memoryProcTx) id() int64 {
	tx.repo.nextID++
	return tx.repo.nextID
}

func (tx *memoryProcTx) CreateSupplier(ctx context.Context, s Supplier) (int64, error) {
	s.ID = tx.id()
	tx.repo.suppliers[s.ID] = s
	return s.ID, nil
}

func (tx *memoryProcTx) NextNumber(ctx context.Context) (string, error) {
	tx.repo.seq++
	return "COM-" + decimal.NewFromInt(tx.repo.seq).String(), nil
}

func (tx *memoryProcTx) CreatePurchase(ctx context.Context, p Purchase) (int64, error) {
	p.ID = tx.id()
	tx.repo.purchases[p.ID] = p
	return p.ID, nil
}

func (tx *memoryProcTx) InsertLine(ctx context.Context, line PurchaseLine) (int64, error) {
	line.ID = tx.id()
	p := tx.repo.purchases[line.PurchaseID]
	p.Lines = append(p.Lines, line)
	tx.repo.purchases[line.PurchaseID] = p
	return line.ID, nil
}

func (tx *memoryProcTx) LockPurchase(ctx context.Context, id int64) (Purchase, error) {
	return tx.repo.GetPurchase(ctx, id)
}

func (tx *memoryProcTx) CountPayments(ctx context.Context, purchaseID int64) (int, error) {
	return len(tx.repo.payments[purchaseID]), nil
}

func (tx *memoryProcTx) CreatePayment(ctx context.Context, payment Payment) (int64, error) {
	payment.ID = tx.id()
	tx.repo.payments[payment.PurchaseID] = append(tx.repo.payments[payment.PurchaseID], payment)
	return payment.ID, nil
}

func (tx *memoryProcTx) UpdateSettlement(ctx context.Context, id int64, balance decimal.Decimal, status PurchaseStatus) error {
	p, ok := tx.repo.purchases[id]
	if !ok {
		return ErrNotFound
	}
	p.Balance = balance
	p.Status = status
	tx.repo.purchases[id] = p
	return nil
}

type recordingNotifier struct {
	kinds []documents.Kind
}

func (n *recordingNotifier) DocumentCreated(ctx context.Context, kind documents.Kind, id int64) {
	n.kinds = append(n.kinds, kind)
}

func amount(s string) pricing.Amount {
	return pricing.NewAmount(decimal.RequireFromString(s))
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got.String())
}

var purchaseDay = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *memoryProcRepo, notifier documents.Notifier) *Service {
	svc := NewService(repo, notifier, nil)
	svc.now = func() time.Time { return purchaseDay }
	return svc
}

func creditRequest() CreatePurchaseRequest {
	return CreatePurchaseRequest{
		SupplierID:      1,
		SupplierInvoice: "B0100000001",
		TaxIncluded:     true,
		PaymentType:     pricing.PaymentCredit,
		Lines: []PurchaseLineRequest{
			{ProductID: 7, Description: "Arroz 5 lb", Quantity: amount("10"), UnitCost: amount("118"), TaxPct: amount("18")},
		},
	}
}

func TestCreatePurchaseTaxIncluded(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(newMemoryProcRepo(), notifier)

	p, err := svc.CreatePurchase(context.Background(), creditRequest())
	require.NoError(t, err)

	requireDecimal(t, "1000", p.Subtotal)
	requireDecimal(t, "180", p.Tax)
	requireDecimal(t, "180", p.PrintedTax)
	requireDecimal(t, "1180", p.Total)
	requireDecimal(t, "1180", p.Balance)
	assert.Equal(t, PurchaseStatusOpen, p.Status)
	require.NotNil(t, p.DueDate)
	assert.Equal(t, purchaseDay.AddDate(0, 0, 30), *p.DueDate)
	require.Len(t, p.Lines, 1)
	requireDecimal(t, "100", p.Lines[0].UnitCostNet)
	assert.Equal(t, "COM-1", p.Number)
	assert.Equal(t, []documents.Kind{documents.KindPurchase}, notifier.kinds)
}

func TestCreatePurchaseTaxAddedCash(t *testing.T) {
	svc := newTestService(newMemoryProcRepo(), nil)
	req := creditRequest()
	req.TaxIncluded = false
	req.PaymentType = pricing.PaymentCash
	req.Lines = []PurchaseLineRequest{
		{Description: "Aceite 1 gl", Quantity: amount("2"), UnitCost: amount("100"), DiscountPct: amount("10"), TaxPct: amount("18")},
	}

	p, err := svc.CreatePurchase(context.Background(), req)
	require.NoError(t, err)
	requireDecimal(t, "180", p.Subtotal)
	requireDecimal(t, "20", p.Discount)
	requireDecimal(t, "32.4", p.Tax)
	requireDecimal(t, "212.4", p.Total)
	requireDecimal(t, "0", p.Balance)
	assert.Equal(t, PurchaseStatusPaid, p.Status)
	assert.Nil(t, p.DueDate)
}

func TestCreatePurchaseValidation(t *testing.T) {
	svc := newTestService(newMemoryProcRepo(), nil)
	ctx := context.Background()

	req := creditRequest()
	req.Lines[0].Quantity = amount("0")
	_, err := svc.CreatePurchase(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	req = creditRequest()
	req.Lines[0].DiscountPct = amount("120")
	_, err = svc.CreatePurchase(ctx, req)
	require.ErrorIs(t, err, ErrValidation)

	req = creditRequest()
	req.SupplierID = 99
	_, err = svc.CreatePurchase(ctx, req)
	require.ErrorIs(t, err, ErrNotFound)

	req = creditRequest()
	req.Lines = nil
	_, err = svc.CreatePurchase(ctx, req)
	require.Error(t, err)
}

func TestRecordPaymentSettlesBalance(t *testing.T) {
	repo := newMemoryProcRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	p, err := svc.CreatePurchase(ctx, creditRequest())
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, p.ID, PaymentRequest{Amount: amount("0")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordPayment(ctx, p.ID, PaymentRequest{Amount: amount("1180.01")})
	require.ErrorIs(t, err, ErrValidation)

	updated, err := svc.RecordPayment(ctx, p.ID, PaymentRequest{Amount: amount("500"), Reference: "CK-1001"})
	require.NoError(t, err)
	requireDecimal(t, "680", updated.Balance)
	assert.Equal(t, PurchaseStatusOpen, updated.Status)

	updated, err = svc.RecordPayment(ctx, p.ID, PaymentRequest{Amount: amount("680")})
	require.NoError(t, err)
	requireDecimal(t, "0", updated.Balance)
	assert.Equal(t, PurchaseStatusPaid, updated.Status)
	assert.Len(t, repo.payments[p.ID], 2)

	_, err = svc.RecordPayment(ctx, p.ID, PaymentRequest{Amount: amount("1")})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestVoidRequiresNoPayments(t *testing.T) {
	svc := newTestService(newMemoryProcRepo(), nil)
	ctx := context.Background()

	paid, err := svc.CreatePurchase(ctx, creditRequest())
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, paid.ID, PaymentRequest{Amount: amount("100")})
	require.NoError(t, err)
	_, err = svc.Void(ctx, paid.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	fresh, err := svc.CreatePurchase(ctx, creditRequest())
	require.NoError(t, err)
	voided, err := svc.Void(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, PurchaseStatusVoid, voided.Status)
	requireDecimal(t, "0", voided.Balance)

	_, err = svc.Void(ctx, fresh.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestListPayablesOldestFirst(t *testing.T) {
	svc := newTestService(newMemoryProcRepo(), nil)
	ctx := context.Background()

	late := creditRequest()
	lateDue := purchaseDay.AddDate(0, 2, 0)
	late.DueDate = &lateDue
	_, err := svc.CreatePurchase(ctx, late)
	require.NoError(t, err)

	early := creditRequest()
	earlyDue := purchaseDay.AddDate(0, 0, 5)
	early.DueDate = &earlyDue
	_, err = svc.CreatePurchase(ctx, early)
	require.NoError(t, err)

	cash := creditRequest()
	cash.PaymentType = pricing.PaymentCash
	_, err = svc.CreatePurchase(ctx, cash)
	require.NoError(t, err)

	payables, err := svc.ListPayables(ctx)
	require.NoError(t, err)
	require.Len(t, payables, 2)
	assert.Equal(t, earlyDue, *payables[0].DueDate)
	assert.Equal(t, lateDue, *payables[1].DueDate)
}

func TestCreateSupplier(t *testing.T) {
	svc := newTestService(newMemoryProcRepo(), nil)
	s, err := svc.CreateSupplier(context.Background(), CreateSupplierRequest{Name: "  Ferreteria Norte ", CreditDays: 15})
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, "Ferreteria Norte", s.Name)

	_, err = svc.CreateSupplier(context.Background(), CreateSupplierRequest{})
	require.Error(t, err)
}
