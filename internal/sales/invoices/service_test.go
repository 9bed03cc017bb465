package invoices

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	invoices   map[int64]*Invoice
	lines      map[int64][]InvoiceLine
	returned   map[int64]map[int64]decimal.Decimal
	nextID     int64
	nextLineID int64
	counter    int
	txError    error
	locks      int
	onLock     func(id int64)
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		invoices:   make(map[int64]*Invoice),
		lines:      make(map[int64][]InvoiceLine),
		returned:   make(map[int64]map[int64]decimal.Decimal),
		nextID:     1,
		nextLineID: 1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *inv
	out.Lines = append([]InvoiceLine(nil), m.lines[id]...)
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		out = append(out, *inv)
	}
	return out, len(out), nil
}

func (m *mockRepository) Lock(ctx context.Context, id int64) (InvoiceStatus, error) {
	if m.onLock != nil {
		m.onLock(id)
	}
	inv, ok := m.invoices[id]
	if !ok {
		return "", ErrNotFound
	}
	m.locks++
	return inv.Status, nil
}

func (m *mockRepository) ReturnedQuantities(ctx context.Context, invoiceID int64) (map[int64]decimal.Decimal, error) {
	return m.returned[invoiceID], nil
}

func (m *mockRepository) NextNumber(ctx context.Context) (string, error) {
	m.counter++
	return fmt.Sprintf("FAC-%06d", m.counter), nil
}

func (m *mockRepository) Create(ctx context.Context, invoice Invoice) (int64, error) {
	invoice.ID = m.nextID
	m.nextID++
	m.invoices[invoice.ID] = &invoice
	return invoice.ID, nil
}

func (m *mockRepository) InsertLine(ctx context.Context, line InvoiceLine) (int64, error) {
	line.ID = m.nextLineID
	m.nextLineID++
	m.lines[line.InvoiceID] = append(m.lines[line.InvoiceID], line)
	return line.ID, nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status InvoiceStatus, reason *string) error {
	inv, ok := m.invoices[id]
	if !ok {
		return ErrNotFound
	}
	inv.Status = status
	inv.VoidReason = reason
	return nil
}

// ============================================================================
// STUB DEPENDENCIES
// ============================================================================

type stubCatalog map[int64]pricing.CatalogItem

func (s stubCatalog) CatalogItem(ctx context.Context, id int64) (pricing.CatalogItem, error) {
	item, ok := s[id]
	if !ok {
		return pricing.CatalogItem{}, httpx.ErrNotFound
	}
	return item, nil
}

type stubCustomers map[int64]pricing.ClientRef

func (s stubCustomers) ClientRef(ctx context.Context, id int64) (pricing.ClientRef, error) {
	ref, ok := s[id]
	if !ok {
		return pricing.ClientRef{}, httpx.ErrNotFound
	}
	return ref, nil
}

type recordingNotifier struct {
	kinds []documents.Kind
	ids   []int64
}

func (r *recordingNotifier) DocumentCreated(ctx context.Context, kind documents.Kind, id int64) {
	r.kinds = append(r.kinds, kind)
	r.ids = append(r.ids, id)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func amt(s string) pricing.Amount { return pricing.NewAmount(dec(s)) }

var testCatalog = stubCatalog{
	1: {ProductID: 1, PresentationID: 1, Code: "LEC", Description: "Leche 1 L", Presentation: pricing.Presentation{
		Price1: dec("118"), Price2: dec("112"), DiscountPct: dec("10"), TaxPct: dec("18"),
	}},
	2: {ProductID: 2, PresentationID: 2, Code: "HUE", Description: "Huevos 30", Presentation: pricing.Presentation{
		Price1: dec("300"),
	}},
}

var testCustomers = stubCustomers{
	10: {ID: 10, Tier: pricing.TierOne},
	20: {ID: 20, Tier: pricing.TierTwo, Credit: pricing.CreditTerms{Authorized: true, Days: 30}},
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepository, notifier documents.Notifier) *Service {
	return NewService(repo, testCatalog, testCustomers, Options{
		Notifier: notifier,
		Now:      func() time.Time { return fixedNow },
	})
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateCashInvoice(t *testing.T) {
	repo := newMockRepository()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: int64Ptr(10),
		Lines: []shared.LineRequest{
			{PresentationID: 1, Quantity: amt("2")},
			{PresentationID: 2, Quantity: amt("1")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "FAC-000001", inv.DocNumber)
	assert.Equal(t, InvoiceStatusIssued, inv.Status)
	assert.Equal(t, pricing.PaymentCash, inv.PaymentType)
	assert.Nil(t, inv.DueDate)
	assert.True(t, inv.Total.Equal(dec("536")), inv.Total.String())
	assert.True(t, inv.Tax.Equal(dec("36")), inv.Tax.String())
	assert.True(t, inv.Subtotal.Equal(dec("500")), inv.Subtotal.String())
	require.Len(t, repo.lines[inv.ID], 2)
	assert.Equal(t, 1, repo.lines[inv.ID][0].LineOrder)
	assert.Equal(t, []documents.Kind{documents.KindInvoice}, notifier.kinds)
	assert.Equal(t, []int64{inv.ID}, notifier.ids)
}

func TestCreateCreditInvoiceSetsDueDate(t *testing.T) {
	svc := newTestService(newMockRepository(), nil)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: int64Ptr(20),
		Lines:      []shared.LineRequest{{PresentationID: 1, Quantity: amt("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, pricing.PaymentCredit, inv.PaymentType)
	assert.Equal(t, 30, inv.CreditDays)
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), *inv.DueDate)
	assert.True(t, inv.Total.Equal(dec("112")))
	assert.Equal(t, pricing.TierTwo, inv.PriceTier)
}

func TestCreateInvoiceReportsCappedDiscounts(t *testing.T) {
	svc := newTestService(newMockRepository(), nil)

	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 1, Quantity: amt("1"), DiscountPct: amt("50")}},
	})
	require.NoError(t, err)
	require.Len(t, inv.Warnings, 1)
	assert.True(t, inv.Lines[0].DiscountPct.Equal(dec("10")))
	assert.True(t, inv.Total.Equal(dec("106.2")), inv.Total.String())
}

func TestCreateInvoiceDefaultSurcharge(t *testing.T) {
	svc := NewService(newMockRepository(), testCatalog, testCustomers, Options{DefaultSurcharge: dec("15")})
	inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 2, Quantity: amt("1")}},
	})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(dec("315")))

	override := amt("0")
	inv, err = svc.Create(context.Background(), CreateInvoiceRequest{
		Surcharge: &override,
		Lines:     []shared.LineRequest{{PresentationID: 2, Quantity: amt("1")}},
	})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(dec("300")))
}

func TestCreateInvoiceErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMockRepository(), nil)

	_, err := svc.Create(ctx, CreateInvoiceRequest{})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateInvoiceRequest{
		CustomerID: int64Ptr(99),
		Lines:      []shared.LineRequest{{PresentationID: 1, Quantity: amt("1")}},
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Create(ctx, CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 1, Quantity: amt("-2")}},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	repo := newMockRepository()
	repo.txError = errors.New("db down")
	_, err = newTestService(repo, nil).Create(ctx, CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 1, Quantity: amt("1")}},
	})
	require.Error(t, err)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	repo := newMockRepository()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)

	preview, err := svc.Preview(context.Background(), CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 1, Quantity: amt("3")}},
	})
	require.NoError(t, err)
	assert.True(t, preview.Totals.GrandTotal.Equal(dec("354")))
	assert.Empty(t, repo.invoices)
	assert.Empty(t, notifier.kinds)
}

func TestIssueRejectsEmptyDraft(t *testing.T) {
	svc := newTestService(newMockRepository(), nil)
	_, err := svc.Issue(context.Background(), pricing.NewDraft(pricing.KindInvoice), IssueOptions{})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestVoidInvoice(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 2, Quantity: amt("1")}},
	})
	require.NoError(t, err)

	voided, err := svc.Void(ctx, inv.ID, VoidInvoiceRequest{Reason: "wrong customer"})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusVoid, voided.Status)

	_, err = svc.Void(ctx, inv.ID, VoidInvoiceRequest{Reason: "again"})
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.Void(ctx, 404, VoidInvoiceRequest{Reason: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVoidRejectsInvoiceWithReturns(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 2, Quantity: amt("2")}},
	})
	require.NoError(t, err)
	repo.returned[inv.ID] = map[int64]decimal.Decimal{inv.Lines[0].ID: dec("1")}

	_, err = svc.Void(ctx, inv.ID, VoidInvoiceRequest{Reason: "x"})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, InvoiceStatusIssued, repo.invoices[inv.ID].Status)
}

func TestVoidChecksReturnsInsideTransaction(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 2, Quantity: amt("2")}},
	})
	require.NoError(t, err)

	// A return commits after the invoice was read but before the row lock.
	repo.onLock = func(id int64) {
		repo.returned[id] = map[int64]decimal.Decimal{inv.Lines[0].ID: dec("1")}
	}
	_, err = svc.Void(ctx, inv.ID, VoidInvoiceRequest{Reason: "x"})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, repo.locks)
	assert.Equal(t, InvoiceStatusIssued, repo.invoices[inv.ID].Status)
}

func TestVoidRechecksStatusUnderLock(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	inv, err := svc.Create(ctx, CreateInvoiceRequest{
		Lines: []shared.LineRequest{{PresentationID: 2, Quantity: amt("1")}},
	})
	require.NoError(t, err)

	reason := "first"
	repo.onLock = func(id int64) {
		repo.invoices[id].Status = InvoiceStatusVoid
		repo.invoices[id].VoidReason = &reason
	}
	_, err = svc.Void(ctx, inv.ID, VoidInvoiceRequest{Reason: "second"})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, "first", *repo.invoices[inv.ID].VoidReason)
}

func TestInvoiceLinePricedRoundTrips(t *testing.T) {
	computed := pricing.ComputeLine(dec("3"), dec("118"), dec("10"), dec("0.18"))
	line := newLine(1, pricing.DraftLine{ProductID: 1}, computed)

	priced := line.Priced()
	assert.True(t, priced.Gross.Equal(computed.Gross))
	assert.True(t, priced.Net.Equal(computed.Net))
	assert.True(t, priced.Tax.Equal(computed.Tax))
}

func int64Ptr(v int64) *int64 { return &v }
