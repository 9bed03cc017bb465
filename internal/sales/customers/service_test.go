package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	customers map[int64]*Customer
	nextID    int64
	txError   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{customers: make(map[int64]*Customer), nextID: 1}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *mockRepository) GetByCode(ctx context.Context, code string) (*Customer, error) {
	for _, c := range m.customers {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range m.customers {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, customer Customer) (int64, error) {
	customer.ID = m.nextID
	m.nextID++
	m.customers[customer.ID] = &customer
	return customer.ID, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	c, ok := m.customers[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		c.Name = v.(string)
	}
	if v, ok := updates["price_tier"]; ok {
		c.PriceTier = pricing.Tier(v.(int))
	}
	if v, ok := updates["credit_authorized"]; ok {
		c.CreditAuthorized = v.(bool)
	}
	if v, ok := updates["credit_days"]; ok {
		c.CreditDays = v.(int)
	}
	if v, ok := updates["is_active"]; ok {
		c.IsActive = v.(bool)
	}
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateCustomerDefaultsToTierOne(t *testing.T) {
	svc := NewService(newMockRepository())

	c, err := svc.Create(context.Background(), CreateCustomerRequest{Code: "C001", Name: "Colmado Luis"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, pricing.TierOne, c.PriceTier)
	assert.True(t, c.IsActive)
}

func TestCreateCustomerRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateCustomerRequest{Code: "C001", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateCustomerRequest{Code: "C001", Name: "B"})
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateCustomerValidatesTierAndCreditDays(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateCustomerRequest{Code: "C1", Name: "A", PriceTier: 4})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateCustomerRequest{Code: "C1", Name: "A", CreditDays: 400})
	require.Error(t, err)
}

func TestCreateCustomerTxError(t *testing.T) {
	repo := newMockRepository()
	repo.txError = errors.New("boom")
	_, err := NewService(repo).Create(context.Background(), CreateCustomerRequest{Code: "C1", Name: "A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create customer")
}

func TestUpdateCustomerCreditTerms(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()
	c, err := svc.Create(ctx, CreateCustomerRequest{Code: "C1", Name: "A"})
	require.NoError(t, err)

	tier := 2
	authorized := true
	days := 30
	updated, err := svc.Update(ctx, c.ID, UpdateCustomerRequest{PriceTier: &tier, CreditAuthorized: &authorized, CreditDays: &days})
	require.NoError(t, err)

	ref := updated.Ref()
	assert.Equal(t, pricing.TierTwo, ref.Tier)
	assert.True(t, ref.Credit.Authorized)
	assert.Equal(t, 30, ref.Credit.Days)

	_, err = svc.Update(ctx, 99, UpdateCustomerRequest{PriceTier: &tier})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClientRefRejectsInactiveCustomer(t *testing.T) {
	svc := NewService(newMockRepository())
	ctx := context.Background()
	c, err := svc.Create(ctx, CreateCustomerRequest{Code: "C1", Name: "A", PriceTier: 3})
	require.NoError(t, err)

	ref, err := svc.ClientRef(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierThree, ref.Tier)

	inactive := false
	_, err = svc.Update(ctx, c.ID, UpdateCustomerRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = svc.ClientRef(ctx, c.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRefNormalizesUnknownTier(t *testing.T) {
	ref := Customer{ID: 3, PriceTier: 9}.Ref()
	assert.Equal(t, pricing.TierOne, ref.Tier)
}
