package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}

	// Check if code already exists
	existing, err := s.repo.GetByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check existing customer: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: code %s", ErrAlreadyExists, req.Code)
	}

	tier := pricing.Tier(req.PriceTier)
	if tier == 0 {
		tier = pricing.TierOne
	}
	customer := Customer{
		Code:             req.Code,
		Name:             req.Name,
		TaxID:            req.TaxID,
		Phone:            req.Phone,
		Email:            req.Email,
		PriceTier:        tier,
		CreditAuthorized: req.CreditAuthorized,
		CreditDays:       req.CreditDays,
		IsActive:         true,
		Notes:            req.Notes,
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		id, err = repo.Create(ctx, customer)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	customer.ID = id
	return &customer, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.TaxID != nil {
		updates["tax_id"] = *req.TaxID
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.PriceTier != nil {
		updates["price_tier"] = *req.PriceTier
	}
	if req.CreditAuthorized != nil {
		updates["credit_authorized"] = *req.CreditAuthorized
	}
	if req.CreditDays != nil {
		updates["credit_days"] = *req.CreditDays
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		return existing, nil
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Update(ctx, id, updates)
	})
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, req)
}

// ClientRef loads the pricing view of a customer for document drafts.
func (s *Service) ClientRef(ctx context.Context, id int64) (pricing.ClientRef, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return pricing.ClientRef{}, err
	}
	if !c.IsActive {
		return pricing.ClientRef{}, fmt.Errorf("%w: customer %d is inactive", httpx.ErrValidation, id)
	}
	return c.Ref(), nil
}
