package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// Service manages the product catalog.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	policy pricing.TierPolicy
	logger *slog.Logger
}

// NewService wires the catalog service. cache and policy may be nil.
func NewService(repo Repository, c *cache.Cache, policy pricing.TierPolicy, logger *slog.Logger) *Service {
	if policy == nil {
		policy = pricing.DefaultTierPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, policy: policy, logger: logger}
}

// Policy returns the tier policy the catalog prices with.
func (s *Service) Policy() pricing.TierPolicy {
	return s.policy
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Create stores a product, deriving auto tier prices first.
func (s *Service) Create(ctx context.Context, req ProductRequest) (Product, error) {
	if err := validateRequest(req); err != nil {
		return Product{}, err
	}
	product := req.toProduct()
	if err := s.validate(product); err != nil {
		return Product{}, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateProduct(ctx, product)
		if err != nil {
			return err
		}
		product.ID = id
		return tx.ReplacePresentations(ctx, id, product.Presentations)
	})
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, product.ID)
}

// Update replaces a product and all of its presentations.
func (s *Service) Update(ctx context.Context, id int64, req ProductRequest) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	if err := validateRequest(req); err != nil {
		return Product{}, err
	}
	product := req.toProduct()
	if err := s.validate(product); err != nil {
		return Product{}, err
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateProduct(ctx, id, product); err != nil {
			return err
		}
		return tx.ReplacePresentations(ctx, id, product.Presentations)
	})
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// CatalogItem resolves a presentation for pricing, through the cache when
// one is configured. A failing cache falls back to the repository; a failing
// repository is reported as is.
func (s *Service) CatalogItem(ctx context.Context, presentationID int64) (pricing.CatalogItem, error) {
	if presentationID <= 0 {
		return pricing.CatalogItem{}, shared.ErrInvalidID
	}
	loader := func(ctx context.Context) (any, error) {
		return s.repo.FindCatalogItem(ctx, presentationID)
	}

	key, err := s.cache.Key(ctx, "presentation", strconv.FormatInt(presentationID, 10))
	if err == nil {
		var item pricing.CatalogItem
		err = s.cache.Fetch(ctx, key, &item, loader)
		if err == nil {
			return item, nil
		}
		var loadErr *cache.LoadError
		if errors.As(err, &loadErr) {
			return pricing.CatalogItem{}, loadErr.Err
		}
		if errors.Is(err, context.Canceled) {
			return pricing.CatalogItem{}, err
		}
	}
	s.logger.Warn("catalog cache unavailable", slog.Int64("presentation_id", presentationID), slog.Any("error", err))
	return s.repo.FindCatalogItem(ctx, presentationID)
}

// TierPrice prices a presentation for a client tier.
func (s *Service) TierPrice(ctx context.Context, presentationID int64, tier pricing.Tier) (pricing.TierPrice, error) {
	item, err := s.CatalogItem(ctx, presentationID)
	if err != nil {
		return pricing.TierPrice{}, err
	}
	return s.policy.PriceFor(item.Presentation, tier), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("catalog cache bump failed", slog.Any("error", err))
	}
}
