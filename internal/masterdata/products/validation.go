package products

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

var hundred = decimal.NewFromInt(100)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: product code is required", shared.ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if !inPercentRange(p.TaxPct) {
		return fmt.Errorf("%w: tax_pct must be between 0 and 100", shared.ErrValidation)
	}
	if len(p.Presentations) == 0 {
		return fmt.Errorf("%w: at least one presentation is required", shared.ErrValidation)
	}
	for i, pres := range p.Presentations {
		if err := validatePresentation(pres); err != nil {
			return fmt.Errorf("presentation %d: %w", i+1, err)
		}
	}
	return nil
}

func validatePresentation(p Presentation) error {
	for name, v := range map[string]decimal.Decimal{
		"price1": p.Price1,
		"price2": p.Price2,
		"price3": p.Price3,
		"cost":   p.Cost,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", shared.ErrValidation, name)
		}
	}
	if !inPercentRange(p.DiscountPct) {
		return fmt.Errorf("%w: discount_pct must be between 0 and 100", shared.ErrValidation)
	}
	if p.AutoPrice2 && p.AutoPct2.IsNegative() || p.AutoPrice3 && p.AutoPct3.IsNegative() {
		return fmt.Errorf("%w: auto percentages must not be negative", shared.ErrValidation)
	}
	return nil
}

func inPercentRange(v decimal.Decimal) bool {
	return !v.IsNegative() && v.LessThanOrEqual(hundred)
}

func validateRequest(req ProductRequest) error {
	return httpx.Validate(req)
}
