package pricing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TierRule controls what a tier is allowed to do.
type TierRule struct {
	AllowDiscount bool `json:"allow_discount"`
}

// TierPolicy maps tiers to their rules. Missing tiers forfeit discounting.
type TierPolicy map[Tier]TierRule

// DefaultTierPolicy only lets tier one carry discounts.
var DefaultTierPolicy = TierPolicy{
	TierOne:   {AllowDiscount: true},
	TierTwo:   {AllowDiscount: false},
	TierThree: {AllowDiscount: false},
}

// NewTierPolicy builds a policy where only the listed tiers may discount.
func NewTierPolicy(discountTiers ...Tier) (TierPolicy, error) {
	policy := TierPolicy{
		TierOne:   {},
		TierTwo:   {},
		TierThree: {},
	}
	for _, tier := range discountTiers {
		if !tier.Valid() {
			return nil, fmt.Errorf("pricing: unknown tier %d", tier)
		}
		policy[tier] = TierRule{AllowDiscount: true}
	}
	return policy, nil
}

// ParseTierPolicy reads a comma separated list of discount tiers ("1,2").
func ParseTierPolicy(raw string) (TierPolicy, error) {
	var tiers []Tier
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("pricing: invalid tier %q", part)
		}
		tiers = append(tiers, Tier(n))
	}
	return NewTierPolicy(tiers...)
}

// DiscountTiers lists the tiers allowed to discount, in ascending order.
func (p TierPolicy) DiscountTiers() []Tier {
	tiers := make([]Tier, 0, len(p))
	for tier, rule := range p {
		if rule.AllowDiscount {
			tiers = append(tiers, tier)
		}
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}

// AllowsDiscount reports whether lines priced at tier may be discounted.
func (p TierPolicy) AllowsDiscount(tier Tier) bool {
	if p == nil {
		p = DefaultTierPolicy
	}
	return p[tier.Normalize()].AllowDiscount
}

// PriceForTier resolves a unit price with the default tier policy.
func PriceForTier(p Presentation, tier Tier) TierPrice {
	return DefaultTierPolicy.PriceFor(p, tier)
}

// PriceFor resolves the unit price and discount cap for a tier. Tiers two
// and three fall back to lower tiers when they have no price of their own.
func (p TierPolicy) PriceFor(pres Presentation, tier Tier) TierPrice {
	tier = tier.Normalize()
	source := resolveSource(pres, tier)

	price := nonNegative(source.Value)
	maxDiscount := decimal.Zero
	if p.AllowsDiscount(tier) {
		maxDiscount = nonNegative(pres.DiscountPct)
	}
	return TierPrice{
		Tier:           tier,
		UnitPrice:      price,
		MaxDiscountPct: maxDiscount,
		Source:         source.Kind,
	}
}

func resolveSource(pres Presentation, tier Tier) PriceSource {
	for t := tier; t > TierOne; t-- {
		if src := pres.Source(t); src.IsSet() {
			return src
		}
	}
	base := pres.Source(TierOne)
	if tier != TierOne {
		base.Kind = SourceInherited
	}
	return base
}

// DerivePrice computes an auto-derived tier price as pct percent of price1.
func DerivePrice(price1, pct decimal.Decimal) decimal.Decimal {
	return nonNegative(price1.Mul(pct).Div(hundred))
}
