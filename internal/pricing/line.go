package pricing

import "github.com/shopspring/decimal"

// ComputeLine derives the amounts of a line whose unit price already
// includes tax. The order is fixed: gross, discount, net, tax base, tax.
// The discount is applied as given; capping it is the caller's job.
func ComputeLine(quantity, unitPriceInclusive, discountPct, taxRate decimal.Decimal) Line {
	quantity = nonNegative(quantity)

	gross := quantity.Mul(unitPriceInclusive)
	discount := gross.Mul(discountPct).Div(hundred)
	net := gross.Sub(discount)
	base := BackOutTax(net, taxRate)

	return Line{
		Quantity:    quantity,
		UnitPrice:   unitPriceInclusive,
		DiscountPct: discountPct,
		TaxRate:     taxRate,
		Gross:       gross,
		Discount:    discount,
		Net:         net,
		TaxBase:     base,
		Tax:         net.Sub(base),
	}
}

// BackOutTax removes an inclusive tax from amount.
func BackOutTax(amount, taxRate decimal.Decimal) decimal.Decimal {
	divisor := one.Add(taxRate)
	if !divisor.IsPositive() {
		return amount
	}
	return amount.Div(divisor)
}

// Aggregate sums lines into document totals. The discount of each line is
// taken as gross minus net so that edited lines never drift.
func Aggregate(lines []Line, surcharge decimal.Decimal) DocumentTotals {
	totals := DocumentTotals{
		SubTotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
		Surcharge:     surcharge,
		GrandTotal:    decimal.Zero,
		Lines:         len(lines),
	}
	net := decimal.Zero
	for _, line := range lines {
		totals.SubTotal = totals.SubTotal.Add(line.TaxBase)
		totals.TotalDiscount = totals.TotalDiscount.Add(line.Gross.Sub(line.Net))
		totals.TotalTax = totals.TotalTax.Add(line.Tax)
		net = net.Add(line.Net)
	}
	totals.GrandTotal = net.Add(surcharge)
	return totals
}

// RateFromPercent converts a percentage (18) into a fraction (0.18).
func RateFromPercent(pct decimal.Decimal) decimal.Decimal {
	return nonNegative(pct).Div(hundred)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
