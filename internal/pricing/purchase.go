package pricing

import "github.com/shopspring/decimal"

// ComputePurchaseLine prices a supplier line. With taxIncluded the cost
// already carries tax and the base is backed out of it; otherwise the cost
// is the base and tax is added on top.
func ComputePurchaseLine(quantity, unitCost, discountPct, taxRate decimal.Decimal, taxIncluded bool) PurchaseLine {
	quantity = nonNegative(quantity)

	gross := quantity.Mul(unitCost)
	discounted := gross.Mul(hundred.Sub(discountPct)).Div(hundred)

	line := PurchaseLine{
		Quantity:    quantity,
		UnitCost:    unitCost,
		DiscountPct: discountPct,
		TaxRate:     taxRate,
		TaxIncluded: taxIncluded,
		Discount:    gross.Sub(discounted),
	}
	if taxIncluded {
		line.Importe = discounted
		line.Base = BackOutTax(discounted, taxRate)
		line.UnitCostNet = BackOutTax(unitCost, taxRate)
	} else {
		line.Base = discounted
		line.Importe = discounted.Mul(one.Add(taxRate))
		line.UnitCostNet = unitCost
	}
	line.Tax = line.Importe.Sub(line.Base)
	line.PrintedTax = PrintedTax(line.Importe, taxRate)
	return line
}

// PrintedTax is the tax figure shown on printed purchase documents:
// importe - importe/(1+rate). It is computed independently from the ledger
// tax of ComputePurchaseLine and the two are not assumed to agree.
func PrintedTax(importe, taxRate decimal.Decimal) decimal.Decimal {
	return importe.Sub(BackOutTax(importe, taxRate))
}

// PurchaseTotals sums purchase lines.
type PurchaseTotals struct {
	SubTotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	PrintedTax decimal.Decimal `json:"printed_tax"`
	Total      decimal.Decimal `json:"total"`
}

// AggregatePurchase totals purchase lines; Total is the sum of importe.
func AggregatePurchase(lines []PurchaseLine) PurchaseTotals {
	totals := PurchaseTotals{
		SubTotal:   decimal.Zero,
		Discount:   decimal.Zero,
		Tax:        decimal.Zero,
		PrintedTax: decimal.Zero,
		Total:      decimal.Zero,
	}
	for _, line := range lines {
		totals.SubTotal = totals.SubTotal.Add(line.Base)
		totals.Discount = totals.Discount.Add(line.Discount)
		totals.Tax = totals.Tax.Add(line.Tax)
		totals.PrintedTax = totals.PrintedTax.Add(line.PrintedTax)
		totals.Total = totals.Total.Add(line.Importe)
	}
	return totals
}
