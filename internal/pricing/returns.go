package pricing

import "github.com/shopspring/decimal"

// ComputeReturnLine pro-rates the discount, tax and amount of original for
// returnQuantity units. Returning the full quantity reproduces the original
// amounts exactly; a zero quantity on either side yields a zero ratio.
func ComputeReturnLine(original Line, returnQuantity decimal.Decimal) ReturnLine {
	returnQuantity = nonNegative(returnQuantity)
	if returnQuantity.GreaterThan(original.Quantity) {
		returnQuantity = original.Quantity
	}

	if returnQuantity.Equal(original.Quantity) && original.Quantity.IsPositive() {
		return ReturnLine{
			Quantity: returnQuantity,
			Ratio:    one,
			Discount: original.Gross.Sub(original.Net),
			Tax:      original.Tax,
			Amount:   original.Net,
		}
	}

	ratio := ReturnRatio(returnQuantity, original.Quantity)
	return ReturnLine{
		Quantity: returnQuantity,
		Ratio:    ratio,
		Discount: original.Gross.Sub(original.Net).Mul(ratio),
		Tax:      original.Tax.Mul(ratio),
		Amount:   original.Net.Mul(ratio),
	}
}

// ComputeClosingReturnLine pro-rates returnQuantity like ComputeReturnLine,
// except when it returns the last units of original after earlier partial
// returns (returnedQuantity units recorded as prior). The closing line then
// takes whatever discount, tax and amount those returns left, so the sum of
// every return of a line equals the line.
func ComputeClosingReturnLine(original Line, returnedQuantity decimal.Decimal, prior ReturnTotals, returnQuantity decimal.Decimal) ReturnLine {
	returnedQuantity = nonNegative(returnedQuantity)
	if !returnedQuantity.IsPositive() || !returnedQuantity.Add(nonNegative(returnQuantity)).Equal(original.Quantity) {
		return ComputeReturnLine(original, returnQuantity)
	}
	return ReturnLine{
		Quantity: returnQuantity,
		Ratio:    ReturnRatio(returnQuantity, original.Quantity),
		Discount: original.Gross.Sub(original.Net).Sub(prior.Discount),
		Tax:      original.Tax.Sub(prior.Tax),
		Amount:   original.Net.Sub(prior.Amount),
	}
}

// ReturnRatio is returned/original, defined as zero when original is zero.
func ReturnRatio(returned, original decimal.Decimal) decimal.Decimal {
	if original.IsZero() {
		return decimal.Zero
	}
	return returned.Div(original)
}

// ReturnTotals sums pro-rated return lines.
type ReturnTotals struct {
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Amount   decimal.Decimal `json:"amount"`
}

// AggregateReturn totals return lines.
func AggregateReturn(lines []ReturnLine) ReturnTotals {
	totals := ReturnTotals{Discount: decimal.Zero, Tax: decimal.Zero, Amount: decimal.Zero}
	for _, line := range lines {
		totals.Discount = totals.Discount.Add(line.Discount)
		totals.Tax = totals.Tax.Add(line.Tax)
		totals.Amount = totals.Amount.Add(line.Amount)
	}
	return totals
}
