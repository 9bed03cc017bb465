package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders d with two decimals and no grouping ("1234.56").
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatCurrency renders d with two decimals and en-US digit grouping
// ("1,234.56"). The digits come from the decimal itself, never a float.
func FormatCurrency(d decimal.Decimal) string {
	rounded := d.Round(2)
	fixed := rounded.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var grouped string
	if n := rounded.Abs().BigInt(); n.IsInt64() {
		grouped = currencyPrinter.Sprintf("%d", n.Int64())
	} else {
		grouped = groupThousands(whole)
	}
	if rounded.IsNegative() {
		grouped = "-" + grouped
	}
	return grouped + "." + cents
}

func groupThousands(digits string) string {
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
