package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

// PriceOptions defines available flags for the price command.
type PriceOptions struct {
	Path       string
	JSONOutput bool
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// PriceLine is one computed line of the JSON output.
type PriceLine struct {
	Description string       `json:"description"`
	Line        pricing.Line `json:"line"`
}

// PriceSummary describes the JSON response for price.
type PriceSummary struct {
	Kind   pricing.DocumentKind   `json:"kind"`
	Lines  []PriceLine            `json:"lines"`
	Totals pricing.DocumentTotals `json:"totals"`
}

// PriceCommand reads a draft document and prints its computed lines and
// totals. Path "-" or empty reads stdin.
func PriceCommand(opts PriceOptions) int {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	in := opts.Stdin
	if opts.Path != "" && opts.Path != "-" {
		f, err := os.Open(opts.Path)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "price: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	var doc pricing.DraftDocument
	if err := json.NewDecoder(in).Decode(&doc); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "price: decode draft: %v\n", err)
		return 1
	}
	summary := buildPriceSummary(doc)

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "price: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	renderPriceHuman(opts.Stdout, summary)
	return 0
}

func buildPriceSummary(doc pricing.DraftDocument) PriceSummary {
	summary := PriceSummary{Kind: doc.Kind, Lines: make([]PriceLine, 0, len(doc.Lines))}
	for _, l := range doc.Lines {
		if !l.Quantity.IsPositive() {
			continue
		}
		summary.Lines = append(summary.Lines, PriceLine{Description: l.Description, Line: l.Compute()})
	}
	summary.Totals = pricing.Totals(doc)
	return summary
}

func renderPriceHuman(out io.Writer, summary PriceSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "Description\tQty\tPrice\tDiscount\tITBIS\tAmount\t")
	for _, pl := range summary.Lines {
		l := pl.Line
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			pl.Description,
			l.Quantity.String(),
			pricing.FormatCurrency(l.UnitPrice),
			pricing.FormatCurrency(l.Discount),
			pricing.FormatCurrency(l.Tax),
			pricing.FormatCurrency(l.Total()))
	}
	_ = tw.Flush()

	t := summary.Totals
	_, _ = fmt.Fprintf(out, "Subtotal:  %s\n", pricing.FormatCurrency(t.SubTotal))
	_, _ = fmt.Fprintf(out, "Discount:  %s\n", pricing.FormatCurrency(t.TotalDiscount))
	_, _ = fmt.Fprintf(out, "ITBIS:     %s\n", pricing.FormatCurrency(t.TotalTax))
	if t.Surcharge.IsPositive() {
		_, _ = fmt.Fprintf(out, "Surcharge: %s\n", pricing.FormatCurrency(t.Surcharge))
	}
	_, _ = fmt.Fprintf(out, "Total:     %s\n", pricing.FormatCurrency(t.GrandTotal))
}
