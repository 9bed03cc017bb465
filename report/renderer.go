package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
	"github.com/odyssey-erp/odyssey-pos/web"
)

// PDFClient exposes the subset of the report client used by the renderer.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Renderer turns a Document into HTML and then PDF.
type Renderer struct {
	tpl    *template.Template
	client PDFClient
}

// NewRenderer parses the document template. client may be nil when only
// HTML output is needed.
func NewRenderer(client PDFClient) (*Renderer, error) {
	funcMap := template.FuncMap{
		"money": pricing.FormatAmount,
		"qty": func(d decimal.Decimal) string {
			return d.Round(3).String()
		},
		"date": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				if t.IsZero() {
					return ""
				}
				return t.Format("02/01/2006")
			case *time.Time:
				if t == nil || t.IsZero() {
					return ""
				}
				return t.Format("02/01/2006")
			}
			return ""
		},
	}
	tpl, err := template.New("document.html").Funcs(funcMap).ParseFS(web.Templates, "templates/documents/document.html")
	if err != nil {
		return nil, fmt.Errorf("report renderer: %w", err)
	}
	return &Renderer{tpl: tpl, client: client}, nil
}

// HTML executes the template for doc.
func (r *Renderer) HTML(doc Document) (string, error) {
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render executes the template and converts the HTML to PDF bytes.
func (r *Renderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if r == nil || r.tpl == nil || r.client == nil {
		return nil, fmt.Errorf("report renderer not initialised")
	}
	html, err := r.HTML(doc)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html)
}
