package products

import "github.com/odyssey-erp/odyssey-pos/internal/pricing"

// ProductRequest is the create/update payload. Amounts decode leniently.
type ProductRequest struct {
	Code          string                `json:"code" validate:"required,max=40"`
	Name          string                `json:"name" validate:"required,max=200"`
	TaxPct        pricing.Amount        `json:"tax_pct"`
	IsActive      *bool                 `json:"is_active"`
	Presentations []PresentationRequest `json:"presentations" validate:"required,min=1,dive"`
}

// PresentationRequest is one presentation inside ProductRequest.
type PresentationRequest struct {
	Name        string         `json:"name" validate:"max=80"`
	Barcode     string         `json:"barcode" validate:"max=64"`
	Price1      pricing.Amount `json:"price1"`
	Price2      pricing.Amount `json:"price2"`
	Price3      pricing.Amount `json:"price3"`
	AutoPrice2  bool           `json:"auto_price2"`
	AutoPrice3  bool           `json:"auto_price3"`
	AutoPct2    pricing.Amount `json:"auto_pct2"`
	AutoPct3    pricing.Amount `json:"auto_pct3"`
	DiscountPct pricing.Amount `json:"discount_pct"`
	Cost        pricing.Amount `json:"cost"`
}

func (r ProductRequest) toProduct() Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	p := Product{
		Code:     r.Code,
		Name:     r.Name,
		TaxPct:   r.TaxPct.Decimal,
		IsActive: active,
	}
	for _, pr := range r.Presentations {
		p.Presentations = append(p.Presentations, Presentation{
			Name:        pr.Name,
			Barcode:     pr.Barcode,
			Price1:      pr.Price1.Decimal,
			Price2:      pr.Price2.Decimal,
			Price3:      pr.Price3.Decimal,
			AutoPrice2:  pr.AutoPrice2,
			AutoPrice3:  pr.AutoPrice3,
			AutoPct2:    pr.AutoPct2.Decimal,
			AutoPct3:    pr.AutoPct3.Decimal,
			DiscountPct: pr.DiscountPct.Decimal,
			Cost:        pr.Cost.Decimal,
		}.Derive())
	}
	return p
}
