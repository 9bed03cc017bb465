package customers

type CreateCustomerRequest struct {
	Code             string  `json:"code" validate:"required,max=50"`
	Name             string  `json:"name" validate:"required,max=200"`
	TaxID            *string `json:"tax_id,omitempty" validate:"omitempty,max=50"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	PriceTier        int     `json:"price_tier" validate:"omitempty,gte=1,lte=3"`
	CreditAuthorized bool    `json:"credit_authorized"`
	CreditDays       int     `json:"credit_days" validate:"gte=0,lte=365"`
	Notes            *string `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=200"`
	TaxID            *string `json:"tax_id,omitempty" validate:"omitempty,max=50"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	PriceTier        *int    `json:"price_tier,omitempty" validate:"omitempty,gte=1,lte=3"`
	CreditAuthorized *bool   `json:"credit_authorized,omitempty"`
	CreditDays       *int    `json:"credit_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	IsActive         *bool   `json:"is_active,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

type ListCustomersRequest struct {
	IsActive *bool   `json:"is_active,omitempty"`
	Search   *string `json:"search,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
