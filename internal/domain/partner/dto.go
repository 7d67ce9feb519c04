package partner

import (
	"time"
)

// CreateRequest for registering a partner account
type CreateRequest struct {
	CompanyName  string `json:"company_name" validate:"required,min=2,max=255"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	Currency     string `json:"currency" validate:"omitempty,oneof=usd eur gbp"`
}

// Normalize fills the account currency when the request leaves it empty
func (r *CreateRequest) Normalize(defaultCurrency string) {
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
}

// BillingSetupRequest stores the processor handles obtained by the
// frontend's card-collection flow
type BillingSetupRequest struct {
	StripeCustomerID string `json:"stripe_customer_id" validate:"required,max=255"`
	PaymentMethodID  string `json:"payment_method_id" validate:"required,max=255"`
}

// Response for API response
type Response struct {
	ID                   string `json:"id"`
	UserID               string `json:"user_id"`
	CompanyName          string `json:"company_name"`
	ContactEmail         string `json:"contact_email"`
	IsActive             bool   `json:"is_active"`
	BillingSetupComplete bool   `json:"billing_setup_complete"`
	Currency             string `json:"currency"`
	TotalSpentAllTime    int64  `json:"total_spent_all_time"`
	LastBilledAt         string `json:"last_billed_at,omitempty"`
	CreatedAt            string `json:"created_at"`
}

// ToResponse converts entity to response. Processor handles are never
// exposed.
func (p *Partner) ToResponse() *Response {
	resp := &Response{
		ID:                   p.ID.String(),
		UserID:               p.UserID.String(),
		CompanyName:          p.CompanyName,
		ContactEmail:         p.ContactEmail,
		IsActive:             p.IsActive,
		BillingSetupComplete: p.BillingSetupComplete,
		Currency:             p.Currency,
		TotalSpentAllTime:    p.TotalSpentAllTime,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
	}
	if p.LastBilledAt.Valid {
		resp.LastBilledAt = p.LastBilledAt.Time.Format(time.RFC3339)
	}
	return resp
}
