package order

import "time"

// PlaceRequest for checkout
type PlaceRequest struct {
	ArtworkID        string `json:"artwork_id" validate:"required,uuid"`
	StripeCustomerID string `json:"stripe_customer_id" validate:"required,max=255"`
	PaymentMethodID  string `json:"payment_method_id" validate:"required,max=255"`
}

// Response for API response
type Response struct {
	ID          string `json:"id"`
	BuyerID     string `json:"buyer_id"`
	ArtworkID   string `json:"artwork_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// ToResponse converts entity to response. The payment intent id stays
// server-side.
func (o *Order) ToResponse() *Response {
	return &Response{
		ID:          o.ID.String(),
		BuyerID:     o.BuyerID.String(),
		ArtworkID:   o.ArtworkID.String(),
		AmountCents: o.AmountCents,
		Currency:    o.Currency,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}
