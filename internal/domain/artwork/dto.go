package artwork

import "time"

// CreateRequest for creating a listing
type CreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=5000"`
	PriceCents  int64  `json:"price_cents" validate:"required,gte=100"`
	Currency    string `json:"currency" validate:"omitempty,oneof=usd eur gbp"`
}

// UpdateRequest for editing a listing
type UpdateRequest struct {
	Title       string `json:"title" validate:"omitempty,min=1,max=255"`
	Description string `json:"description" validate:"max=5000"`
	PriceCents  *int64 `json:"price_cents" validate:"omitempty,gte=100"`
}

// Response for API response
type Response struct {
	ID           string `json:"id"`
	ArtistID     string `json:"artist_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	PriceCents   int64  `json:"price_cents"`
	Currency     string `json:"currency"`
	ImageURL     string `json:"image_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ToResponse converts entity to response
func (a *Artwork) ToResponse() *Response {
	resp := &Response{
		ID:         a.ID.String(),
		ArtistID:   a.ArtistID.String(),
		Title:      a.Title,
		PriceCents: a.PriceCents,
		Currency:   a.Currency,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Description.Valid {
		resp.Description = a.Description.String
	}
	if a.ImageURL.Valid {
		resp.ImageURL = a.ImageURL.String
	}
	if a.ThumbnailURL.Valid {
		resp.ThumbnailURL = a.ThumbnailURL.String
	}
	return resp
}
