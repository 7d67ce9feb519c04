package profile

import "time"

// UpsertRequest creates or edits an artist profile
type UpsertRequest struct {
	Bio         string   `json:"bio" validate:"max=2000"`
	Disciplines []string `json:"disciplines" validate:"omitempty,dive,min=2,max=50"`
	Website     string   `json:"website" validate:"omitempty,url"`
	Instagram   string   `json:"instagram" validate:"omitempty,max=100"`
	AvatarURL   string   `json:"avatar_url" validate:"omitempty,url"`
}

// AddPieceRequest appends a portfolio piece
type AddPieceRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"image_url" validate:"required,url"`
}

// Response for API response
type Response struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Bio         string           `json:"bio,omitempty"`
	Disciplines []string         `json:"disciplines"`
	Website     string           `json:"website,omitempty"`
	Instagram   string           `json:"instagram,omitempty"`
	AvatarURL   string           `json:"avatar_url,omitempty"`
	Portfolio   []*PieceResponse `json:"portfolio,omitempty"`
	CreatedAt   string           `json:"created_at"`
}

// PieceResponse for a portfolio piece
type PieceResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Position     int    `json:"position"`
}

// ToResponse converts entity to response
func (p *Profile) ToResponse() *Response {
	resp := &Response{
		ID:          p.ID.String(),
		UserID:      p.UserID.String(),
		Disciplines: []string(p.Disciplines),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.Bio.Valid {
		resp.Bio = p.Bio.String
	}
	if p.Website.Valid {
		resp.Website = p.Website.String
	}
	if p.Instagram.Valid {
		resp.Instagram = p.Instagram.String
	}
	if p.AvatarURL.Valid {
		resp.AvatarURL = p.AvatarURL.String
	}
	return resp
}

// ToResponse converts entity to response
func (pc *PortfolioPiece) ToResponse() *PieceResponse {
	resp := &PieceResponse{
		ID:       pc.ID.String(),
		Title:    pc.Title,
		ImageURL: pc.ImageURL,
		Position: pc.Position,
	}
	if pc.Description.Valid {
		resp.Description = pc.Description.String
	}
	if pc.ThumbnailURL.Valid {
		resp.ThumbnailURL = pc.ThumbnailURL.String
	}
	return resp
}
