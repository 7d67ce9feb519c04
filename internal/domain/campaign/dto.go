package campaign

import (
	"time"

	"github.com/google/uuid"

	"github.com/gouache/gouache-api/internal/pkg/fingerprint"
)

// CreateRequest for creating a new campaign
type CreateRequest struct {
	Name              string `json:"name" validate:"required,min=3,max=255"`
	TargetURL         string `json:"target_url" validate:"required,url"`
	ImageURL          string `json:"image_url" validate:"omitempty,url"`
	Placement         string `json:"placement" validate:"required,oneof=feed search artwork profile"`
	BillingModel      string `json:"billing_model" validate:"required,oneof=cpc cpm"`
	CostPerClick      int64  `json:"cost_per_click" validate:"omitempty,gte=0"`
	CostPerImpression int64  `json:"cost_per_impression" validate:"omitempty,gte=0"`
	Budget            *int64 `json:"budget" validate:"omitempty,gte=100"`
	UncappedBudget    bool   `json:"uncapped_budget"`
	DailyBudget       *int64 `json:"daily_budget" validate:"omitempty,gte=100"`
}

// UpdateRequest for editing an existing campaign. Spend counters are
// never client-writable.
type UpdateRequest struct {
	Name              string `json:"name" validate:"omitempty,min=3,max=255"`
	TargetURL         string `json:"target_url" validate:"omitempty,url"`
	ImageURL          string `json:"image_url" validate:"omitempty,url"`
	Placement         string `json:"placement" validate:"omitempty,oneof=feed search artwork profile"`
	CostPerClick      *int64 `json:"cost_per_click" validate:"omitempty,gte=0"`
	CostPerImpression *int64 `json:"cost_per_impression" validate:"omitempty,gte=0"`
	Budget            *int64 `json:"budget" validate:"omitempty,gte=100"`
	UncappedBudget    *bool  `json:"uncapped_budget"`
	DailyBudget       *int64 `json:"daily_budget" validate:"omitempty,gte=100"`
}

// TrackRequestDTO is the wire form of a click or impression event sent
// by the rendering UI
type TrackRequestDTO struct {
	CampaignID string               `json:"campaign_id" validate:"required,uuid"`
	Placement  string               `json:"placement" validate:"omitempty,max=50"`
	Device     *fingerprint.Signals `json:"device"`
}

// ToTrackRequest converts the wire form; userID is nil for anonymous
// viewers.
func (d *TrackRequestDTO) ToTrackRequest(userID *uuid.UUID) (TrackRequest, error) {
	campaignID, err := uuid.Parse(d.CampaignID)
	if err != nil {
		return TrackRequest{}, err
	}
	return TrackRequest{
		CampaignID: campaignID,
		UserID:     userID,
		Signals:    d.Device,
		Placement:  d.Placement,
	}, nil
}

// Response for API response
type Response struct {
	ID                string  `json:"id"`
	PartnerID         string  `json:"partner_id"`
	Name              string  `json:"name"`
	TargetURL         string  `json:"target_url"`
	ImageURL          string  `json:"image_url,omitempty"`
	Placement         string  `json:"placement"`
	BillingModel      string  `json:"billing_model"`
	CostPerClick      int64   `json:"cost_per_click"`
	CostPerImpression int64   `json:"cost_per_impression"`
	Budget            *int64  `json:"budget,omitempty"`
	UncappedBudget    bool    `json:"uncapped_budget"`
	DailyBudget       *int64  `json:"daily_budget,omitempty"`
	Spent             int64   `json:"spent"`
	DailySpent        int64   `json:"daily_spent"`
	IsActive          bool    `json:"is_active"`
	Clicks            int64   `json:"clicks"`
	Impressions       int64   `json:"impressions"`
	CTR               float64 `json:"ctr"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// ToResponse converts entity to response
func (c *Campaign) ToResponse() *Response {
	resp := &Response{
		ID:                c.ID.String(),
		PartnerID:         c.PartnerID.String(),
		Name:              c.Name,
		TargetURL:         c.TargetURL,
		Placement:         c.Placement,
		BillingModel:      string(c.BillingModel),
		CostPerClick:      c.CostPerClick,
		CostPerImpression: c.CostPerImpression,
		UncappedBudget:    c.UncappedBudget,
		Spent:             c.Spent,
		DailySpent:        c.DailySpent,
		IsActive:          c.IsActive,
		Clicks:            c.Clicks,
		Impressions:       c.Impressions,
		CreatedAt:         c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         c.UpdatedAt.Format(time.RFC3339),
	}

	if c.ImageURL.Valid {
		resp.ImageURL = c.ImageURL.String
	}
	if c.Budget.Valid {
		v := c.Budget.Int64
		resp.Budget = &v
	}
	if c.DailyBudget.Valid {
		v := c.DailyBudget.Int64
		resp.DailyBudget = &v
	}
	if c.Impressions > 0 {
		resp.CTR = float64(c.Clicks) / float64(c.Impressions) * 100
	}

	return resp
}

// StatsResponse for campaign statistics
type StatsResponse struct {
	TotalImpressions int64   `json:"total_impressions"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalSpent       int64   `json:"total_spent"`
	DailySpent       int64   `json:"daily_spent"`
	CTR              float64 `json:"ctr"`
	AvgCostPerClick  float64 `json:"avg_cost_per_click"`
	IsActive         bool    `json:"is_active"`
}

// AdResponse is the public shape served to the rendering UI
type AdResponse struct {
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
	Placement  string `json:"placement"`
}

// ToAdResponse strips everything the viewer has no business seeing
func (c *Campaign) ToAdResponse() *AdResponse {
	resp := &AdResponse{
		CampaignID: c.ID.String(),
		Name:       c.Name,
		Placement:  c.Placement,
	}
	if c.ImageURL.Valid {
		resp.ImageURL = c.ImageURL.String
	}
	return resp
}
