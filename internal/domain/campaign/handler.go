package campaign

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gouache/gouache-api/internal/middleware"
	"github.com/gouache/gouache-api/internal/pkg/response"
)

// PartnerResolver maps an authenticated user to their partner account
type PartnerResolver interface {
	PartnerIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Handler handles campaign HTTP requests
type Handler struct {
	repo      *Repository
	svc       *Service
	partners  PartnerResolver
	validator *validator.Validate
}

// NewHandler creates new campaign handler
func NewHandler(repo *Repository, svc *Service, partners PartnerResolver) *Handler {
	return &Handler{
		repo:      repo,
		svc:       svc,
		partners:  partners,
		validator: validator.New(),
	}
}

func (h *Handler) resolvePartner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, false
	}
	partnerID, err := h.partners.PartnerIDByUserID(r.Context(), userID)
	if err != nil {
		response.Forbidden(w, "partner account required")
		return uuid.Nil, false
	}
	return partnerID, true
}

// ownedCampaign loads a campaign and verifies the caller's partner owns it
func (h *Handler) ownedCampaign(w http.ResponseWriter, r *http.Request) (*Campaign, bool) {
	partnerID, ok := h.resolvePartner(w, r)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return nil, false
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrCampaignNotFound) {
		response.NotFound(w, "campaign not found")
		return nil, false
	}
	if err != nil {
		response.InternalError(w)
		return nil, false
	}
	if c.PartnerID != partnerID {
		response.Forbidden(w, ErrNotCampaignOwner.Error())
		return nil, false
	}
	return c, true
}

// List returns the partner's campaigns
// GET /api/v1/campaigns
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.resolvePartner(w, r)
	if !ok {
		return
	}

	campaigns, err := h.repo.GetByPartnerID(r.Context(), partnerID)
	if err != nil {
		response.InternalError(w)
		return
	}

	var responses []*Response
	for i := range campaigns {
		responses = append(responses, campaigns[i].ToResponse())
	}

	response.OK(w, map[string]interface{}{
		"items": responses,
		"total": len(responses),
	})
}

// Create creates a new campaign
// POST /api/v1/campaigns
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	partnerID, ok := h.resolvePartner(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	model := BillingModel(req.BillingModel)
	if model == BillingModelCPC && req.CostPerClick <= 0 {
		response.BadRequest(w, "cpc campaign requires cost_per_click")
		return
	}
	if model == BillingModelCPM && req.CostPerImpression <= 0 {
		response.BadRequest(w, "cpm campaign requires cost_per_impression")
		return
	}

	now := time.Now()
	c := &Campaign{
		ID:                uuid.New(),
		PartnerID:         partnerID,
		Name:              req.Name,
		TargetURL:         req.TargetURL,
		ImageURL:          sql.NullString{String: req.ImageURL, Valid: req.ImageURL != ""},
		Placement:         req.Placement,
		BillingModel:      model,
		CostPerClick:      req.CostPerClick,
		CostPerImpression: req.CostPerImpression,
		UncappedBudget:    req.UncappedBudget,
		IsActive:          true,
		LastSpentReset:    now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Budget != nil {
		c.Budget = sql.NullInt64{Int64: *req.Budget, Valid: true}
	}
	if req.DailyBudget != nil {
		c.DailyBudget = sql.NullInt64{Int64: *req.DailyBudget, Valid: true}
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, c.ToResponse())
}

// Get returns a specific campaign
// GET /api/v1/campaigns/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}
	response.OK(w, c.ToResponse())
}

// Update edits a campaign's configuration
// PUT /api/v1/campaigns/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if req.Name != "" {
		c.Name = req.Name
	}
	if req.TargetURL != "" {
		c.TargetURL = req.TargetURL
	}
	if req.ImageURL != "" {
		c.ImageURL = sql.NullString{String: req.ImageURL, Valid: true}
	}
	if req.Placement != "" {
		c.Placement = req.Placement
	}
	if req.CostPerClick != nil {
		c.CostPerClick = *req.CostPerClick
	}
	if req.CostPerImpression != nil {
		c.CostPerImpression = *req.CostPerImpression
	}
	if req.Budget != nil {
		c.Budget = sql.NullInt64{Int64: *req.Budget, Valid: true}
	}
	if req.UncappedBudget != nil {
		c.UncappedBudget = *req.UncappedBudget
	}
	if req.DailyBudget != nil {
		c.DailyBudget = sql.NullInt64{Int64: *req.DailyBudget, Valid: true}
	}

	if err := h.repo.Update(r.Context(), c); err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			response.NotFound(w, "campaign not found")
			return
		}
		response.InternalError(w)
		return
	}

	updated, err := h.repo.GetByID(r.Context(), c.ID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, updated.ToResponse())
}

// Activate re-enables a campaign after manual pause or budget exhaustion
// POST /api/v1/campaigns/{id}/activate
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}

	if !c.UncappedBudget && c.Budget.Valid && c.Spent >= c.Budget.Int64 {
		response.BadRequest(w, "budget exhausted; raise the budget before reactivating")
		return
	}

	if err := h.repo.SetActive(r.Context(), c.ID, true); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"status": "active"})
}

// Pause deactivates a campaign
// POST /api/v1/campaigns/{id}/pause
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}

	if err := h.repo.SetActive(r.Context(), c.ID, false); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"status": "paused"})
}

// GetStats returns campaign statistics
// GET /api/v1/campaigns/{id}/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}

	stats := &StatsResponse{
		TotalImpressions: c.Impressions,
		TotalClicks:      c.Clicks,
		TotalSpent:       c.Spent,
		DailySpent:       c.DailySpent,
		IsActive:         c.IsActive,
	}
	if c.Impressions > 0 {
		stats.CTR = float64(c.Clicks) / float64(c.Impressions) * 100
	}
	if c.Clicks > 0 {
		stats.AvgCostPerClick = float64(c.Spent) / float64(c.Clicks)
	}

	response.OK(w, stats)
}

// ServeAds returns active campaigns for a placement
// GET /api/v1/ads?placement=feed&limit=5
func (h *Handler) ServeAds(w http.ResponseWriter, r *http.Request) {
	placement := r.URL.Query().Get("placement")
	if placement == "" {
		placement = "feed"
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	campaigns, err := h.repo.ListActive(r.Context(), placement, limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	var ads []*AdResponse
	for i := range campaigns {
		ads = append(ads, campaigns[i].ToAdResponse())
	}

	response.OK(w, map[string]interface{}{"items": ads})
}

func (h *Handler) decodeTrack(w http.ResponseWriter, r *http.Request) (TrackRequest, bool) {
	var dto TrackRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		response.BadRequest(w, "invalid request body")
		return TrackRequest{}, false
	}
	if err := h.validator.Struct(dto); err != nil {
		response.BadRequest(w, err.Error())
		return TrackRequest{}, false
	}

	var userID *uuid.UUID
	if id := middleware.GetUserID(r.Context()); id != uuid.Nil {
		userID = &id
	}

	req, err := dto.ToTrackRequest(userID)
	if err != nil {
		response.BadRequest(w, "invalid campaign id")
		return TrackRequest{}, false
	}
	return req, true
}

// TrackClick records an ad click and returns the navigation target.
// When the campaign resolves but the spend write fails, the target URL
// is still returned with recorded=false; the viewer's navigation must
// not depend on bookkeeping.
// POST /api/v1/track/click
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTrack(w, r)
	if !ok {
		return
	}

	result, err := h.svc.RecordClick(r.Context(), req)
	if errors.Is(err, ErrCampaignNotFound) {
		response.NotFound(w, "campaign not found")
		return
	}
	if err != nil && result == nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"target_url": result.TargetURL,
		"recorded":   result.Recorded,
	})
}

// TrackImpression records an ad view. Always 202: impression tracking
// failures never surface to the rendering UI.
// POST /api/v1/track/impression
func (h *Handler) TrackImpression(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTrack(w, r)
	if !ok {
		return
	}

	// Errors are already logged inside the service.
	_ = h.svc.RecordImpression(r.Context(), req)

	response.Accepted(w, map[string]string{"status": "accepted"})
}

// Routes returns the partner-facing campaign routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/pause", h.Pause)
	r.Get("/{id}/stats", h.GetStats)

	return r
}

// PublicRoutes returns the viewer-facing ad routes. optionalAuth
// attaches a user identity when a token is present but never rejects.
func PublicRoutes(h *Handler, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(optionalAuth)

	r.Get("/ads", h.ServeAds)
	r.Post("/track/click", h.TrackClick)
	r.Post("/track/impression", h.TrackImpression)

	return r
}
