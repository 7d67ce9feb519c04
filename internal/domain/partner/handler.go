package partner

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gouache/gouache-api/internal/middleware"
	"github.com/gouache/gouache-api/internal/pkg/response"
)

// Handler handles partner HTTP requests
type Handler struct {
	repo            *Repository
	validator       *validator.Validate
	defaultCurrency string
}

// NewHandler creates new partner handler
func NewHandler(repo *Repository, defaultCurrency string) *Handler {
	return &Handler{
		repo:            repo,
		validator:       validator.New(),
		defaultCurrency: defaultCurrency,
	}
}

// Create registers a partner account for the authenticated user
// POST /api/v1/partners
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
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

	req.Normalize(h.defaultCurrency)

	now := time.Now()
	p := &Partner{
		ID:           uuid.New(),
		UserID:       userID,
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
		Currency:     req.Currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		if errors.Is(err, ErrPartnerExists) {
			response.Conflict(w, ErrPartnerExists.Error())
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, p.ToResponse())
}

// GetMe returns the caller's partner account
// GET /api/v1/partners/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	p, err := h.repo.GetByUserID(r.Context(), userID)
	if errors.Is(err, ErrPartnerNotFound) {
		response.NotFound(w, "partner account not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, p.ToResponse())
}

// SetupBilling stores the processor customer and payment method handles
// POST /api/v1/partners/billing
func (h *Handler) SetupBilling(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	p, err := h.repo.GetByUserID(r.Context(), userID)
	if errors.Is(err, ErrPartnerNotFound) {
		response.NotFound(w, "partner account not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	var req BillingSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.repo.SetBilling(r.Context(), p.ID, req.StripeCustomerID, req.PaymentMethodID); err != nil {
		response.InternalError(w)
		return
	}

	updated, err := h.repo.GetByID(r.Context(), p.ID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, updated.ToResponse())
}

// Routes returns partner routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/me", h.GetMe)
	r.Post("/billing", h.SetupBilling)

	return r
}
