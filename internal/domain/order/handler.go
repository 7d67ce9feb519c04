package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gouache/gouache-api/internal/domain/artwork"
	"github.com/gouache/gouache-api/internal/middleware"
	"github.com/gouache/gouache-api/internal/pkg/response"
	"github.com/gouache/gouache-api/internal/pkg/stripe"
)

// Handler handles order HTTP requests
type Handler struct {
	service   *Service
	repo      *Repository
	validator *validator.Validate
}

// NewHandler creates new order handler
func NewHandler(service *Service, repo *Repository) *Handler {
	return &Handler{
		service:   service,
		repo:      repo,
		validator: validator.New(),
	}
}

// Place runs checkout for an artwork
// POST /api/v1/orders
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	buyerID := middleware.GetUserID(r.Context())
	if buyerID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	artworkID, err := uuid.Parse(req.ArtworkID)
	if err != nil {
		response.BadRequest(w, "invalid artwork id")
		return
	}

	o, err := h.service.Place(r.Context(), buyerID, PlaceParams{
		ArtworkID:        artworkID,
		StripeCustomerID: req.StripeCustomerID,
		PaymentMethodID:  req.PaymentMethodID,
	})
	if errors.Is(err, artwork.ErrArtworkNotFound) {
		response.NotFound(w, "artwork not found")
		return
	}
	if errors.Is(err, artwork.ErrNotPurchasable) {
		response.Conflict(w, artwork.ErrNotPurchasable.Error())
		return
	}
	var apiErr *stripe.APIError
	if errors.As(err, &apiErr) {
		response.ErrorWithDetails(w, http.StatusPaymentRequired, "payment_failed", apiErr.Message, map[string]string{
			"code": apiErr.Code,
		})
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, o.ToResponse())
}

// List returns the caller's orders
// GET /api/v1/orders
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	buyerID := middleware.GetUserID(r.Context())
	if buyerID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	orders, err := h.repo.ListByBuyer(r.Context(), buyerID)
	if err != nil {
		response.InternalError(w)
		return
	}

	var responses []*Response
	for i := range orders {
		responses = append(responses, orders[i].ToResponse())
	}
	response.OK(w, map[string]interface{}{
		"items": responses,
		"total": len(responses),
	})
}

// Cancel releases the hold on an authorized order
// POST /api/v1/orders/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	buyerID := middleware.GetUserID(r.Context())
	if buyerID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	o, err := h.service.Cancel(r.Context(), buyerID, id)
	if errors.Is(err, ErrOrderNotFound) {
		response.NotFound(w, "order not found")
		return
	}
	if errors.Is(err, ErrNotOrderOwner) {
		response.Forbidden(w, ErrNotOrderOwner.Error())
		return
	}
	if errors.Is(err, ErrInvalidTransition) {
		response.Conflict(w, ErrInvalidTransition.Error())
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, o.ToResponse())
}

// Fulfill captures payment and marks the artwork sold. Admin-gated.
// POST /api/admin/orders/{id}/fulfill
func (h *Handler) Fulfill(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	o, err := h.service.Fulfill(r.Context(), id)
	if errors.Is(err, ErrOrderNotFound) {
		response.NotFound(w, "order not found")
		return
	}
	if errors.Is(err, ErrInvalidTransition) {
		response.Conflict(w, ErrInvalidTransition.Error())
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, o.ToResponse())
}

// Routes returns buyer-facing order routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Place)
	r.Get("/", h.List)
	r.Post("/{id}/cancel", h.Cancel)

	return r
}

// AdminRoutes returns fulfillment routes
func AdminRoutes(h *Handler, authMiddleware, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(requireAdmin)

	r.Post("/{id}/fulfill", h.Fulfill)

	return r
}
