package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gouache/gouache-api/internal/domain/partner"
	"github.com/gouache/gouache-api/internal/middleware"
	"github.com/gouache/gouache-api/internal/pkg/response"
)

// PartnerResolver maps an authenticated user to their partner account
type PartnerResolver interface {
	PartnerIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Handler exposes the settlement engine over HTTP
type Handler struct {
	engine   *Engine
	ledger   *Repository
	partners PartnerResolver
}

// NewHandler creates new billing handler
func NewHandler(engine *Engine, ledger *Repository, partners PartnerResolver) *Handler {
	return &Handler{engine: engine, ledger: ledger, partners: partners}
}

// RunRequest narrows an admin-triggered cycle
type RunRequest struct {
	PartnerID   string `json:"partner_id"`
	ForceCharge bool   `json:"force_charge"`
}

// RunCron triggers a full settlement cycle. Scheduler-facing; the route
// sits behind the shared-secret cron middleware.
// POST /internal/billing/run
func (h *Handler) RunCron(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.RunCycle(r.Context(), time.Now(), RunOptions{})
	if err != nil {
		log.Error().Err(err).Msg("Cron billing run failed")
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

// RunAdmin triggers a cycle with optional narrowing and force override
// POST /api/admin/billing/run
func (h *Handler) RunAdmin(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "invalid request body")
		return
	}

	opts := RunOptions{ForceCharge: req.ForceCharge}
	if req.PartnerID != "" {
		id, err := uuid.Parse(req.PartnerID)
		if err != nil {
			response.BadRequest(w, "invalid partner id")
			return
		}
		opts.PartnerID = &id
	}

	result, err := h.engine.RunCycle(r.Context(), time.Now(), opts)
	if errors.Is(err, partner.ErrPartnerNotFound) {
		response.NotFound(w, "partner not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Admin billing run failed")
		response.InternalError(w)
		return
	}
	response.OK(w, result)
}

// History returns the caller's settlement ledger, newest first
// GET /api/v1/billing/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	partnerID, err := h.partners.PartnerIDByUserID(r.Context(), userID)
	if err != nil {
		response.Forbidden(w, "partner account required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.ledger.ListByPartner(r.Context(), partnerID, limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*RecordResponse, 0, len(records))
	for i := range records {
		items = append(items, records[i].ToResponse())
	}
	response.OK(w, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// RecordResponse is the wire form of a ledger record
type RecordResponse struct {
	ID                 string    `json:"id"`
	Amount             int64     `json:"amount"`
	Currency           string    `json:"currency"`
	Status             string    `json:"status"`
	PaymentReferenceID string    `json:"payment_reference_id,omitempty"`
	PeriodStart        string    `json:"period_start"`
	PeriodEnd          string    `json:"period_end"`
	CampaignBreakdown  Breakdown `json:"campaign_breakdown"`
	FailureReason      string    `json:"failure_reason,omitempty"`
	CreatedAt          string    `json:"created_at"`
}

// ToResponse converts entity to response
func (rec *Record) ToResponse() *RecordResponse {
	resp := &RecordResponse{
		ID:                rec.ID.String(),
		Amount:            rec.Amount,
		Currency:          rec.Currency,
		Status:            rec.Status,
		PeriodStart:       rec.BillingPeriodStart.Format("2006-01-02"),
		PeriodEnd:         rec.BillingPeriodEnd.Format("2006-01-02"),
		CampaignBreakdown: rec.CampaignBreakdown,
		CreatedAt:         rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.PaymentReferenceID.Valid {
		resp.PaymentReferenceID = rec.PaymentReferenceID.String
	}
	if rec.FailureReason.Valid {
		resp.FailureReason = rec.FailureReason.String
	}
	return resp
}

// Routes returns the partner-facing billing routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/history", h.History)

	return r
}

// CronRoutes returns the scheduler-facing routes
func CronRoutes(h *Handler, cronAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(cronAuth)

	r.Post("/run", h.RunCron)

	return r
}

// AdminRoutes returns the admin trigger routes
func AdminRoutes(h *Handler, authMiddleware, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(requireAdmin)

	r.Post("/run", h.RunAdmin)

	return r
}
