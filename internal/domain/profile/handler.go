package profile

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gouache/gouache-api/internal/middleware"
	"github.com/gouache/gouache-api/internal/pkg/response"
)

// Handler handles profile HTTP requests
type Handler struct {
	repo      *Repository
	validator *validator.Validate
}

// NewHandler creates new profile handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{
		repo:      repo,
		validator: validator.New(),
	}
}

func (h *Handler) ownProfile(w http.ResponseWriter, r *http.Request) (*Profile, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return nil, false
	}

	p, err := h.repo.GetByUserID(r.Context(), userID)
	if errors.Is(err, ErrProfileNotFound) {
		response.NotFound(w, "profile not found")
		return nil, false
	}
	if err != nil {
		response.InternalError(w)
		return nil, false
	}
	return p, true
}

func applyUpsert(p *Profile, req *UpsertRequest) {
	p.Bio = sql.NullString{String: req.Bio, Valid: req.Bio != ""}
	p.Disciplines = pq.StringArray(req.Disciplines)
	p.Website = sql.NullString{String: req.Website, Valid: req.Website != ""}
	p.Instagram = sql.NullString{String: req.Instagram, Valid: req.Instagram != ""}
	p.AvatarURL = sql.NullString{String: req.AvatarURL, Valid: req.AvatarURL != ""}
}

// Upsert creates or replaces the caller's artist profile
// PUT /api/v1/profiles/me
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	existing, err := h.repo.GetByUserID(r.Context(), userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		response.InternalError(w)
		return
	}

	if existing == nil {
		now := time.Now()
		p := &Profile{ID: uuid.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		applyUpsert(p, &req)
		if err := h.repo.Create(r.Context(), p); err != nil {
			response.InternalError(w)
			return
		}
		response.Created(w, p.ToResponse())
		return
	}

	applyUpsert(existing, &req)
	if err := h.repo.Update(r.Context(), existing); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, existing.ToResponse())
}

// GetMe returns the caller's profile with portfolio
// GET /api/v1/profiles/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownProfile(w, r)
	if !ok {
		return
	}
	h.respondWithPortfolio(w, r, p)
}

// Get returns a public artist profile with portfolio
// GET /api/v1/profiles/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid profile id")
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrProfileNotFound) {
		response.NotFound(w, "profile not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	h.respondWithPortfolio(w, r, p)
}

func (h *Handler) respondWithPortfolio(w http.ResponseWriter, r *http.Request, p *Profile) {
	pieces, err := h.repo.ListPieces(r.Context(), p.ID)
	if err != nil {
		response.InternalError(w)
		return
	}

	resp := p.ToResponse()
	for i := range pieces {
		resp.Portfolio = append(resp.Portfolio, pieces[i].ToResponse())
	}
	response.OK(w, resp)
}

// AddPiece appends a portfolio piece to the caller's profile
// POST /api/v1/profiles/me/portfolio
func (h *Handler) AddPiece(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownProfile(w, r)
	if !ok {
		return
	}

	var req AddPieceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	piece := &PortfolioPiece{
		ID:          uuid.New(),
		ProfileID:   p.ID,
		Title:       req.Title,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		ImageURL:    req.ImageURL,
		CreatedAt:   time.Now(),
	}

	if err := h.repo.AddPiece(r.Context(), piece); err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, piece.ToResponse())
}

// DeletePiece removes a portfolio piece from the caller's profile
// DELETE /api/v1/profiles/me/portfolio/{pieceID}
func (h *Handler) DeletePiece(w http.ResponseWriter, r *http.Request) {
	p, ok := h.ownProfile(w, r)
	if !ok {
		return
	}

	pieceID, err := uuid.Parse(chi.URLParam(r, "pieceID"))
	if err != nil {
		response.BadRequest(w, "invalid piece id")
		return
	}

	if err := h.repo.DeletePiece(r.Context(), p.ID, pieceID); err != nil {
		if errors.Is(err, ErrPieceNotFound) {
			response.NotFound(w, "portfolio piece not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// Routes returns profile routes. Public reads sit outside the auth
// group.
func Routes(h *Handler, authMiddleware, requireArtist func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireArtist)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.Upsert)
		r.Post("/me/portfolio", h.AddPiece)
		r.Delete("/me/portfolio/{pieceID}", h.DeletePiece)
	})

	return r
}
