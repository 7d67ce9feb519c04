package artwork

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

const maxUploadBytes = 20 << 20

// ArtistResolver maps an authenticated user to their artist profile
type ArtistResolver interface {
	ProfileIDByUserID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Handler handles artwork HTTP requests
type Handler struct {
	repo      *Repository
	uploads   *UploadService
	artists   ArtistResolver
	validator *validator.Validate
}

// NewHandler creates new artwork handler
func NewHandler(repo *Repository, uploads *UploadService, artists ArtistResolver) *Handler {
	return &Handler{
		repo:      repo,
		uploads:   uploads,
		artists:   artists,
		validator: validator.New(),
	}
}

func (h *Handler) resolveArtist(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, false
	}
	artistID, err := h.artists.ProfileIDByUserID(r.Context(), userID)
	if err != nil {
		response.Forbidden(w, "artist profile required")
		return uuid.Nil, false
	}
	return artistID, true
}

func (h *Handler) ownedArtwork(w http.ResponseWriter, r *http.Request) (*Artwork, bool) {
	artistID, ok := h.resolveArtist(w, r)
	if !ok {
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid artwork id")
		return nil, false
	}

	a, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrArtworkNotFound) {
		response.NotFound(w, "artwork not found")
		return nil, false
	}
	if err != nil {
		response.InternalError(w)
		return nil, false
	}
	if a.ArtistID != artistID {
		response.Forbidden(w, ErrNotArtworkOwner.Error())
		return nil, false
	}
	return a, true
}

// List returns published listings
// GET /api/v1/artworks
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	artworks, err := h.repo.ListPublished(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	var responses []*Response
	for i := range artworks {
		responses = append(responses, artworks[i].ToResponse())
	}
	response.OK(w, map[string]interface{}{
		"items": responses,
		"total": len(responses),
	})
}

// Get returns a listing
// GET /api/v1/artworks/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid artwork id")
		return
	}

	a, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrArtworkNotFound) {
		response.NotFound(w, "artwork not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, a.ToResponse())
}

// Create creates a draft listing
// POST /api/v1/artworks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	artistID, ok := h.resolveArtist(w, r)
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

	if req.Currency == "" {
		req.Currency = "usd"
	}

	now := time.Now()
	a := &Artwork{
		ID:          uuid.New(),
		ArtistID:    artistID,
		Title:       req.Title,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.Create(r.Context(), a); err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, a.ToResponse())
}

// Update edits a listing
// PUT /api/v1/artworks/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownedArtwork(w, r)
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

	if req.Title != "" {
		a.Title = req.Title
	}
	if req.Description != "" {
		a.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.PriceCents != nil {
		a.PriceCents = *req.PriceCents
	}

	if err := h.repo.Update(r.Context(), a); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, a.ToResponse())
}

// UploadImage stores a processed image for a listing
// POST /api/v1/artworks/{id}/image
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownedArtwork(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "image file required")
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(r.Context(), a.ID, file)
	if err != nil {
		response.BadRequest(w, "could not process image")
		return
	}

	if err := h.repo.SetImages(r.Context(), a.ID, result.ImageURL, result.ThumbnailURL); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"image_url":     result.ImageURL,
		"thumbnail_url": result.ThumbnailURL,
		"width":         result.Width,
		"height":        result.Height,
	})
}

// Publish makes a listing visible in the marketplace
// POST /api/v1/artworks/{id}/publish
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	a, ok := h.ownedArtwork(w, r)
	if !ok {
		return
	}

	if !a.ImageURL.Valid {
		response.BadRequest(w, "upload an image before publishing")
		return
	}

	if err := h.repo.SetStatus(r.Context(), a.ID, StatusPublished); err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"status": string(StatusPublished)})
}

// Routes returns artwork routes. Reads are public, writes require an
// artist.
func Routes(h *Handler, authMiddleware, requireArtist func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireArtist)

		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/image", h.UploadImage)
		r.Post("/{id}/publish", h.Publish)
	})

	return r
}
