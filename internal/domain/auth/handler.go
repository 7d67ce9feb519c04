package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gouache/gouache-api/internal/middleware"
	"github.com/gouache/gouache-api/internal/pkg/response"
)

// Handler handles auth HTTP requests
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// Register creates a new account
// POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if errors.Is(err, ErrEmailAlreadyExists) {
		response.Conflict(w, ErrEmailAlreadyExists.Error())
		return
	}
	if errors.Is(err, ErrInvalidRole) {
		response.BadRequest(w, ErrInvalidRole.Error())
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, resp)
}

// Login authenticates an account
// POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, resp)
}

// Me returns the authenticated account
// GET /api/v1/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	resp, err := h.service.Me(r.Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		response.NotFound(w, "user not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, resp)
}

// Routes returns auth routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.With(authMiddleware).Get("/me", h.Me)

	return r
}
