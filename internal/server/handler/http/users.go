// Package http provides HTTP handlers for the users API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/atinyakov/usersvc/internal/middleware"
	"github.com/atinyakov/usersvc/internal/models"
	"github.com/atinyakov/usersvc/internal/service"
	"github.com/atinyakov/usersvc/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UserService defines the user operations required by the HTTP handlers.
type UserService interface {
	// List returns every stored user.
	List(ctx context.Context) (models.Collection, error)
	// Get returns the user with the given id or service.ErrNotFound.
	Get(ctx context.Context, id int) (*models.User, error)
	// Create stores a new user and returns its assigned id.
	Create(ctx context.Context, req models.CreateUserRequest) (int, error)
	// Update overwrites the user with the given id or returns service.ErrNotFound.
	Update(ctx context.Context, id int, req models.UpdateUserRequest) (*models.User, error)
	// Delete removes the user with the given id or returns service.ErrNotFound.
	Delete(ctx context.Context, id int) (*models.User, error)
}

// Validator checks update payloads before any storage access.
type Validator interface {
	Decode(r io.Reader, dst any) error
}

// UserHandler handles HTTP requests for the /users resource.
type UserHandler struct {
	// UserService performs the underlying user operations.
	UserService UserService
	// Validator decodes and validates update payloads.
	Validator Validator
	// Logger records failures that end in a 500 response.
	Logger *zap.Logger
}

// NewUserHandler creates a UserHandler with the default validator.
func NewUserHandler(svc UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		UserService: svc,
		Validator:   validation.New(),
		Logger:      logger,
	}
}

type usersResponse struct {
	Users models.Collection `json:"users"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

type createResponse struct {
	ID int `json:"id"`
}

type errorResponse struct {
	Error any `json:"error"`
}

// List handles GET /users and responds with the full collection.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// Get handles GET /users/{id}.
// Ids that are not integers can never match a user and yield 404.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, userResponse{})
		return
	}

	user, err := h.UserService.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Create handles POST /users.
// The body may hold any subset of the user fields; none is validated.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := validation.DecodeBody(r.Body, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	id, err := h.UserService.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createResponse{ID: id})
}

// Update handles PUT /users/{id}.
// The body is validated before the collection is read, so an invalid
// payload gets 400 even for an unknown id.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := h.Validator.Decode(r.Body, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	id, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, userResponse{})
		return
	}

	user, err := h.UserService.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Delete handles DELETE /users/{id} and responds with the removed user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, userResponse{})
		return
	}

	user, err := h.UserService.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// writeError maps err to its response: validation failures to 400,
// missing users to 404 and everything else to 500.
func (h *UserHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var details validation.Errors
	switch {
	case errors.As(err, &details):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: details})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, userResponse{})
	default:
		if h.Logger != nil {
			h.Logger.Error("request failed",
				zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
