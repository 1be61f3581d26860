// Package handlers contains the HTTP handlers for the REST API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"userhub-backend/internal/observability"
	"userhub-backend/internal/store"
	"userhub-backend/pkg/api"
	appErrors "userhub-backend/pkg/errors"
)

// UserHandler handles user CRUD requests.
type UserHandler struct {
	store       *store.MemoryStore
	logger      *zap.Logger
	instruments *observability.Instruments
	environment string
	validate    *validator.Validate
}

// NewUserHandler creates a new user handler.
func NewUserHandler(
	st *store.MemoryStore,
	logger *zap.Logger,
	instruments *observability.Instruments,
	environment string,
) *UserHandler {
	return &UserHandler{
		store:       st,
		logger:      logger,
		instruments: instruments,
		environment: environment,
		validate:    validator.New(),
	}
}

// CreateUserRequest is the body for POST /users. Age zero counts as
// missing, matching the required-field contract.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"required,min=1,max=150"`
}

// UpdateUserRequest is the partial body for PUT /users/{userID}.
// Fields are validated individually because a set-but-empty value must
// be rejected, not skipped.
type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Age   *int    `json:"age,omitempty"`
}

func (h *UserHandler) validatePatch(req UpdateUserRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return appErrors.NewValidation("name must not be empty")
	}
	if req.Email != nil {
		if err := h.validate.Var(*req.Email, "required,email"); err != nil {
			return appErrors.NewValidation("email is invalid")
		}
	}
	if req.Age != nil && (*req.Age < 1 || *req.Age > 150) {
		return appErrors.NewValidation("age is out of range")
	}
	return nil
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.store.List()

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("users.count", len(users)))

	api.SuccessList(w, http.StatusOK, users, len(users))
}

// GetUser handles GET /users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	span := trace.SpanFromContext(r.Context())

	id, ok := h.userID(r)
	if !ok {
		span.AddEvent("user not found")
		api.Error(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.store.Get(id)
	if err != nil {
		span.AddEvent("user not found", trace.WithAttributes(attribute.Int("user.id", id)))
		h.respondError(w, err)
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	api.Success(w, http.StatusOK, user)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	span := trace.SpanFromContext(r.Context())

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.AddEvent("invalid request body")
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		span.AddEvent("validation failed")
		api.Error(w, http.StatusBadRequest, "Validation error: name, email and age are required")
		return
	}

	user, err := h.store.Create(req.Name, req.Email, req.Age)
	if err != nil {
		span.AddEvent("email already exists", trace.WithAttributes(attribute.String("user.email", req.Email)))
		h.respondError(w, err)
		return
	}

	span.AddEvent("user.created", trace.WithAttributes(
		attribute.Int("user.id", user.ID),
		attribute.String("user.email", user.Email),
	))
	h.instruments.RecordUserCreated(r.Context(), h.environment)

	h.logger.Info("User created",
		zap.Int("userID", user.ID),
		zap.String("email", user.Email),
	)

	api.SuccessMessage(w, http.StatusCreated, user, "User created successfully")
}

// UpdateUser handles PUT /users/{userID}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	span := trace.SpanFromContext(r.Context())

	id, ok := h.userID(r)
	if !ok {
		span.AddEvent("user not found")
		api.Error(w, http.StatusNotFound, "User not found")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.AddEvent("invalid request body")
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validatePatch(req); err != nil {
		span.AddEvent("validation failed")
		api.Error(w, http.StatusBadRequest, appErrors.Message(err))
		return
	}

	patch := store.UserPatch{Name: req.Name, Email: req.Email, Age: req.Age}
	if patch.Empty() {
		span.AddEvent("empty update")
		api.Error(w, http.StatusBadRequest, "At least one field must be provided")
		return
	}

	user, err := h.store.Update(id, patch)
	if err != nil {
		span.AddEvent(appErrors.Message(err), trace.WithAttributes(attribute.Int("user.id", id)))
		h.respondError(w, err)
		return
	}

	span.AddEvent("user.updated", trace.WithAttributes(attribute.Int("user.id", user.ID)))
	api.Success(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{userID}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	span := trace.SpanFromContext(r.Context())

	id, ok := h.userID(r)
	if !ok {
		span.AddEvent("user not found")
		api.Error(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.store.Delete(id)
	if err != nil {
		span.AddEvent("user not found", trace.WithAttributes(attribute.Int("user.id", id)))
		h.respondError(w, err)
		return
	}

	span.AddEvent("user.deleted", trace.WithAttributes(attribute.Int("user.id", user.ID)))
	h.instruments.RecordUserDeleted(r.Context(), h.environment)

	h.logger.Info("User deleted", zap.Int("userID", user.ID))

	api.SuccessMessage(w, http.StatusOK, user, "User deleted successfully")
}

// userID parses the {userID} route parameter. Anything non-numeric is
// treated as an unknown user.
func (h *UserHandler) userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// respondError maps application errors to HTTP status codes.
func (h *UserHandler) respondError(w http.ResponseWriter, err error) {
	switch {
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, appErrors.Message(err))
	case appErrors.IsConflict(err):
		api.Error(w, http.StatusConflict, appErrors.Message(err))
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, appErrors.Message(err))
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "An internal error occurred")
	}
}
