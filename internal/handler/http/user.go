package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/service"
	"github.com/nimson07/postFlow/pkg/httputil"
	"github.com/nimson07/postFlow/pkg/pagination"
)

// UserHandler handles the administrator user endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateUserRequest is the JSON request body for creating a user.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,notblank"`
	Role  string `json:"role" validate:"required,oneof=USER ADMIN"`
}

// UpdateUserRequest is the JSON request body for updating a user. Omitted
// fields are left unchanged.
type UpdateUserRequest struct {
	Name *string `json:"name" validate:"omitempty,notblank"`
	Role *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// --- Response types ---

// UserListResponse is a page of users.
type UserListResponse struct {
	Users      []domain.User   `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}

// --- Handlers ---

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	users, total, err := h.service.List(r.Context(), service.ListUsersInput{
		Search:     r.URL.Query().Get("search"),
		Role:       r.URL.Query().Get("role"),
		Pagination: params,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if users == nil {
		users = []domain.User{}
	}

	httputil.WriteData(w, http.StatusOK, UserListResponse{
		Users:      users,
		Pagination: pagination.NewMeta(total, params),
	})
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Create(r.Context(), service.CreateUserInput{
		Email: domain.NormalizeEmail(req.Email),
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, user)
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), id.String(), service.UpdateUserInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, "user deleted successfully")
}
