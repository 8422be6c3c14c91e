package http

import (
	"log/slog"
	"net/http"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/gate"
	"github.com/nimson07/postFlow/internal/service"
	apperrors "github.com/nimson07/postFlow/pkg/errors"
	"github.com/nimson07/postFlow/pkg/httputil"
)

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CheckEmailRequest is the JSON request body for the email lookup step.
type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SetPasswordRequest is the JSON request body for initial password setup.
type SetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// --- Response types ---

// TokenResponse pairs a session token with the user it was issued for.
type TokenResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token"`
	User    *domain.User `json:"user"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// --- Handlers ---

// CheckEmail handles POST /api/auth/check-email
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.CheckEmail(r.Context(), domain.NormalizeEmail(req.Email))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.service.Login(r.Context(), service.CredentialsInput{
		Email:    domain.NormalizeEmail(req.Email),
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, TokenResponse{Token: token, User: user})
}

// SetPassword handles POST /api/auth/set-password
func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req SetPasswordRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.service.SetPassword(r.Context(), service.CredentialsInput{
		Email:    domain.NormalizeEmail(req.Email),
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, TokenResponse{
		Message: "password set successfully",
		Token:   token,
		User:    user,
	})
}

// Verify handles GET /api/auth/verify. The token returned is the one the
// auth middleware already issued for this request.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	httputil.WriteData(w, http.StatusOK, TokenResponse{
		Token: RenewedToken(r.Context()),
		User:  user,
	})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	httputil.WriteData(w, http.StatusOK, UserResponse{User: user})
}

func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	ac := gate.FromContext(r.Context())
	if ac == nil {
		httputil.WriteError(w, r, apperrors.Unauthorized("not authenticated"), h.logger)
		return nil, false
	}

	user, err := h.service.Me(r.Context(), ac.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return user, true
}
