package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/gate"
	"github.com/nimson07/postFlow/internal/service"
	"github.com/nimson07/postFlow/pkg/httputil"
	"github.com/nimson07/postFlow/pkg/pagination"
)

// PostHandler handles the post moderation endpoints.
type PostHandler struct {
	service *service.PostService
	logger  *slog.Logger
}

// NewPostHandler creates a new post HTTP handler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreatePostRequest is the JSON request body for submitting a post.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,notblank"`
}

// UpdateStatusRequest is the JSON request body for a moderation decision.
type UpdateStatusRequest struct {
	Status          string  `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
	RejectionReason *string `json:"rejection_reason"`
}

// --- Response types ---

// PostListResponse is a page of posts.
type PostListResponse struct {
	Posts      []domain.Post   `json:"posts"`
	Pagination pagination.Meta `json:"pagination"`
}

// --- Handlers ---

// List handles GET /api/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	posts, total, err := h.service.List(r.Context(), gate.FromContext(r.Context()), service.ListPostsInput{
		Search:     r.URL.Query().Get("search"),
		Status:     r.URL.Query().Get("status"),
		Pagination: params,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if posts == nil {
		posts = []domain.Post{}
	}

	httputil.WriteData(w, http.StatusOK, PostListResponse{
		Posts:      posts,
		Pagination: pagination.NewMeta(total, params),
	})
}

// Create handles POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	post, err := h.service.Create(r.Context(), gate.FromContext(r.Context()), service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, post)
}

// UpdateStatus handles PATCH /api/posts/{id}/status
func (h *PostHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}

	if req.RejectionReason != nil {
		reason := strings.TrimSpace(*req.RejectionReason)
		req.RejectionReason = &reason
	}

	post, err := h.service.UpdateStatus(r.Context(), id.String(), service.UpdateStatusInput{
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), gate.FromContext(r.Context()), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, "post deleted successfully")
}
