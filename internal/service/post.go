package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/event"
	"github.com/nimson07/postFlow/internal/repository"
	apperrors "github.com/nimson07/postFlow/pkg/errors"
	"github.com/nimson07/postFlow/pkg/pagination"
)

// PostService implements post submission and moderation.
type PostService struct {
	posts  repository.PostRepository
	events event.Publisher
	logger *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, events event.Publisher, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		events: events,
		logger: logger,
	}
}

// --- Input types ---

// ListPostsInput holds the filters for listing posts.
type ListPostsInput struct {
	Search     string
	Status     string
	Pagination pagination.Params
}

// CreatePostInput holds the parameters for submitting a post.
type CreatePostInput struct {
	Title   string
	Content string
}

// UpdateStatusInput holds a moderation decision.
type UpdateStatusInput struct {
	Status          string
	RejectionReason *string
}

// --- Operations ---

// List returns a page of posts visible to caller. Ordinary users only see
// their own posts; administrators see everything.
func (s *PostService) List(ctx context.Context, caller *domain.AuthorizedContext, input ListPostsInput) ([]domain.Post, int, error) {
	if input.Status != "" && !domain.IsValidPostStatus(input.Status) {
		return nil, 0, apperrors.InvalidInput("invalid status: " + input.Status)
	}

	filter := repository.PostFilter{
		Search: strings.TrimSpace(input.Search),
		Status: input.Status,
		Page:   input.Pagination.Page,
		Limit:  input.Pagination.Limit,
	}
	if !caller.IsAdmin() {
		filter.UserID = caller.ID
	}

	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// Create submits a post for moderation.
func (s *PostService) Create(ctx context.Context, caller *domain.AuthorizedContext, input CreatePostInput) (*domain.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if utf8.RuneCountInString(title) > domain.MaxPostTitleLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("title must be at most %d characters", domain.MaxPostTitleLength))
	}
	if content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	now := time.Now().UTC()
	post := &domain.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Status:    domain.PostStatusPending,
		UserID:    caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if err := s.events.PublishPostCreated(ctx, post); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post.created event",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
	)

	return s.withAuthor(ctx, post), nil
}

// UpdateStatus records a moderation decision. The rejection reason is kept
// only for REJECTED.
func (s *PostService) UpdateStatus(ctx context.Context, id string, input UpdateStatusInput) (*domain.Post, error) {
	if !domain.IsValidPostStatus(input.Status) {
		return nil, apperrors.InvalidInput("invalid status: " + input.Status)
	}

	post, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	post.ApplyStatus(input.Status, input.RejectionReason)

	if err := s.posts.UpdateStatus(ctx, post); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("post not found")
		}
		return nil, fmt.Errorf("update post status: %w", err)
	}

	if err := s.events.PublishPostStatusChanged(ctx, post); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post.status_changed event",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "post status changed",
		slog.String("post_id", post.ID),
		slog.String("status", post.Status),
	)

	return post, nil
}

// Delete removes a post. Ordinary users may only delete their own.
func (s *PostService) Delete(ctx context.Context, caller *domain.AuthorizedContext, id string) error {
	post, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if !caller.IsAdmin() && !post.IsOwnedBy(caller.ID) {
		return apperrors.Forbidden("not authorized")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFoundMessage("post not found")
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.logger.InfoContext(ctx, "post deleted",
		slog.String("post_id", id),
	)

	return nil
}

func (s *PostService) get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("post not found")
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// withAuthor reloads post with its author. A failed reload returns post
// unchanged.
func (s *PostService) withAuthor(ctx context.Context, post *domain.Post) *domain.Post {
	loaded, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to reload created post",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
		return post
	}
	return loaded
}
