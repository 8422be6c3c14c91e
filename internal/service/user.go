package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nimson07/postFlow/internal/activity"
	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/event"
	"github.com/nimson07/postFlow/internal/repository"
	apperrors "github.com/nimson07/postFlow/pkg/errors"
	"github.com/nimson07/postFlow/pkg/pagination"
)

// UserService implements account administration.
type UserService struct {
	users   repository.UserRepository
	tracker activity.Tracker
	events  event.Publisher
	logger  *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	tracker activity.Tracker,
	events event.Publisher,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:   users,
		tracker: tracker,
		events:  events,
		logger:  logger,
	}
}

// --- Input types ---

// ListUsersInput holds the filters for listing users.
type ListUsersInput struct {
	Search     string
	Role       string
	Pagination pagination.Params
}

// CreateUserInput holds the parameters for creating a user.
type CreateUserInput struct {
	Email string
	Name  string
	Role  string
}

// UpdateUserInput holds the parameters for updating a user. Nil fields are
// left unchanged.
type UpdateUserInput struct {
	Name *string
	Role *string
}

// --- Operations ---

// List returns a page of users and the total match count.
func (s *UserService) List(ctx context.Context, input ListUsersInput) ([]domain.User, int, error) {
	if input.Role != "" && !domain.IsValidRole(input.Role) {
		return nil, 0, apperrors.InvalidInput("invalid role: " + input.Role)
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Search: strings.TrimSpace(input.Search),
		Role:   input.Role,
		Page:   input.Pagination.Page,
		Limit:  input.Pagination.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Create adds an account without a password. The user sets one through the
// set-password flow before the first login.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if !domain.IsValidRole(input.Role) {
		return nil, apperrors.InvalidInput("invalid role: " + input.Role)
	}

	_, err := s.users.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, apperrors.AlreadyExistsMessage("user already exists")
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Name:      name,
		Role:      input.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExistsMessage("user already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.events.PublishUserCreated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.created event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return user, nil
}

// Update changes the name and/or role of a user.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		user.Name = name
	}
	if input.Role != nil {
		if !domain.IsValidRole(*input.Role) {
			return nil, apperrors.InvalidInput("invalid role: " + *input.Role)
		}
		user.Role = *input.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("user not found")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.events.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return user, nil
}

// Delete removes a user, their posts and their activity record.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFoundMessage("user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.tracker.Forget(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to forget activity record",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
	)

	return nil
}
