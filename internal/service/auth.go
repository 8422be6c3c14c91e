package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/event"
	"github.com/nimson07/postFlow/internal/repository"
	apperrors "github.com/nimson07/postFlow/pkg/errors"
)

// TokenIssuer issues session tokens. *auth.TokenIssuer satisfies it.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// AuthService implements the credential flows: email lookup, initial
// password setup and login.
type AuthService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	events     event.Publisher
	bcryptCost int
	logger     *slog.Logger
}

// NewAuthService creates a new auth service. A bcryptCost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewAuthService(
	users repository.UserRepository,
	tokens TokenIssuer,
	events event.Publisher,
	bcryptCost int,
	logger *slog.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		events:     events,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// --- Input/Output types ---

// CheckEmailResult tells a client which login step to show.
type CheckEmailResult struct {
	Email                 string `json:"email"`
	Role                  string `json:"role"`
	RequiresPasswordSetup bool   `json:"requires_password_setup"`
}

// CredentialsInput holds an email and password pair.
type CredentialsInput struct {
	Email    string
	Password string
}

// --- Operations ---

// CheckEmail reports whether the account behind email still needs its
// initial password.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (*CheckEmailResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("user not found")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &CheckEmailResult{
		Email:                 user.Email,
		Role:                  user.Role,
		RequiresPasswordSetup: user.NeedsPasswordSetup(),
	}, nil
}

// SetPassword completes the bootstrap of an account created without a
// password. It succeeds at most once per account; every later call returns
// an AlreadySet error and leaves the stored hash untouched.
func (s *AuthService) SetPassword(ctx context.Context, input CredentialsInput) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.NotFoundMessage("user not found")
		}
		return nil, "", fmt.Errorf("get user by email: %w", err)
	}

	if user.IsPasswordSet {
		return nil, "", apperrors.AlreadySet("password already set")
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	updated, err := s.users.SetPassword(ctx, user.ID, hash)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAlreadySet):
			return nil, "", err
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, "", apperrors.NotFoundMessage("user not found")
		}
		return nil, "", fmt.Errorf("set password: %w", err)
	}

	token, err := s.tokens.Issue(updated)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.events.PublishPasswordSet(ctx, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_set event",
			slog.String("user_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "initial password set",
		slog.String("user_id", updated.ID),
	)

	return updated, token, nil
}

// Login checks email and password and returns a session token. Accounts
// without a password get PasswordNotSet before any hash comparison, so the
// caller can route them to setup.
func (s *AuthService) Login(ctx context.Context, input CredentialsInput) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.InvalidCredentials()
		}
		return nil, "", fmt.Errorf("get user by email: %w", err)
	}

	if user.NeedsPasswordSetup() {
		return nil, "", apperrors.PasswordNotSet()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.InfoContext(ctx, "login rejected",
			slog.String("user_id", user.ID),
		)
		return nil, "", apperrors.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, token, nil
}

// Me re-reads the authenticated user from the store.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMessage("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// SeedAdminInput holds the administrator account to create or reset.
type SeedAdminInput struct {
	Email    string
	Name     string
	Password string
}

// SeedAdmin creates the administrator account, or resets name, role and
// password of an existing account with the same email. It reports whether
// the account was created.
func (s *AuthService) SeedAdmin(ctx context.Context, input SeedAdminInput) (*domain.User, bool, error) {
	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.New().String(),
		Email:         domain.NormalizeEmail(input.Email),
		Name:          strings.TrimSpace(input.Name),
		Role:          domain.RoleAdmin,
		PasswordHash:  hash,
		IsPasswordSet: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.users.Upsert(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("upsert admin: %w", err)
	}

	s.logger.InfoContext(ctx, "admin account seeded",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.Bool("created", created),
	)

	return user, created, nil
}

// HashPassword hashes password with the service's bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
