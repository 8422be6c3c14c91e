package repository

import (
	"context"

	"github.com/nimson07/postFlow/internal/domain"
)

// UserFilter holds the criteria for listing users. Search matches email or
// name case-insensitively.
type UserFilter struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

// PostFilter holds the criteria for listing posts. Search matches title or
// content case-insensitively; a non-empty UserID restricts the listing to
// that author.
type PostFilter struct {
	Search string
	Status string
	UserID string
	Page   int
	Limit  int
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies the name and role of an existing user.
	Update(ctx context.Context, user *domain.User) error

	// SetPassword stores hash and marks the password as set in one
	// statement. It only succeeds while no password is set; otherwise it
	// returns apperrors.ErrAlreadySet, or apperrors.ErrNotFound when the
	// user no longer exists.
	SetPassword(ctx context.Context, id, hash string) (*domain.User, error)

	// Upsert creates the user or, if the email exists, overwrites its name,
	// role and password. It reports whether a row was created.
	Upsert(ctx context.Context, user *domain.User) (created bool, err error)

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error

	// List returns one page of users and the total number of matches.
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
}

// PostRepository defines the interface for post persistence operations.
type PostRepository interface {
	// Create inserts a new post into the store.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// UpdateStatus persists the post's status and rejection reason.
	UpdateStatus(ctx context.Context, post *domain.Post) error

	// Delete removes a post from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// List returns one page of posts, newest first, with their authors and
	// the total number of matches.
	List(ctx context.Context, filter PostFilter) ([]domain.Post, int, error)
}
