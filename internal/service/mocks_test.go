package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/nimson07/postFlow/internal/activity"
	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/repository"
)

// result returns args.Get(i) as T, or the zero T when the mock returned nil.
func result[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	return result[*domain.User](args, 0), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return result[*domain.User](args, 0), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) SetPassword(ctx context.Context, id, hash string) (*domain.User, error) {
	args := m.Called(ctx, id, hash)
	return result[*domain.User](args, 0), args.Error(1)
}

func (m *mockUserRepository) Upsert(ctx context.Context, user *domain.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	return result[[]domain.User](args, 0), args.Int(1), args.Error(2)
}

// --- Mock Post Repository ---

type mockPostRepository struct {
	mock.Mock
}

func (m *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	return result[*domain.Post](args, 0), args.Error(1)
}

func (m *mockPostRepository) UpdateStatus(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPostRepository) List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, int, error) {
	args := m.Called(ctx, filter)
	return result[[]domain.Post](args, 0), args.Int(1), args.Error(2)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishUserCreated(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishPasswordSet(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPublisher) PublishPostStatusChanged(ctx context.Context, post *domain.Post) error {
	return m.Called(ctx, post).Error(0)
}

// --- Mock Activity Tracker ---

type mockTracker struct {
	mock.Mock
}

func (m *mockTracker) Touch(ctx context.Context, userID string) (activity.Outcome, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(activity.Outcome), args.Error(1)
}

func (m *mockTracker) Forget(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}
