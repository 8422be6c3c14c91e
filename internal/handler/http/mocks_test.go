package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/repository"
)

// result returns args.Get(i) as T, or the zero T when the mock returned nil.
func result[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	return result[*domain.User](args, 0), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	return result[*domain.User](args, 0), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) SetPassword(ctx context.Context, id, hash string) (*domain.User, error) {
	args := m.Called(ctx, id, hash)
	return result[*domain.User](args, 0), args.Error(1)
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *domain.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	return result[[]domain.User](args, 0), args.Int(1), args.Error(2)
}

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	return result[*domain.Post](args, 0), args.Error(1)
}

func (m *mockPostRepo) UpdateStatus(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPostRepo) List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, int, error) {
	args := m.Called(ctx, filter)
	return result[[]domain.Post](args, 0), args.Int(1), args.Error(2)
}
