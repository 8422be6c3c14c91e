package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nimson07/postFlow/internal/domain"
	"github.com/nimson07/postFlow/internal/repository"
	"github.com/nimson07/postFlow/pkg/database"
	apperrors "github.com/nimson07/postFlow/pkg/errors"
)

const userColumns = `id, email, COALESCE(name, ''), role, password_hash, is_password_set, created_at, updated_at`

// insertArgs lists u in the column order of the users INSERT statements.
func insertArgs(u *domain.User) []any {
	return []any{u.ID, u.Email, nullString(u.Name), u.Role, u.PasswordHash, u.IsPasswordSet, u.CreatedAt, u.UpdatedAt}
}

// userFields returns scan destinations matching userColumns.
func userFields(u *domain.User) []any {
	return []any{&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.IsPasswordSet, &u.CreatedAt, &u.UpdatedAt}
}

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user into the database.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, role, password_hash, is_password_set, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query, insertArgs(u)...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (_ *domain.User, err error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetUserByID", query)
	defer func() { end(err) }()

	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	ctx, end := database.TraceQuery(ctx, "GetUserByEmail", query)
	defer func() { end(err) }()

	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// Update writes the user's name and role.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET name = $1, role = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, nullString(u.Name), u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", u.ID)
	}

	return nil
}

// SetPassword stores the hash and flag together, guarded so that only the
// first caller for a user succeeds. When the guard matches nothing, the
// error is AlreadySet if the user exists and NotFound otherwise.
func (r *UserRepository) SetPassword(ctx context.Context, id, hash string) (_ *domain.User, err error) {
	query := `
		UPDATE users
		SET password_hash = $1, is_password_set = TRUE, updated_at = $2
		WHERE id = $3 AND is_password_set = FALSE
		RETURNING ` + userColumns

	ctx, end := database.TraceQuery(ctx, "SetUserPassword", query)
	defer func() { end(err) }()

	u, err := scanUser(r.pool.QueryRow(ctx, query, hash, time.Now().UTC(), id))
	if !errors.Is(err, apperrors.ErrNotFound) {
		return u, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, apperrors.NotFound("user", id)
	}
	return nil, apperrors.AlreadySet("password already set")
}

// Upsert creates the user or overwrites name, role and credentials of the
// existing row with the same email.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, name, role, password_hash, is_password_set, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    role = EXCLUDED.role,
		    password_hash = EXCLUDED.password_hash,
		    is_password_set = EXCLUDED.is_password_set,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS created`

	var created bool
	err := r.pool.QueryRow(ctx, query, insertArgs(u)...).Scan(&u.ID, &created)
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}

	return created, nil
}

// Delete removes a user from the database by their ID. Their posts go with
// them through the foreign key.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}

	return nil
}

// List returns a page of users, newest first.
func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter) (_ []domain.User, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIndex))
		args = append(args, filter.Role)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM users
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIndex, argIndex+1,
	)

	limit, offset := pageBounds(filter.Page, filter.Limit)
	filterArgs := args
	args = append(args[:len(args):len(args)], limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListUsers", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var (
		users      = []domain.User{}
		totalCount int
	)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(append(userFields(&u), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate user rows: %w", err)
	}

	if len(users) == 0 && offset > 0 {
		totalCount, err = countRows(ctx, r.pool, "users", whereClause, filterArgs)
		if err != nil {
			return nil, 0, err
		}
	}

	return users, totalCount, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User

	if err := row.Scan(userFields(&u)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}
