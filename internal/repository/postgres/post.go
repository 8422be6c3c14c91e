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

const postColumns = `p.id, p.title, p.content, p.status, p.rejection_reason, p.user_id, p.created_at, p.updated_at,
			   u.id, u.email, COALESCE(u.name, '')`

// PostRepository implements repository.PostRepository using PostgreSQL.
type PostRepository struct {
	pool database.DBTX
}

// NewPostRepository creates a new PostgreSQL-backed post repository.
func NewPostRepository(pool database.DBTX) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create inserts a new post into the database.
func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, status, rejection_reason, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Content,
		p.Status,
		p.RejectionReason,
		p.UserID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// GetByID retrieves a post and its author by the post ID.
func (r *PostRepository) GetByID(ctx context.Context, id string) (_ *domain.Post, err error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetPostByID", query)
	defer func() { end(err) }()

	var p domain.Post
	err = scanPost(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	return &p, nil
}

// UpdateStatus writes the post's status and rejection reason.
func (r *PostRepository) UpdateStatus(ctx context.Context, p *domain.Post) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE posts
		SET status = $1, rejection_reason = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, p.Status, p.RejectionReason, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", p.ID)
	}

	return nil
}

// Delete removes a post from the database by its ID.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("post", id)
	}

	return nil
}

// List returns a page of posts with their authors, newest first.
func (r *PostRepository) List(ctx context.Context, filter repository.PostFilter) (_ []domain.Post, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("p.user_id = $%d", argIndex))
		args = append(args, filter.UserID)
		argIndex++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM posts p
		JOIN users u ON u.id = p.user_id
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		postColumns, whereClause, argIndex, argIndex+1,
	)

	limit, offset := pageBounds(filter.Page, filter.Limit)
	filterArgs := args
	args = append(args[:len(args):len(args)], limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListPosts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var (
		posts      = []domain.Post{}
		totalCount int
	)
	for rows.Next() {
		var p domain.Post
		if err := scanPost(rows, &p, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan post row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate post rows: %w", err)
	}

	if len(posts) == 0 && offset > 0 {
		totalCount, err = countRows(ctx, r.pool, "posts p", whereClause, filterArgs)
		if err != nil {
			return nil, 0, err
		}
	}

	return posts, totalCount, nil
}

// scanPost reads postColumns, plus any trailing destinations, into p.
func scanPost(row pgx.Row, p *domain.Post, extra ...any) error {
	author := &domain.UserSummary{}
	dest := []any{
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Status,
		&p.RejectionReason,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&author.ID,
		&author.Email,
		&author.Name,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	p.Author = author
	return nil
}
