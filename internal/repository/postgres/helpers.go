package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nimson07/postFlow/pkg/database"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// pageBounds converts a 1-based page and page size into LIMIT and OFFSET.
func pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}
	return limit, offset
}

// countRows counts the rows of from matching where. Lists use it when a page
// past the end comes back empty and count(*) OVER() had no row to ride on.
func countRows(ctx context.Context, db database.DBTX, from, where string, args []any) (int, error) {
	var n int
	if err := db.QueryRow(ctx, "SELECT count(*) FROM "+from+" "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", from, err)
	}
	return n, nil
}
