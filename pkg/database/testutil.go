package database

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var _ DBTX = (pgxmock.PgxPoolIface)(nil)

// MockPool returns a pgxmock pool that is closed when t finishes. Tests
// still call ExpectationsWereMet themselves.
func MockPool(t testing.TB) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}
