package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates an in-memory database that is closed when the test ends.
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := New(context.Background(), ":memory:")
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// SetClock overrides the time source used for created/updated timestamps.
func (d *DB) SetClock(now func() time.Time) {
	d.now = now
}
