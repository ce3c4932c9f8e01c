// Package dbtest gives tests a private, fully migrated in-memory store.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/theatre-booking/internal/config"
	"github.com/iliyamo/theatre-booking/internal/database"
)

// Open returns an empty store that is closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.Testing(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Seeded returns a store loaded with the bootstrap catalogue, with
// "today" taken from now.
func Seeded(t testing.TB, now time.Time) *sql.DB {
	t.Helper()
	db := Open(t)
	_, err := database.Seed(context.Background(), db, database.SeedOptions{
		AdminPassword: "admin123",
		BcryptCost:    bcrypt.MinCost,
		Now:           now,
	})
	require.NoError(t, err)
	return db
}
