// Package storetest opens throwaway SQLite databases carrying the production
// schema.
package storetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"afterschool/internal/store"
)

// Open returns a migrated database closed at test cleanup.
func Open(t testing.TB) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := store.NewDB(context.Background(), store.DriverSQLite, store.SQLiteDSN(path), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedMember inserts a live member and returns its id.
func SeedMember(t testing.TB, db *store.DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Client.Exec(`INSERT INTO members (id, name, joined_at, created_at, updated_at) VALUES ($1, $2, $3, $3, $3)`,
		id, name, now)
	require.NoError(t, err)
	return id
}

// SeedStudent inserts a live member holding a live student role.
func SeedStudent(t testing.TB, db *store.DB, name string) uuid.UUID {
	t.Helper()
	id := SeedMember(t, db, name)
	now := time.Now().UTC()
	_, err := db.Client.Exec(`INSERT INTO students (id, member_id, created_at, updated_at) VALUES ($1, $2, $3, $3)`,
		uuid.New(), id, now)
	require.NoError(t, err)
	return id
}

// Count returns the number of rows in table matching where.
func Count(t testing.TB, db *store.DB, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, db.Client.QueryRow(q, args...).Scan(&n))
	return n
}
