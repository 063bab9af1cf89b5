package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns an in-memory database with the schema applied. It is
// closed when the test ends. Seed statements run in order after the schema.
func NewTestDB(t testing.TB, seed ...string) *sql.DB {
	t.Helper()

	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	for _, stmt := range seed {
		if _, err := database.Exec(stmt); err != nil {
			t.Fatalf("seeding test database: %v", err)
		}
	}
	return database
}
