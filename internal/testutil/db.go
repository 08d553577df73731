package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/courtside/courtmatch/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// NewSeededTestDB is NewTestDB plus the startup seed: four courts and the
// default weekly hours.
func NewSeededTestDB(t *testing.T) *db.DB {
	t.Helper()

	database := NewTestDB(t)
	if err := database.Seed(context.Background()); err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	return database
}
