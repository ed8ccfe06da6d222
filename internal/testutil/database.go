// Package testutil provides shared fixtures for package and command tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/envelope-check/internal/storage"
)

// SetupTestDB creates a migrated in-memory run history that is closed when
// the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.Open(context.Background(), storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	return store
}
