package testutil

import (
	"testing"

	"github.com/nhle/issuebox/internal/store"
)

// NewTestIndex creates an in-memory IndexStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestIndex(t *testing.T) *store.IndexStore {
	t.Helper()

	s, err := store.NewIndexStore(":memory:")
	if err != nil {
		t.Fatalf("creating test index: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test index: %v", err)
		}
	})

	return s
}
