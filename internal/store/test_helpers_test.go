package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/plms/internal/model"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func createTestUser() *model.User {
	last := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	return &model.User{
		ID:          7,
		Email:       "reader@example.com",
		DisplayName: "Reader",
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		LastLoginAt: &last,
	}
}
