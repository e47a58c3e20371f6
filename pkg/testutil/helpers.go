// Package testutil provides common utility functions for testing.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iwvelando/temple-portal/internal/media"
	"github.com/iwvelando/temple-portal/internal/store"
	"go.uber.org/zap"
)

// OpenStore opens a store in a temporary directory that is closed when the
// test ends.
func OpenStore(t testing.TB, opts ...store.Option) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "temple.db"), zap.NewNop(), opts...)
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// OpenMedia returns local media storage rooted in a temporary directory and
// served under /media/.
func OpenMedia(t testing.TB) *media.Storage {
	t.Helper()
	ms, err := media.NewLocalStorage(context.Background(), filepath.Join(t.TempDir(), "media"), "/media/", zap.NewNop())
	if err != nil {
		t.Fatalf("media.NewLocalStorage() error = %v", err)
	}
	return ms
}

// FindPooja finds a pooja by title in the poojas slice.
// Returns a pointer to the pooja if found, nil otherwise.
func FindPooja(poojas []store.Pooja, title string) *store.Pooja {
	for i := range poojas {
		if poojas[i].Title == title {
			return &poojas[i]
		}
	}
	return nil
}
