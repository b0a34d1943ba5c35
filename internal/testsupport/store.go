package testsupport

import (
	"fmt"
	"testing"
	"time"

	"chorus/internal/catalog"
	"chorus/internal/config"
	"chorus/internal/playlist"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewPlaylistStore builds a playlist store with deterministic persistent
// IDs and a fixed clock.
func NewPlaylistStore(t testing.TB, cfg *config.Config) *playlist.Store {
	t.Helper()

	store := playlist.NewStore(cfg.Paths.PlaylistDir, cfg.Paths.LibraryDir, nil)
	seq := 0
	store.NewID = func() string {
		seq++
		return fmt.Sprintf("%016X", seq)
	}
	store.Now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return store
}
