package testsupport

import (
	"testing"

	"wavecast/internal/config"
	"wavecast/internal/taskstore"
)

// MustOpenStore opens a task store for the given config and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *taskstore.Store {
	t.Helper()
	store, err := taskstore.Open(cfg)
	if err != nil {
		t.Fatalf("open task store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
