package testsupport

import (
	"testing"

	"btvol/internal/config"
	"btvol/internal/devstore"
	"btvol/internal/logging"
)

// MustOpenStore opens a devstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *devstore.Store {
	t.Helper()

	store, err := devstore.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("devstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
