package testsupport

import (
	"context"
	"testing"

	"speakertag/internal/config"
	"speakertag/internal/speakermatch"
	"speakertag/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SaveRun persists a result for tests using the provided store.
func SaveRun(t testing.TB, st *store.Store, meetingID string, result speakermatch.Result) *store.Run {
	t.Helper()

	run, err := st.SaveRun(context.Background(), meetingID, result)
	if err != nil {
		t.Fatalf("store.SaveRun: %v", err)
	}
	return run
}
