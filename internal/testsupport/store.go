package testsupport

import (
	"context"
	"testing"

	"gndmatch/internal/config"
	"gndmatch/internal/store"
)

// MustOpenStore opens a store.Store with schema creation for tests and
// registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg, store.Options{CreateSchema: true})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// InsertDNB stores a DNB record for tests and returns its row id.
func InsertDNB(t testing.TB, st *store.Store, rec store.DNBRecord) int64 {
	t.Helper()

	id, err := st.InsertDNB(context.Background(), rec)
	if err != nil {
		t.Fatalf("store.InsertDNB(%s): %v", rec.DNBID, err)
	}
	return id
}

// InsertGaz stores a Gazetteer document built by GazObject.
func InsertGaz(t testing.TB, st *store.Store, obj map[string]any) {
	t.Helper()

	payload := MustJSON(t, obj)
	if err := st.InsertGaz(context.Background(), GazID(obj), payload); err != nil {
		t.Fatalf("store.InsertGaz: %v", err)
	}
}
