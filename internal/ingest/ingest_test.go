package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"gndmatch/internal/ingest"
	"gndmatch/internal/logging"
	"gndmatch/internal/store"
	"gndmatch/internal/testsupport"
)

func newIngestor(t *testing.T, st *store.Store, opts ingest.Options) (*ingest.Ingestor, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Writer: &buf, OutputPaths: []string{}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	return ingest.New(st, logger, opts), &buf
}

func TestImportDNB(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	dump := testsupport.DNBDump(
		testsupport.DNBNode("118540238", "Goethe, Johann Wolfgang von", []string{"Goethe, J. W."},
			"http://viaf.org/viaf/24602065", "http://www.wikidata.org/entity/Q5879"),
		map[string]any{"@id": testsupport.DNBPrefix + "118540238/about"},
		testsupport.DNBNode("4005728-8", "Berlin", nil),
	)
	// A node without @id inside an otherwise valid record array.
	dump = append(dump, []any{map[string]any{"name": "anonymous"}})
	path := filepath.Join(testsupport.BaseDir(cfg), "dnb.json")
	testsupport.WriteJSON(t, path, dump)

	ing, logs := newIngestor(t, st, ingest.OptionsFromConfig(cfg))
	res, err := ing.ImportDNB(ctx, path)
	if err != nil {
		t.Fatalf("ImportDNB: %v", err)
	}
	if res.Accepted != 2 || res.Rejected != 1 || res.Ignored != 1 || res.Duplicates != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.RunID == "" {
		t.Fatal("expected run id")
	}

	rec, err := st.GetDNB(ctx, "118540238")
	if err != nil {
		t.Fatalf("GetDNB: %v", err)
	}
	if rec == nil || rec.VIAFID != "24602065" || rec.WikidataID != "Q5879" || len(rec.VariantNames) != 1 {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if !strings.Contains(logs.String(), `"event_type":"malformed_record"`) {
		t.Fatalf("expected malformed record warning, logs: %s", logs.String())
	}

	stats, err := st.Stats(ctx, 5)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats.RecentRuns) != 1 || stats.RecentRuns[0].ID != res.RunID || stats.RecentRuns[0].Accepted != 2 {
		t.Fatalf("expected recorded run, got %+v", stats.RecentRuns)
	}
}

func TestImportDNBDuplicateWarnsOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	dump := testsupport.DNBDump(
		testsupport.DNBNode("118540238", "Goethe, Johann Wolfgang von", nil),
		testsupport.DNBNode("118540238", "Goethe, J. W. von", []string{"Goethe"}),
	)
	path := filepath.Join(testsupport.BaseDir(cfg), "dnb.json")
	testsupport.WriteJSON(t, path, dump)

	ing, logs := newIngestor(t, st, ingest.OptionsFromConfig(cfg))
	res, err := ing.ImportDNB(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportDNB: %v", err)
	}
	if res.Accepted != 1 || res.Duplicates != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if n := strings.Count(logs.String(), `"event_type":"duplicate_key"`); n != 1 {
		t.Fatalf("expected exactly one duplicate warning, got %d", n)
	}
	if !strings.Contains(logs.String(), `"record_id":"118540238"`) {
		t.Fatalf("duplicate warning must name the id, logs: %s", logs.String())
	}

	stats, err := st.Stats(context.Background(), 0)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.DNBRecords != 1 || stats.VariantNames != 0 {
		t.Fatalf("expected the first copy only: %+v", stats)
	}
}

func TestImportDNBOldAuthorityFlag(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		cfg := testsupport.NewConfig(t)
		st := testsupport.MustOpenStore(t, cfg)
		node := testsupport.WithOldAuthorities(testsupport.DNBNode("1", "Bonn", nil), "(DE-588)1", "1")
		path := filepath.Join(testsupport.BaseDir(cfg), "dnb.json")
		testsupport.WriteJSON(t, path, testsupport.DNBDump(node))

		opts := ingest.OptionsFromConfig(cfg)
		opts.OldAuthority = enabled
		ing, _ := newIngestor(t, st, opts)
		if _, err := ing.ImportDNB(context.Background(), path); err != nil {
			t.Fatalf("ImportDNB: %v", err)
		}

		stats, err := st.Stats(context.Background(), 0)
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		want := int64(0)
		if enabled {
			want = 2
		}
		if stats.OldAuthorities != want {
			t.Fatalf("old authority enabled=%v: stored %d, want %d", enabled, stats.OldAuthorities, want)
		}
	}
}

func TestImportDNBGzip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	path := filepath.Join(testsupport.BaseDir(cfg), "dnb.json.gz")
	testsupport.WriteGzip(t, path, testsupport.MustJSON(t, testsupport.DNBDump(testsupport.DNBNode("1", "Bonn", nil))))

	ing, _ := newIngestor(t, st, ingest.OptionsFromConfig(cfg))
	res, err := ing.ImportDNB(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportDNB: %v", err)
	}
	if res.Accepted != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestImportDNBDecodeFailureKeepsCommittedRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	valid := testsupport.MustJSON(t, testsupport.DNBNode("1", "Bonn", nil))
	doc := "[[" + string(valid) + "], [{\"@id\": "
	path := filepath.Join(testsupport.BaseDir(cfg), "dnb.json")
	testsupport.WriteFile(t, path, []byte(doc))

	ing, logs := newIngestor(t, st, ingest.OptionsFromConfig(cfg))
	res, err := ing.ImportDNB(context.Background(), path)
	if !errors.Is(err, ingest.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if res.Accepted != 1 {
		t.Fatalf("accepted = %d, want 1", res.Accepted)
	}
	if !strings.Contains(logs.String(), `"event_type":"decode_failure"`) {
		t.Fatalf("expected decode failure log, logs: %s", logs.String())
	}
	rec, err := st.GetDNB(context.Background(), "1")
	if err != nil || rec == nil {
		t.Fatalf("record before the failure point must stay committed: %v %v", rec, err)
	}
}

func TestImportMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ing, _ := newIngestor(t, st, ingest.OptionsFromConfig(cfg))
	if _, err := ing.ImportGaz(context.Background(), filepath.Join(testsupport.BaseDir(cfg), "missing.json")); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestImportCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	path := filepath.Join(testsupport.BaseDir(cfg), "gaz.json")
	testsupport.WriteJSON(t, path, []any{testsupport.GazObject("G1", "Rom", nil)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ing, _ := newIngestor(t, st, ingest.OptionsFromConfig(cfg))
	res, err := ing.ImportGaz(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Accepted != 0 {
		t.Fatalf("nothing should be imported after cancellation: %+v", res)
	}
}

func TestImportGaz(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithProgressEvery(2))
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	objects := []any{
		testsupport.GazObject(2042601, "Rom", []testsupport.GazName{{Title: "Roma", Language: "ita"}}, "4050471-2"),
		testsupport.GazObject("2048575", "Berlin", nil, "4005728-8"),
		map[string]any{"prefName": map[string]any{"title": "Ohne ID"}},
		testsupport.GazObject("2048575", "Berlin again", nil),
		testsupport.GazObject("2070000", "Bonn", nil),
		testsupport.GazObject("2070001", "Köln", nil),
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "gaz.json")
	testsupport.WriteJSON(t, path, objects)

	ing, logs := newIngestor(t, st, ingest.OptionsFromConfig(cfg))
	res, err := ing.ImportGaz(ctx, path)
	if err != nil {
		t.Fatalf("ImportGaz: %v", err)
	}
	if res.Accepted != 4 || res.Rejected != 1 || res.Duplicates != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if n := strings.Count(logs.String(), `"msg":"import progress"`); n != 2 {
		t.Fatalf("expected progress every 2 accepted records (2 lines), got %d", n)
	}

	rec, err := st.GetGaz(ctx, "2042601")
	if err != nil {
		t.Fatalf("GetGaz: %v", err)
	}
	if rec == nil || rec.PrefTitle != "Rom" || len(rec.Names) != 1 || len(rec.GNDIDs) != 1 {
		t.Fatalf("unexpected derived record: %#v", rec)
	}
	again, err := st.GetGaz(ctx, "2048575")
	if err != nil {
		t.Fatalf("GetGaz: %v", err)
	}
	if again.PrefTitle != "Berlin" {
		t.Fatalf("duplicate must not replace the first copy: %#v", again)
	}
}
