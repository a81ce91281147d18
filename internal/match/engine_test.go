package match_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"gndmatch/internal/match"
	"gndmatch/internal/store"
	"gndmatch/internal/testsupport"
)

func seed(t *testing.T) *store.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	testsupport.InsertDNB(t, st, store.DNBRecord{DNBID: "118540238", PrefName: "Goethe, Johann Wolfgang von", VariantNames: []string{"Goethe, J. W."}})
	testsupport.InsertDNB(t, st, store.DNBRecord{DNBID: "4127793-4", PrefName: "München", VariantNames: []string{"Monaco di Baviera", "Minga"}})
	testsupport.InsertDNB(t, st, store.DNBRecord{DNBID: "4005728-8", PrefName: "Berlin", VariantNames: []string{"Berolinum"}})

	testsupport.InsertGaz(t, st, testsupport.GazObject("G1", "Goethe, Johann Wolfgang", []testsupport.GazName{{Title: "Goethe, J.W."}}))
	testsupport.InsertGaz(t, st, testsupport.GazObject("G2", "Muenchen", []testsupport.GazName{{Title: "Monaco"}, {Title: "Munich"}}))
	testsupport.InsertGaz(t, st, testsupport.GazObject("G3", "Hamburg", []testsupport.GazName{{Title: "Hammaburg"}}))
	return st
}

func run(t *testing.T, st *store.Store, category store.Category, threshold float64) (match.Result, []store.MatchPair) {
	t.Helper()
	res, err := match.New(st, nil).Run(context.Background(), match.Options{Category: category, Threshold: threshold})
	if err != nil {
		t.Fatalf("Run(%s, %v): %v", category, threshold, err)
	}
	pairs, err := st.ListCandidates(context.Background(), category)
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	return res, pairs
}

func TestRunGoetheExample(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.InsertDNB(t, st, store.DNBRecord{DNBID: "118540238", PrefName: "Goethe, Johann Wolfgang von"})
	testsupport.InsertGaz(t, st, testsupport.GazObject("G1", "Goethe, Johann Wolfgang", nil))

	res, pairs := run(t, st, store.CategoryMeta, 0.8)
	if res.Candidates != 1 || len(pairs) != 1 {
		t.Fatalf("expected exactly one candidate, got %d (%+v)", res.Candidates, pairs)
	}
	if pairs[0].DNBID != "118540238" || pairs[0].GazID != "G1" || pairs[0].Score < 0.8 {
		t.Fatalf("unexpected candidate: %+v", pairs[0])
	}
	if res.Compared != 1 || res.RunID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunMatchesUmlautSpellings(t *testing.T) {
	st := seed(t)

	_, pairs := run(t, st, store.CategoryMeta, 0.9)
	found := false
	for _, p := range pairs {
		if p.DNBID == "4127793-4" && p.GazID == "G2" {
			found = true
		}
		if p.GazID == "G3" {
			t.Fatalf("Hamburg should not match at 0.9: %+v", p)
		}
	}
	if !found {
		t.Fatalf("München should match Muenchen above 0.9, got %+v", pairs)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	st := seed(t)

	first, firstPairs := run(t, st, store.CategoryName, 0.7)
	second, secondPairs := run(t, st, store.CategoryName, 0.7)
	if first.Candidates != second.Candidates {
		t.Fatalf("candidate counts differ: %d vs %d", first.Candidates, second.Candidates)
	}
	if !reflect.DeepEqual(firstPairs, secondPairs) {
		t.Fatalf("rerun produced a different set:\n%+v\n%+v", firstPairs, secondPairs)
	}
	if first.RunID == second.RunID {
		t.Fatal("each run needs its own id")
	}
}

func TestRunStricterThresholdIsSubset(t *testing.T) {
	st := seed(t)

	for _, category := range store.Categories() {
		_, loose := run(t, st, category, 0.6)
		_, strict := run(t, st, category, 0.9)
		if len(strict) > len(loose) {
			t.Fatalf("%s: stricter threshold produced more candidates (%d > %d)", category, len(strict), len(loose))
		}
		looseSet := make(map[store.MatchPair]bool, len(loose))
		for _, p := range loose {
			looseSet[p] = true
		}
		for _, p := range strict {
			if !looseSet[p] {
				t.Fatalf("%s: %+v missing from looser run", category, p)
			}
			if p.Score < 0.9 {
				t.Fatalf("%s: stale candidate below threshold: %+v", category, p)
			}
		}
	}
}

func TestRunNameCategoryExcludesThreshold(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.InsertDNB(t, st, store.DNBRecord{DNBID: "1", PrefName: "Bonn", VariantNames: []string{"Bonna"}})
	testsupport.InsertGaz(t, st, testsupport.GazObject("G1", "Bonn", []testsupport.GazName{{Title: "Bonna"}}))

	meta, _ := run(t, st, store.CategoryMeta, 1.0)
	name, _ := run(t, st, store.CategoryName, 1.0)
	if meta.Candidates != 1 {
		t.Fatalf("meta keeps scores equal to the threshold, got %d", meta.Candidates)
	}
	if name.Candidates != 0 {
		t.Fatalf("name requires scores above the threshold, got %d", name.Candidates)
	}
}

func TestRunSkipsEmptyValues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.InsertDNB(t, st, store.DNBRecord{DNBID: "1", PrefName: "   "})
	testsupport.InsertDNB(t, st, store.DNBRecord{DNBID: "2", PrefName: "Bonn"})
	testsupport.InsertGaz(t, st, testsupport.GazObject("G1", " \t ", nil))

	res, pairs := run(t, st, store.CategoryMeta, 0)
	if len(pairs) != 0 {
		t.Fatalf("blank titles must never match: %+v", pairs)
	}
	if res.SkippedEmpty != 2 || res.Compared != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	st := seed(t)
	engine := match.New(st, nil)

	for _, threshold := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := engine.Run(context.Background(), match.Options{Category: store.CategoryMeta, Threshold: threshold})
		if !errors.Is(err, match.ErrInvalidThreshold) {
			t.Fatalf("threshold %v: expected ErrInvalidThreshold, got %v", threshold, err)
		}
	}
	_, err := engine.Run(context.Background(), match.Options{Category: "titles", Threshold: 0.8})
	if !errors.Is(err, store.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestRunCancelledKeepsPreviousCandidates(t *testing.T) {
	st := seed(t)
	before, _ := run(t, st, store.CategoryMeta, 0.8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := match.New(st, nil).Run(ctx, match.Options{Category: store.CategoryMeta, Threshold: 0.1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	pairs, err := st.ListCandidates(context.Background(), store.CategoryMeta)
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if int64(len(pairs)) != before.Candidates {
		t.Fatalf("cancelled run must keep the previous %d candidates, found %d", before.Candidates, len(pairs))
	}
}

func TestRunCategoriesAreIndependent(t *testing.T) {
	st := seed(t)
	_, names := run(t, st, store.CategoryName, 0.7)
	_, _ = run(t, st, store.CategoryMeta, 0.99)

	after, err := st.ListCandidates(context.Background(), store.CategoryName)
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if !reflect.DeepEqual(names, after) {
		t.Fatal("a meta run must not touch name candidates")
	}
}
