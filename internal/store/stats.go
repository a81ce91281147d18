package store

import (
	"context"
	"fmt"
)

// Stats summarises the contents of the record store.
type Stats struct {
	DNBRecords     int64 `json:"dnb_records" yaml:"dnb_records"`
	VariantNames   int64 `json:"variant_names" yaml:"variant_names"`
	OldAuthorities int64 `json:"old_authorities" yaml:"old_authorities"`
	GazRecords     int64 `json:"gaz_records" yaml:"gaz_records"`
	GazNames       int64 `json:"gaz_names" yaml:"gaz_names"`
	GazGNDLinks    int64 `json:"gaz_gnd_links" yaml:"gaz_gnd_links"`
	MetaCandidates int64 `json:"meta_candidates" yaml:"meta_candidates"`
	NameCandidates int64 `json:"name_candidates" yaml:"name_candidates"`
	RecentRuns     []Run `json:"recent_runs" yaml:"recent_runs"`
}

// Stats counts the rows of every record and candidate table and loads up to
// recentRuns run entries.
func (s *Store) Stats(ctx context.Context, recentRuns int) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	counters := []struct {
		table string
		dest  *int64
	}{
		{"dnb_meta", &stats.DNBRecords},
		{"dnb_name", &stats.VariantNames},
		{"dnb_old_auth", &stats.OldAuthorities},
		{"gaz_meta", &stats.GazRecords},
		{"gaz_name", &stats.GazNames},
		{"gaz_ident_gnd", &stats.GazGNDLinks},
		{"fuzzy_meta", &stats.MetaCandidates},
		{"fuzzy_name", &stats.NameCandidates},
	}
	for _, c := range counters {
		n, err := countRows(s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+c.table))
		if err != nil {
			return Stats{}, fmt.Errorf("count %s: %w", c.table, err)
		}
		*c.dest = n
	}

	runs, err := s.RecentRuns(ctx, recentRuns)
	if err != nil {
		return Stats{}, err
	}
	stats.RecentRuns = runs
	return stats, nil
}
