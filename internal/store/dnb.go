package store

import (
	"context"
	"database/sql"
	"fmt"
)

// DNBRecord is one authority record with its child rows. Empty strings are
// stored as NULL.
type DNBRecord struct {
	DNBID          string
	PrefName       string
	GeoNamesID     string
	GNDID          string
	LoCID          string
	VIAFID         string
	WikidataID     string
	VariantNames   []string
	OldAuthorities []OldAuthority
}

// OldAuthority is a legacy authority number. Prefix and GNDID are nil when
// Number does not have the "(prefix)value" shape.
type OldAuthority struct {
	Number string
	Prefix *string
	GNDID  *string
}

// InsertDNB stores rec and its children in one transaction and returns the
// row id of the dnb_meta row. A dnb_id that already exists yields
// ErrDuplicateKey and leaves the database unchanged.
func (s *Store) InsertDNB(ctx context.Context, rec DNBRecord) (int64, error) {
	if rec.DNBID == "" {
		return 0, fmt.Errorf("insert dnb record: empty dnb_id")
	}
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO dnb_meta (
			dnb_id, pref_name, owl_geonames, owl_gnd, owl_loc, owl_viaf, owl_wikidata
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.DNBID,
			nullableString(rec.PrefName),
			nullableString(rec.GeoNamesID),
			nullableString(rec.GNDID),
			nullableString(rec.LoCID),
			nullableString(rec.VIAFID),
			nullableString(rec.WikidataID),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: dnb id %s", ErrDuplicateKey, rec.DNBID)
			}
			return fmt.Errorf("insert dnb_meta %s: %w", rec.DNBID, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("dnb_meta last insert id: %w", err)
		}

		if len(rec.VariantNames) > 0 {
			stmt, err := tx.PrepareContext(ctx, "INSERT INTO dnb_name (dnb_meta_id, var_name) VALUES (?, ?)")
			if err != nil {
				return fmt.Errorf("prepare dnb_name insert: %w", err)
			}
			defer stmt.Close()
			for _, name := range rec.VariantNames {
				if _, err := stmt.ExecContext(ctx, id, name); err != nil {
					return fmt.Errorf("insert dnb_name for %s: %w", rec.DNBID, err)
				}
			}
		}

		if len(rec.OldAuthorities) > 0 {
			stmt, err := tx.PrepareContext(ctx, "INSERT INTO dnb_old_auth (dnb_meta_id, number, prefix, gnd_id) VALUES (?, ?, ?, ?)")
			if err != nil {
				return fmt.Errorf("prepare dnb_old_auth insert: %w", err)
			}
			defer stmt.Close()
			for _, old := range rec.OldAuthorities {
				if _, err := stmt.ExecContext(ctx, id, old.Number, nullableStringPtr(old.Prefix), nullableStringPtr(old.GNDID)); err != nil {
					return fmt.Errorf("insert dnb_old_auth for %s: %w", rec.DNBID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetDNB loads a stored record by its dnb_id. It returns nil when absent.
func (s *Store) GetDNB(ctx context.Context, dnbID string) (*DNBRecord, error) {
	ctx = ensureContext(ctx)
	var (
		id                                    int64
		pref, geonames, gnd, loc, viaf, wdata sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, pref_name, owl_geonames, owl_gnd, owl_loc, owl_viaf, owl_wikidata
		FROM dnb_meta WHERE dnb_id = ?`, dnbID).Scan(&id, &pref, &geonames, &gnd, &loc, &viaf, &wdata)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dnb %s: %w", dnbID, err)
	}
	rec := &DNBRecord{
		DNBID:      dnbID,
		PrefName:   pref.String,
		GeoNamesID: geonames.String,
		GNDID:      gnd.String,
		LoCID:      loc.String,
		VIAFID:     viaf.String,
		WikidataID: wdata.String,
	}

	names, err := s.db.QueryContext(ctx, "SELECT var_name FROM dnb_name WHERE dnb_meta_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("list dnb names %s: %w", dnbID, err)
	}
	defer names.Close()
	for names.Next() {
		var name string
		if err := names.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan dnb name: %w", err)
		}
		rec.VariantNames = append(rec.VariantNames, name)
	}
	if err := names.Err(); err != nil {
		return nil, err
	}
	names.Close()

	olds, err := s.db.QueryContext(ctx, "SELECT number, prefix, gnd_id FROM dnb_old_auth WHERE dnb_meta_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("list dnb old authority numbers %s: %w", dnbID, err)
	}
	defer olds.Close()
	for olds.Next() {
		var (
			number        string
			prefix, gndID sql.NullString
		)
		if err := olds.Scan(&number, &prefix, &gndID); err != nil {
			return nil, fmt.Errorf("scan old authority number: %w", err)
		}
		old := OldAuthority{Number: number}
		if prefix.Valid {
			old.Prefix = &prefix.String
		}
		if gndID.Valid {
			old.GNDID = &gndID.String
		}
		rec.OldAuthorities = append(rec.OldAuthorities, old)
	}
	return rec, olds.Err()
}
