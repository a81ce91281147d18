package store

import (
	"context"
	"database/sql"
	"fmt"
)

// GazRecord is the derived view of a stored Gazetteer document.
type GazRecord struct {
	GazID     string
	PrefTitle string
	PrefLang  string
	Names     []GazName
	GNDIDs    []string
	Raw       string
}

// GazName is one alternate title of a Gazetteer record.
type GazName struct {
	Title          string
	Lang           string
	Ancient        bool
	Transliterated bool
}

// InsertGaz submits one canonical Gazetteer JSON document. The derivation
// trigger fills gaz_meta, gaz_name and gaz_ident_gnd in the same statement.
// A gazId that already exists yields ErrDuplicateKey.
func (s *Store) InsertGaz(ctx context.Context, gazID string, payload []byte) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO gaz_raw_view (raw) VALUES (json(?))", string(payload)); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: gaz id %s", ErrDuplicateKey, gazID)
			}
			return fmt.Errorf("insert gaz %s: %w", gazID, err)
		}
		return nil
	})
}

// GetGaz loads the derived rows of a Gazetteer record. It returns nil when absent.
func (s *Store) GetGaz(ctx context.Context, gazID string) (*GazRecord, error) {
	ctx = ensureContext(ctx)
	var (
		raw         string
		title, lang sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT gaz_raw.raw, gaz_meta.pref_title, gaz_meta.pref_lang
		FROM gaz_raw INNER JOIN gaz_meta ON gaz_meta.gaz_id = gaz_raw.gaz_id
		WHERE gaz_raw.gaz_id = ?`, gazID).Scan(&raw, &title, &lang)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gaz %s: %w", gazID, err)
	}
	rec := &GazRecord{GazID: gazID, PrefTitle: title.String, PrefLang: lang.String, Raw: raw}

	names, err := s.db.QueryContext(ctx, "SELECT title, lang, ancient, transliterated FROM gaz_name WHERE gaz_id = ? ORDER BY id", gazID)
	if err != nil {
		return nil, fmt.Errorf("list gaz names %s: %w", gazID, err)
	}
	defer names.Close()
	for names.Next() {
		var (
			name                    GazName
			nameLang                sql.NullString
			ancient, transliterated sql.NullInt64
		)
		if err := names.Scan(&name.Title, &nameLang, &ancient, &transliterated); err != nil {
			return nil, fmt.Errorf("scan gaz name: %w", err)
		}
		name.Lang = nameLang.String
		name.Ancient = ancient.Int64 != 0
		name.Transliterated = transliterated.Int64 != 0
		rec.Names = append(rec.Names, name)
	}
	if err := names.Err(); err != nil {
		return nil, err
	}
	names.Close()

	idents, err := s.db.QueryContext(ctx, "SELECT gnd_id FROM gaz_ident_gnd WHERE gaz_id = ? ORDER BY id", gazID)
	if err != nil {
		return nil, fmt.Errorf("list gaz gnd ids %s: %w", gazID, err)
	}
	defer idents.Close()
	for idents.Next() {
		var gnd string
		if err := idents.Scan(&gnd); err != nil {
			return nil, fmt.Errorf("scan gaz gnd id: %w", err)
		}
		rec.GNDIDs = append(rec.GNDIDs, gnd)
	}
	return rec, idents.Err()
}
