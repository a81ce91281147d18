package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MatchRow is one exported match joined back to its source records. DNBName
// and GazTitle are only populated for the name category.
type MatchRow struct {
	DNBID        string
	DNBPrefName  string
	DNBName      string
	GazGNDID     string
	GazPrefTitle string
	GazTitle     string
	Score        float64
}

// MatchQuery selects exported matches. A Limit of zero means unlimited.
type MatchQuery struct {
	Category  Category
	Threshold float64
	Limit     int
}

const exportMetaQuery = `SELECT
	dnb_meta.dnb_id,
	COALESCE(dnb_meta.pref_name, ''),
	'',
	gaz_ident_gnd.gnd_id,
	COALESCE(gaz_meta.pref_title, ''),
	'',
	fuzzy_meta.jarow
FROM fuzzy_meta
INNER JOIN dnb_meta      ON dnb_meta.id = fuzzy_meta.dnb_meta_id
INNER JOIN gaz_meta      ON gaz_meta.id = fuzzy_meta.gaz_meta_id
INNER JOIN gaz_ident_gnd ON gaz_ident_gnd.gaz_id = gaz_meta.gaz_id
WHERE fuzzy_meta.jarow >= ?
GROUP BY dnb_meta.dnb_id
ORDER BY dnb_meta.dnb_id`

const exportNameQuery = `SELECT
	dnb_meta.dnb_id,
	COALESCE(dnb_meta.pref_name, ''),
	dnb_name.var_name,
	gaz_ident_gnd.gnd_id,
	COALESCE(gaz_meta.pref_title, ''),
	gaz_name.title,
	fuzzy_name.jarow
FROM fuzzy_name
INNER JOIN dnb_name      ON dnb_name.id = fuzzy_name.dnb_name_id
INNER JOIN gaz_name      ON gaz_name.id = fuzzy_name.gaz_name_id
INNER JOIN dnb_meta      ON dnb_meta.id = dnb_name.dnb_meta_id
INNER JOIN gaz_meta      ON gaz_meta.gaz_id = gaz_name.gaz_id
INNER JOIN gaz_ident_gnd ON gaz_ident_gnd.gaz_id = gaz_meta.gaz_id
WHERE fuzzy_name.jarow > ?
GROUP BY dnb_meta.dnb_id
ORDER BY dnb_meta.dnb_id`

// MatchRows streams one row per DNB id that has a qualifying candidate linked
// to a Gazetteer record carrying a GND identifier. fn is called in DNB id
// order; returning an error stops the iteration.
func (s *Store) MatchRows(ctx context.Context, q MatchQuery, fn func(MatchRow) error) error {
	ctx = ensureContext(ctx)
	if err := q.Category.valid(); err != nil {
		return err
	}
	query := exportMetaQuery
	if q.Category == CategoryName {
		query = exportNameQuery
	}
	args := []any{q.Threshold}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s matches: %w", q.Category, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row     MatchRow
			dnbName sql.NullString
		)
		if err := rows.Scan(&row.DNBID, &row.DNBPrefName, &dnbName, &row.GazGNDID, &row.GazPrefTitle, &row.GazTitle, &row.Score); err != nil {
			return fmt.Errorf("scan %s match: %w", q.Category, err)
		}
		row.DNBName = dnbName.String
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}
