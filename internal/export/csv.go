package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"gndmatch/internal/store"
)

var (
	metaHeader = []string{"#DNB ID", "DNB Pref Name", "Gaz GND ID", "Gaz Pref Name", "Threshold"}
	nameHeader = []string{"#DNB ID", "DNB Pref Name", "DNB Name", "Gaz GND ID", "Gaz Pref Title", "Gaz Title", "Threshold"}
)

func (e *Exporter) writeCSV(ctx context.Context, w io.Writer, q store.MatchQuery, delim rune, rows *int64) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	header := metaHeader
	if q.Category == store.CategoryName {
		header = nameHeader
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	err := e.source.MatchRows(ctx, q, func(row store.MatchRow) error {
		*rows++
		return cw.Write(csvRecord(q.Category, row))
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(category store.Category, row store.MatchRow) []string {
	score := strconv.FormatFloat(row.Score, 'f', -1, 64)
	if category == store.CategoryName {
		return []string{row.DNBID, row.DNBPrefName, row.DNBName, row.GazGNDID, row.GazPrefTitle, row.GazTitle, score}
	}
	return []string{row.DNBID, row.DNBPrefName, row.GazGNDID, row.GazPrefTitle, score}
}
