package export

import (
	"context"
	"io"

	"github.com/parquet-go/parquet-go"

	"gndmatch/internal/store"
)

const parquetBatchSize = 1024

// MetaRecord is the Parquet schema of a meta export.
type MetaRecord struct {
	DNBID        string  `parquet:"dnb_id"`
	DNBPrefName  string  `parquet:"dnb_pref_name"`
	GazGNDID     string  `parquet:"gaz_gnd_id"`
	GazPrefTitle string  `parquet:"gaz_pref_name"`
	Score        float64 `parquet:"threshold"`
}

// NameRecord is the Parquet schema of a name export.
type NameRecord struct {
	DNBID        string  `parquet:"dnb_id"`
	DNBPrefName  string  `parquet:"dnb_pref_name"`
	DNBName      string  `parquet:"dnb_name"`
	GazGNDID     string  `parquet:"gaz_gnd_id"`
	GazPrefTitle string  `parquet:"gaz_pref_title"`
	GazTitle     string  `parquet:"gaz_title"`
	Score        float64 `parquet:"threshold"`
}

func (e *Exporter) writeParquet(ctx context.Context, w io.Writer, q store.MatchQuery, rows *int64) error {
	if q.Category == store.CategoryName {
		return writeBatches(ctx, e.source, w, q, rows, func(r store.MatchRow) NameRecord {
			return NameRecord{
				DNBID:        r.DNBID,
				DNBPrefName:  r.DNBPrefName,
				DNBName:      r.DNBName,
				GazGNDID:     r.GazGNDID,
				GazPrefTitle: r.GazPrefTitle,
				GazTitle:     r.GazTitle,
				Score:        r.Score,
			}
		})
	}
	return writeBatches(ctx, e.source, w, q, rows, func(r store.MatchRow) MetaRecord {
		return MetaRecord{
			DNBID:        r.DNBID,
			DNBPrefName:  r.DNBPrefName,
			GazGNDID:     r.GazGNDID,
			GazPrefTitle: r.GazPrefTitle,
			Score:        r.Score,
		}
	})
}

func writeBatches[T any](ctx context.Context, src Source, w io.Writer, q store.MatchQuery, rows *int64, convert func(store.MatchRow) T) error {
	pw := parquet.NewGenericWriter[T](w)
	batch := make([]T, 0, parquetBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := pw.Write(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	err := src.MatchRows(ctx, q, func(row store.MatchRow) error {
		*rows++
		batch = append(batch, convert(row))
		if len(batch) == parquetBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		_ = pw.Close()
		return err
	}
	if err := flush(); err != nil {
		_ = pw.Close()
		return err
	}
	return pw.Close()
}
