package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gndmatch/internal/config"
	"gndmatch/internal/fileutil"
	"gndmatch/internal/logging"
	"gndmatch/internal/store"
)

// RecordStore is the persistence surface the ingestor writes to.
type RecordStore interface {
	InsertDNB(ctx context.Context, rec store.DNBRecord) (int64, error)
	InsertGaz(ctx context.Context, gazID string, payload []byte) error
	RecordRun(ctx context.Context, run store.Run) (string, error)
}

// Options controls ingestion behaviour.
type Options struct {
	// ProgressEvery is the number of accepted records between progress lines.
	ProgressEvery int
	// OldAuthority enables extraction of old authority numbers from DNB nodes.
	OldAuthority bool
	// DNB holds the JSON-LD identifiers of the authority dump.
	DNB config.DNB
}

// OptionsFromConfig derives ingest options from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Options{
		ProgressEvery: cfg.Ingest.ProgressEvery,
		OldAuthority:  cfg.Ingest.OldAuthority,
		DNB:           cfg.DNB,
	}
}

// Result summarises one import.
type Result struct {
	RunID      string        `json:"run_id"`
	Source     string        `json:"source"`
	Accepted   int64         `json:"accepted"`
	Rejected   int64         `json:"rejected"`
	Duplicates int64         `json:"duplicates"`
	Ignored    int64         `json:"ignored"`
	Duration   time.Duration `json:"duration"`
}

// Ingestor streams dumps into a RecordStore.
type Ingestor struct {
	store  RecordStore
	logger *slog.Logger
	opts   Options
}

// New constructs an Ingestor. A nil logger discards output.
func New(st RecordStore, logger *slog.Logger, opts Options) *Ingestor {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = config.Default().Ingest.ProgressEvery
	}
	if opts.DNB.IDPrefix == "" {
		opts.DNB = config.Default().DNB
	}
	return &Ingestor{
		store:  st,
		logger: logging.NewComponentLogger(logger, "ingest"),
		opts:   opts,
	}
}

// ImportDNB imports a DNB JSON-LD dump from path.
func (i *Ingestor) ImportDNB(ctx context.Context, path string) (Result, error) {
	mapper := dnbMapper{keys: i.opts.DNB, oldAuthority: i.opts.OldAuthority}
	return i.run(ctx, path, store.RunKindImportDNB, func(ctx context.Context, raw json.RawMessage) (string, error) {
		rec, err := mapper.mapNode(raw)
		if err != nil {
			return "", err
		}
		_, err = i.store.InsertDNB(ctx, rec)
		return rec.DNBID, err
	})
}

// ImportGaz imports a Gazetteer JSON dump from path.
func (i *Ingestor) ImportGaz(ctx context.Context, path string) (Result, error) {
	return i.run(ctx, path, store.RunKindImportGaz, func(ctx context.Context, raw json.RawMessage) (string, error) {
		id, payload, err := gazPayload(raw)
		if err != nil {
			return "", err
		}
		return id, i.store.InsertGaz(ctx, id, payload)
	})
}

type insertFunc func(ctx context.Context, raw json.RawMessage) (string, error)

func (i *Ingestor) run(ctx context.Context, path, kind string, insert insertFunc) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()
	result := Result{RunID: store.NewRunID(), Source: path}
	logger := logging.WithRun(i.logger, result.RunID).With(logging.String(logging.FieldInput, path))
	logger.Info("import started", logging.String("kind", kind), logging.Bool("old_authority", i.opts.OldAuthority))

	input, err := fileutil.OpenInput(path)
	if err != nil {
		return result, fmt.Errorf("open %s: %w", path, err)
	}
	defer input.Close()

	stream, err := newObjectStream(input)
	if err != nil {
		logging.ErrorWithContext(logger, "import aborted", "decode_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the file is a complete JSON array"),
		)
		return result, err
	}

	for {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(started)
			logger.Warn("import cancelled", logging.Int64("accepted", result.Accepted))
			return result, err
		}

		raw, index, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Duration = time.Since(started)
			logging.ErrorWithContext(logger, "import aborted", "decode_failure",
				logging.Error(err),
				logging.Int("index", index),
				logging.Int64("accepted", result.Accepted),
				logging.String(logging.FieldErrorHint, "records before the failure point were committed; fix the document and re-import"),
			)
			return result, err
		}

		id, err := insert(ctx, raw)
		switch {
		case err == nil:
			result.Accepted++
			if result.Accepted%int64(i.opts.ProgressEvery) == 0 {
				logger.Info("import progress", logging.Int64("accepted", result.Accepted))
			}
		case errors.Is(err, errForeign):
			result.Ignored++
			logger.Debug("ignoring node", logging.Int("index", index), logging.Error(err))
		case errors.Is(err, ErrMalformed):
			result.Rejected++
			logging.WarnWithContext(logger, "record rejected", "malformed_record",
				logging.Int("index", index),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "record lacks its identifying field"),
			)
		case errors.Is(err, store.ErrDuplicateKey):
			result.Duplicates++
			logging.WarnWithContext(logger, "record already exists", "duplicate_key",
				logging.String(logging.FieldRecordID, id),
				logging.Int("index", index),
				logging.String(logging.FieldErrorHint, "the id was imported before; the new copy is ignored"),
			)
		default:
			result.Duration = time.Since(started)
			return result, fmt.Errorf("import record %d: %w", index, err)
		}
	}

	result.Duration = time.Since(started)
	if _, err := i.store.RecordRun(ctx, store.Run{
		ID:         result.RunID,
		Kind:       kind,
		Source:     path,
		Accepted:   result.Accepted,
		Rejected:   result.Rejected,
		Duplicates: result.Duplicates,
		StartedAt:  started,
		FinishedAt: started.Add(result.Duration),
	}); err != nil {
		return result, fmt.Errorf("record run: %w", err)
	}

	logger.Info("import complete",
		logging.Int64("accepted", result.Accepted),
		logging.Int64("rejected", result.Rejected),
		logging.Int64("duplicates", result.Duplicates),
		logging.Int64("ignored", result.Ignored),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}
