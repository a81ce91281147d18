package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"gndmatch/internal/fileutil"
	"gndmatch/internal/logging"
	"gndmatch/internal/store"
)

// Supported output formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// ErrUnsupportedFormat reports an output format other than csv or parquet.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Source provides the rows to export.
type Source interface {
	MatchRows(ctx context.Context, q store.MatchQuery, fn func(store.MatchRow) error) error
}

// Options describes one export.
type Options struct {
	Category  store.Category
	Threshold float64
	// Limit caps the number of rows; zero exports everything.
	Limit     int
	Format    string
	Delimiter string
	Output    string
}

// Result summarises an export.
type Result struct {
	Output   string        `json:"output"`
	Format   string        `json:"format"`
	Rows     int64         `json:"rows"`
	Duration time.Duration `json:"duration"`
}

// Exporter writes match rows to files.
type Exporter struct {
	source Source
	logger *slog.Logger
}

// New constructs an Exporter. A nil logger discards output.
func New(source Source, logger *slog.Logger) *Exporter {
	return &Exporter{source: source, logger: logging.NewComponentLogger(logger, "export")}
}

// Export writes the rows selected by opts to opts.Output. The file is
// replaced atomically; a failed export leaves any previous file in place.
func (e *Exporter) Export(ctx context.Context, opts Options) (Result, error) {
	started := time.Now()
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = FormatCSV
	}
	if opts.Output == "" {
		return Result{}, fmt.Errorf("export: output path is required")
	}

	var write func(io.Writer, *int64) error
	query := store.MatchQuery{Category: opts.Category, Threshold: opts.Threshold, Limit: opts.Limit}
	switch format {
	case FormatCSV:
		delim, err := delimiterRune(opts.Delimiter)
		if err != nil {
			return Result{}, err
		}
		write = func(w io.Writer, n *int64) error {
			return e.writeCSV(ctx, w, query, delim, n)
		}
	case FormatParquet:
		write = func(w io.Writer, n *int64) error {
			return e.writeParquet(ctx, w, query, n)
		}
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}

	result := Result{Output: opts.Output, Format: format}
	err := fileutil.WriteFileAtomic(opts.Output, 0o644, func(w io.Writer) error {
		return write(w, &result.Rows)
	})
	if err != nil {
		return result, fmt.Errorf("export %s matches: %w", opts.Category, err)
	}
	result.Duration = time.Since(started)

	e.logger.Info("export complete",
		logging.String(logging.FieldCategory, opts.Category.String()),
		logging.String("output", opts.Output),
		logging.String("format", format),
		logging.Int64("rows", result.Rows),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func delimiterRune(value string) (rune, error) {
	if value == "" {
		return '|', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("export delimiter must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("export delimiter %q is not allowed", value)
	}
	return r, nil
}
