package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gndmatch/internal/logging"
	"gndmatch/internal/store"
	"gndmatch/internal/textutil"
)

// ErrInvalidThreshold reports a threshold outside [0,1].
var ErrInvalidThreshold = errors.New("threshold must be within [0,1]")

// cancelCheckInterval is the number of DNB-side rows scored between context checks.
const cancelCheckInterval = 64

// RecordStore is the persistence surface the engine reads from and writes to.
type RecordStore interface {
	DNBTexts(ctx context.Context, category store.Category) ([]store.TextRow, error)
	GazTexts(ctx context.Context, category store.Category) ([]store.TextRow, error)
	ReplaceCandidates(ctx context.Context, category store.Category) (*store.CandidateWriter, error)
	RecordRun(ctx context.Context, run store.Run) (string, error)
}

// Options selects the category and threshold of a run.
type Options struct {
	Category  store.Category
	Threshold float64
}

// Result summarises a match run.
type Result struct {
	RunID        string         `json:"run_id"`
	Category     store.Category `json:"category"`
	Threshold    float64        `json:"threshold"`
	DNBValues    int            `json:"dnb_values"`
	GazValues    int            `json:"gaz_values"`
	SkippedEmpty int            `json:"skipped_empty"`
	Compared     int64          `json:"compared"`
	Candidates   int64          `json:"candidates"`
	Duration     time.Duration  `json:"duration"`
}

// Engine scores DNB against Gazetteer text values.
type Engine struct {
	store  RecordStore
	logger *slog.Logger
	score  func(a, b string) float64
}

// New constructs an Engine. A nil logger discards output.
func New(st RecordStore, logger *slog.Logger) *Engine {
	return &Engine{
		store:  st,
		logger: logging.NewComponentLogger(logger, "match"),
		score:  textutil.JaroWinkler,
	}
}

type normalized struct {
	id   int64
	text string
}

// Run recomputes every candidate of opts.Category at opts.Threshold.
func (e *Engine) Run(ctx context.Context, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 || opts.Threshold > 1 {
		return Result{}, fmt.Errorf("%w: got %v", ErrInvalidThreshold, opts.Threshold)
	}
	category, err := store.ParseCategory(string(opts.Category))
	if err != nil {
		return Result{}, err
	}
	opts.Category = category

	started := time.Now()
	result := Result{RunID: store.NewRunID(), Category: opts.Category, Threshold: opts.Threshold}
	logger := logging.WithRun(e.logger, result.RunID).With(
		logging.String(logging.FieldCategory, opts.Category.String()),
		logging.Float64("threshold", opts.Threshold),
	)

	dnbRows, err := e.store.DNBTexts(ctx, opts.Category)
	if err != nil {
		return result, fmt.Errorf("load dnb %s texts: %w", opts.Category, err)
	}
	gazRows, err := e.store.GazTexts(ctx, opts.Category)
	if err != nil {
		return result, fmt.Errorf("load gaz %s texts: %w", opts.Category, err)
	}

	dnb, skippedDNB := normalizeRows(dnbRows)
	gaz, skippedGaz := normalizeRows(gazRows)
	result.DNBValues = len(dnb)
	result.GazValues = len(gaz)
	result.SkippedEmpty = skippedDNB + skippedGaz
	logger.Info("match started",
		logging.Int("dnb_values", result.DNBValues),
		logging.Int("gaz_values", result.GazValues),
		logging.Int("skipped_empty", result.SkippedEmpty),
		logging.Int64("pairs", int64(len(dnb))*int64(len(gaz))),
	)

	writer, err := e.store.ReplaceCandidates(ctx, opts.Category)
	if err != nil {
		return result, fmt.Errorf("replace %s candidates: %w", opts.Category, err)
	}
	defer func() { _ = writer.Rollback() }()

	sampler := logging.NewProgressSampler(5)
	for i, left := range dnb {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				logger.Warn("match cancelled; previous candidates kept", logging.Int64("compared", result.Compared))
				return result, err
			}
		}
		for _, right := range gaz {
			score := e.score(left.text, right.text)
			result.Compared++
			if !opts.Category.Accepts(score, opts.Threshold) {
				continue
			}
			if err := writer.Write(ctx, store.Candidate{DNBRowID: left.id, GazRowID: right.id, Score: score}); err != nil {
				return result, err
			}
		}
		percent := float64(i+1) / float64(len(dnb)) * 100
		if sampler.ShouldLog(percent, "scoring") {
			logger.Info("match progress",
				logging.Float64("percent", math.Round(percent*10)/10),
				logging.Int64("candidates", writer.Written()),
			)
		}
	}

	candidates, err := writer.Commit()
	if err != nil {
		return result, err
	}
	result.Candidates = candidates
	result.Duration = time.Since(started)

	threshold := opts.Threshold
	if _, err := e.store.RecordRun(ctx, store.Run{
		ID:         result.RunID,
		Kind:       store.RunKindMatch,
		Category:   opts.Category.String(),
		Threshold:  &threshold,
		Candidates: result.Candidates,
		StartedAt:  started,
		FinishedAt: started.Add(result.Duration),
	}); err != nil {
		return result, fmt.Errorf("record run: %w", err)
	}

	logger.Info("match complete",
		logging.Int64("compared", result.Compared),
		logging.Int64("candidates", result.Candidates),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// normalizeRows normalizes every text once and drops values that normalize
// to the empty string, so absent titles never match anything.
func normalizeRows(rows []store.TextRow) ([]normalized, int) {
	out := make([]normalized, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		text := textutil.Normalize(row.Text)
		if text == "" {
			skipped++
			continue
		}
		out = append(out, normalized{id: row.ID, text: text})
	}
	return out, skipped
}
