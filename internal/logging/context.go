package logging

import "log/slog"

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized key for the UUID of an import or match run.
	FieldRunID = "run_id"
	// FieldCategory is the standardized key for the match category (meta or name).
	FieldCategory = "category"
	// FieldInput is the standardized key for the input document path.
	FieldInput = "input"
	// FieldRecordID is the standardized key for the DNB or Gazetteer identifier being processed.
	FieldRecordID = "record_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the suggested next step for a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// WithRun returns a logger tagged with the run identifier.
func WithRun(logger *slog.Logger, runID string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if runID == "" {
		return logger
	}
	return logger.With(String(FieldRunID, runID))
}
