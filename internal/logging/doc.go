// Package logging assembles structured slog loggers and formatting helpers used
// across gndmatch components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes helpers so importers and matchers tag log lines with a
// component name and run ID. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
//
// There is no package-level logger: every component receives its *slog.Logger
// from the command that constructed it.
package logging
