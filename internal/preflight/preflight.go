package preflight

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gndmatch/internal/config"
)

// ErrFailed is returned by Err when at least one check did not pass.
var ErrFailed = errors.New("preflight failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Request selects the checks relevant to one command.
type Request struct {
	// Inputs are dump files the command will read.
	Inputs []string
	// RequireStore demands an existing database file.
	RequireStore bool
	// OutputDir is checked for write access when set.
	OutputDir string
}

// RunAll executes the checks selected by req against cfg.
func RunAll(cfg *config.Config, req Request) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Database directory (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", filepath.Dir(cfg.Store.Path)))

	if req.RequireStore {
		results = append(results, CheckStoreFile("Database", cfg.Store.Path))
	}
	for _, input := range req.Inputs {
		results = append(results, CheckInputFile("Input file", input))
	}
	if req.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", req.OutputDir))
	}
	return results
}

// Err folds failed results into a single error wrapping ErrFailed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(failed, "; "))
}
