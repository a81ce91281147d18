package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gndmatch/internal/config"
	"gndmatch/internal/logging"
)

func TestConsoleFormatIncludesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Writer: &buf, OutputPaths: []string{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Writer set with empty OutputPaths means no stderr duplication.
	logger = logging.NewComponentLogger(logger, "ingest")
	logger.Info("imported records", logging.Int("imported", 3), logging.String("source", "dnb dump.json"))

	out := buf.String()
	if !strings.Contains(out, "INFO ingest: imported records") {
		t.Fatalf("unexpected console line: %q", out)
	}
	if !strings.Contains(out, "imported=3") {
		t.Fatalf("missing int field: %q", out)
	}
	if !strings.Contains(out, `source="dnb dump.json"`) {
		t.Fatalf("expected quoted value with spaces: %q", out)
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component should be rendered as prefix only: %q", out)
	}
}

func TestJSONFormatEmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Writer: &buf, OutputPaths: []string{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WithRun(logger, "run-1").Info("match complete", logging.String(logging.FieldCategory, "meta"))

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode json line %q: %v", buf.String(), err)
	}
	if payload["msg"] != "match complete" {
		t.Fatalf("msg = %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("level = %v, want info", payload["level"])
	}
	if payload[logging.FieldRunID] != "run-1" {
		t.Fatalf("run_id = %v", payload[logging.FieldRunID])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %v", payload)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Writer: &buf, OutputPaths: []string{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "gndmatch.log")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("written to file")

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("log file missing entry: %q", data)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Writer: &buf, OutputPaths: []string{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WarnWithContext(logger, "duplicate record", "duplicate_key",
		logging.String(logging.FieldImpact, "record ignored"),
		logging.Error(errors.New("UNIQUE constraint failed")),
	)

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload[logging.FieldEventType] != "duplicate_key" {
		t.Fatalf("event_type = %v", payload[logging.FieldEventType])
	}
	if payload[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error_hint")
	}
	if payload[logging.FieldImpact] != "record ignored" {
		t.Fatalf("impact should keep caller value, got %v", payload[logging.FieldImpact])
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("nothing")
	if logger.Enabled(t.Context(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "none")
}
