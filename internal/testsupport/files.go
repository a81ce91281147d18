package testsupport

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteJSON marshals v into path.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()
	WriteFile(t, path, MustJSON(t, v))
}

// WriteGzip writes content gzip-compressed to path.
func WriteGzip(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write(content); err != nil {
		t.Fatalf("gzip write %s: %v", path, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close %s: %v", path, err)
	}
}

// MustJSON marshals v or fails the test.
func MustJSON(t testing.TB, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %T: %v", v, err)
	}
	return data
}

// GazID returns the gazId of a Gazetteer fixture object as text.
func GazID(obj map[string]any) string {
	v, ok := obj["gazId"]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
