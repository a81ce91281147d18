package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gndmatch/internal/preflight"
	"gndmatch/internal/store"
	"gndmatch/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	dbPath     string
	dnbDump    string
	gazDump    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("GNDMATCH_DB", "")
	t.Setenv("GNDMATCH_THRESHOLD", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "gndmatch.toml"),
		dbPath:     filepath.Join(base, "data", "gndmatch.db"),
		dnbDump:    filepath.Join(base, "dnb.json"),
		gazDump:    filepath.Join(base, "gaz.json.gz"),
	}
	writeTestConfig(t, env.configPath, env.dbPath)

	testsupport.WriteJSON(t, env.dnbDump, testsupport.DNBDump(
		testsupport.DNBNode("118540238", "Goethe, Johann Wolfgang von", nil),
		testsupport.DNBNode("4005728-8", "Berlin", []string{"Berolina"}),
	))
	gaz := []any{
		testsupport.GazObject("2042601", "Goethe, Johann Wolfgang", nil, "118540238"),
		testsupport.GazObject("2048575", "Hamburg", []testsupport.GazName{{Title: "Hammaburg"}}, "4023118-5"),
		testsupport.GazObject("2070001", "Berlin", []testsupport.GazName{{Title: "Berolinum", Language: "lat"}}, "4005728-8"),
	}
	testsupport.WriteGzip(t, env.gazDump, testsupport.MustJSON(t, gaz))
	return env
}

func writeTestConfig(t *testing.T, path, dbPath string) {
	t.Helper()
	content := fmt.Sprintf("[store]\npath = %q\ncache_size = 2000\n\n[logging]\nlevel = \"error\"\n", dbPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func importBoth(t *testing.T, env *cliTestEnv) {
	t.Helper()
	out, _, err := runCLI(t, []string{"import", "dnb", env.dnbDump}, env.configPath)
	if err != nil {
		t.Fatalf("import dnb: %v", err)
	}
	requireContains(t, out, "accepted:   2")

	out, _, err = runCLI(t, []string{"import", "gaz", env.gazDump}, env.configPath)
	if err != nil {
		t.Fatalf("import gaz: %v", err)
	}
	requireContains(t, out, "accepted:   3")
}

func TestImportMatchExportFlow(t *testing.T) {
	env := setupCLITestEnv(t)
	importBoth(t, env)

	out, _, err := runCLI(t, []string{"match", "meta", "--threshold", "0.9"}, env.configPath)
	if err != nil {
		t.Fatalf("match meta: %v", err)
	}
	requireContains(t, out, "Matched meta values (threshold >= 0.9)")
	requireContains(t, out, "candidates:  2")

	target := filepath.Join(env.baseDir, "out", "meta.csv")
	out, _, err = runCLI(t, []string{"export", "meta", "--output", target, "--threshold", "0.9"}, env.configPath)
	if err != nil {
		t.Fatalf("export meta: %v", err)
	}
	requireContains(t, out, "Exported 2 meta matches")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", data)
	}
	if lines[0] != "#DNB ID|DNB Pref Name|Gaz GND ID|Gaz Pref Name|Threshold" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	requireContains(t, lines[1], "118540238|Goethe, Johann Wolfgang von|118540238|Goethe, Johann Wolfgang|0.97")
	if lines[2] != "4005728-8|Berlin|4005728-8|Berlin|1" {
		t.Fatalf("unexpected second row %q", lines[2])
	}

	out, _, err = runCLI(t, []string{"export", "meta", "--preview", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("export preview: %v", err)
	}
	requireContains(t, out, "118540238")
	requireContains(t, out, "Goethe, Johann Wolfgang")
}

func TestExportParquetThroughCLI(t *testing.T) {
	env := setupCLITestEnv(t)
	importBoth(t, env)
	if _, _, err := runCLI(t, []string{"match", "name", "--threshold", "0.8"}, env.configPath); err != nil {
		t.Fatalf("match name: %v", err)
	}

	target := filepath.Join(env.baseDir, "names.parquet")
	out, _, err := runCLI(t, []string{"export", "names", "-o", target, "--format", "parquet", "--threshold", "0.8"}, env.configPath)
	if err != nil {
		t.Fatalf("export names: %v", err)
	}
	requireContains(t, out, "Exported 1 name matches")
	requireContains(t, out, "(parquet)")
	if info, err := os.Stat(target); err != nil || info.Size() == 0 {
		t.Fatalf("expected parquet file at %s: %v", target, err)
	}
}

func TestStatsOutputs(t *testing.T) {
	env := setupCLITestEnv(t)
	importBoth(t, env)
	if _, _, err := runCLI(t, []string{"match", "meta"}, env.configPath); err != nil {
		t.Fatalf("match meta: %v", err)
	}

	out, _, err := runCLI(t, []string{"stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("stats --json: %v", err)
	}
	var stats store.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.DNBRecords != 2 || stats.GazRecords != 3 || stats.VariantNames != 1 || stats.MetaCandidates == 0 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if len(stats.RecentRuns) != 3 || stats.RecentRuns[0].Kind != store.RunKindMatch {
		t.Fatalf("unexpected runs: %+v", stats.RecentRuns)
	}

	out, _, err = runCLI(t, []string{"stats"}, env.configPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	requireContains(t, out, "DNB records")
	requireContains(t, out, "import-dnb")

	out, _, err = runCLI(t, []string{"stats", "--yaml"}, env.configPath)
	if err != nil {
		t.Fatalf("stats --yaml: %v", err)
	}
	requireContains(t, out, "dnb_records: 2")

	out, _, err = runCLI(t, []string{"match", "meta", "--purge"}, env.configPath)
	if err != nil {
		t.Fatalf("match --purge: %v", err)
	}
	requireContains(t, out, "Removed")
	out, _, err = runCLI(t, []string{"stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("stats after purge: %v", err)
	}
	stats = store.Stats{}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.MetaCandidates != 0 {
		t.Fatalf("expected purge to clear meta candidates, got %d", stats.MetaCandidates)
	}

	if _, _, err := runCLI(t, []string{"stats", "--json", "--yaml"}, env.configPath); err == nil {
		t.Fatal("expected --json with --yaml to fail")
	}
}

func TestMatchBeforeImportFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"match", "meta"}, env.configPath)
	if !errors.Is(err, preflight.ErrFailed) {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	if _, statErr := os.Stat(env.dbPath); !os.IsNotExist(statErr) {
		t.Fatalf("match must not create the database: %v", statErr)
	}
}

func TestCommandArgumentErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	importBoth(t, env)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown category", []string{"match", "places"}},
		{"threshold above one", []string{"match", "meta", "--threshold", "1.5"}},
		{"export without output", []string{"export", "meta"}},
		{"export bad format", []string{"export", "meta", "-o", filepath.Join(env.baseDir, "x.xlsx"), "--format", "xlsx"}},
		{"missing input", []string{"import", "gaz", filepath.Join(env.baseDir, "missing.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, tt.args, env.configPath); err == nil {
				t.Fatalf("expected %v to fail", tt.args)
			}
		})
	}
}

func TestDBFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	other := filepath.Join(env.baseDir, "other", "alt.db")

	if _, _, err := runCLI(t, []string{"--db", other, "import", "dnb", env.dnbDump}, env.configPath); err != nil {
		t.Fatalf("import dnb: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("expected database at %s: %v", other, err)
	}
	if _, err := os.Stat(env.dbPath); !os.IsNotExist(err) {
		t.Fatalf("configured database should be untouched: %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.dbPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, target); err != nil {
		t.Fatalf("validate sample: %v", err)
	}
}
