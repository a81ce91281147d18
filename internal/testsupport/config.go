package testsupport

import (
	"path/filepath"
	"testing"

	"gndmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose database lives in a unique temp directory.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Store.Path = filepath.Join(base, "data", "gndmatch.db")
	cfgVal.Store.CacheSize = 2000
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithThreshold sets the match threshold on the test config.
func WithThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Match.Threshold = threshold
	}
}

// WithOldAuthority enables old authority number import on the test config.
func WithOldAuthority() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.OldAuthority = true
	}
}

// WithProgressEvery overrides the import progress cadence.
func WithProgressEvery(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.ProgressEvery = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Store.Path))
}
