package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeDNB()
	if err := c.normalizeMatch(); err != nil {
		return err
	}
	c.normalizeExport()
	return c.normalizeLogging()
}

func (c *Config) normalizeStore() error {
	if value, ok := os.LookupEnv(envDatabasePath); ok && strings.TrimSpace(value) != "" {
		c.Store.Path = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	var err error
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	if c.Store.CacheSize == 0 {
		c.Store.CacheSize = defaultStoreCacheSize
	}
	return nil
}

func (c *Config) normalizeIngest() {
	if c.Ingest.ProgressEvery <= 0 {
		c.Ingest.ProgressEvery = defaultProgressEvery
	}
}

func (c *Config) normalizeDNB() {
	c.DNB.IDPrefix = strings.TrimSpace(c.DNB.IDPrefix)
	if c.DNB.IDPrefix == "" {
		c.DNB.IDPrefix = defaultDNBIDPrefix
	}
	c.DNB.SameAsKey = strings.TrimSpace(c.DNB.SameAsKey)
	if c.DNB.SameAsKey == "" {
		c.DNB.SameAsKey = defaultSameAsKey
	}
	c.DNB.PrefNameKey = strings.TrimSpace(c.DNB.PrefNameKey)
	if c.DNB.PrefNameKey == "" {
		c.DNB.PrefNameKey = defaultPrefNameKey
	}
	c.DNB.VariantNameKey = strings.TrimSpace(c.DNB.VariantNameKey)
	if c.DNB.VariantNameKey == "" {
		c.DNB.VariantNameKey = defaultVariantNameKey
	}
	c.DNB.OldAuthorityKey = strings.TrimSpace(c.DNB.OldAuthorityKey)
	if c.DNB.OldAuthorityKey == "" {
		c.DNB.OldAuthorityKey = defaultOldAuthorityKey
	}
}

func (c *Config) normalizeMatch() error {
	if value, ok := os.LookupEnv(envThreshold); ok && strings.TrimSpace(value) != "" {
		threshold, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", envThreshold, err)
		}
		c.Match.Threshold = threshold
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "" {
		c.Export.Format = defaultExportFormat
	}
	if c.Export.Delimiter == "" {
		c.Export.Delimiter = defaultExportDelimiter
	}
	if c.Export.Limit < 0 {
		c.Export.Limit = 0
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
