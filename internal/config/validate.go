package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateDNB(); err != nil {
		return err
	}
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path must be set")
	}
	return nil
}

func (c *Config) validateDNB() error {
	if !strings.HasSuffix(c.DNB.IDPrefix, "/") {
		return fmt.Errorf("dnb.id_prefix must end with '/', got %q", c.DNB.IDPrefix)
	}
	return nil
}

func (c *Config) validateThresholds() error {
	return ensureUnitInterval(map[string]float64{
		"match.threshold":  c.Match.Threshold,
		"export.threshold": c.Export.Threshold,
	})
}

func (c *Config) validateExport() error {
	switch c.Export.Format {
	case exportFormatCSV, exportFormatParquet:
	default:
		return fmt.Errorf("export.format must be %q or %q, got %q", exportFormatCSV, exportFormatParquet, c.Export.Format)
	}
	if utf8.RuneCountInString(c.Export.Delimiter) != maxExportDelimiterRunes {
		return fmt.Errorf("export.delimiter must be a single character, got %q", c.Export.Delimiter)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensureUnitInterval(values map[string]float64) error {
	for key, value := range values {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}
