package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gndmatch/internal/config"
	"gndmatch/internal/logging"
	"gndmatch/internal/preflight"
	"gndmatch/internal/store"
)

type globalFlags struct {
	config    string
	db        string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) error {
	changed := false
	if db := strings.TrimSpace(c.flags.db); db != "" {
		expanded, err := config.ExpandPath(db)
		if err != nil {
			return err
		}
		cfg.Store.Path = expanded
		changed = true
	}
	if level := strings.TrimSpace(c.flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
		changed = true
	}
	if format := strings.TrimSpace(c.flags.logFormat); format != "" {
		cfg.Logging.Format = strings.ToLower(format)
		changed = true
	}
	if !changed {
		return nil
	}
	return cfg.Validate()
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withStore runs preflight checks, opens the store and hands it to fn. The
// store and its run lock are released when fn returns.
func (c *commandContext) withStore(ctx context.Context, create bool, req preflight.Request, fn func(*store.Store, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	req.RequireStore = !create
	if err := preflight.Err(preflight.RunAll(cfg, req)); err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg, store.Options{CreateSchema: create, Logger: logger})
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
