package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mpegsort/internal/config"
	"mpegsort/internal/journal"
	"mpegsort/internal/logging"
	"mpegsort/internal/services"
)

var errJournalDisabled = errors.New("run journal is disabled in configuration")

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once, writing console output to the
// command's error stream.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		opts := logging.OptionsFromConfig(cfg)
		opts.Stderr = cmd.ErrOrStderr()
		logger, err := logging.New(opts)
		if err != nil {
			c.loggerErr = services.Wrap(services.ErrConfiguration, "config", "build logger", "", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, errJournalDisabled
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
