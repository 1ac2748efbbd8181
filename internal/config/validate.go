package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSort(); err != nil {
		return err
	}
	if err := c.validateJournal(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSort() error {
	if c.Sort.Workers < 0 {
		return errors.New("sort.workers must be >= 0 (0 uses the CPU count)")
	}
	if c.Sort.ProgressInterval < 1 {
		return errors.New("sort.progress_interval must be >= 1")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path must be set when the journal is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
