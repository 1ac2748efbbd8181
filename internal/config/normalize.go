package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeSort(); err != nil {
		return err
	}
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeSort() error {
	if value, ok := os.LookupEnv("MPEGSORT_WORKERS"); ok && strings.TrimSpace(value) != "" {
		workers, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("MPEGSORT_WORKERS: invalid integer %q", value)
		}
		c.Sort.Workers = workers
	}
	if c.Sort.ProgressInterval == 0 {
		c.Sort.ProgressInterval = defaultProgressInterval
	}
	return nil
}

func (c *Config) normalizeJournal() error {
	if !c.Journal.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	var err error
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("MPEGSORT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		var err error
		if c.Logging.Dir, err = expandPath(dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
