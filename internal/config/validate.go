package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateDownloader(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.PlaylistDir) == "" {
		return errors.New("paths.playlist_dir must be set")
	}
	if c.Paths.InboxDir == c.Paths.LibraryDir {
		return errors.New("paths.inbox_dir and paths.library_dir must differ")
	}
	return nil
}

func (c *Config) validateIngest() error {
	// Shorter budgets cannot hold a stem plus a four-character extension.
	if c.Ingest.FilenameMaxLen < 10 {
		return fmt.Errorf("ingest.filename_max_len must be at least 10, got %d", c.Ingest.FilenameMaxLen)
	}
	return nil
}

func (c *Config) validateDownloader() error {
	if err := ensurePositiveMap(map[string]int{
		"downloader.max_retries":     c.Downloader.MaxRetries,
		"downloader.timeout_seconds": c.Downloader.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Downloader.RetryDelaySeconds < 0 {
		return errors.New("downloader.retry_delay_seconds must not be negative")
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
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, value)
		}
	}
	return nil
}
