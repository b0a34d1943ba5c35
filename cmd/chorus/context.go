package main

import (
	"log/slog"
	"strings"
	"sync"

	"chorus/internal/catalog"
	"chorus/internal/config"
	"chorus/internal/download"
	"chorus/internal/ingest"
	"chorus/internal/library"
	"chorus/internal/logging"
	"chorus/internal/playlist"
)

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

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) playlistStore() (*playlist.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return playlist.NewStore(cfg.Paths.PlaylistDir, cfg.Paths.LibraryDir, logger), nil
}

func (c *commandContext) organizer() (*library.Organizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return library.NewOrganizer(cfg.Paths.InboxDir, cfg.Paths.LibraryDir, cfg.Ingest.FilenameMaxLen, logger), nil
}

func (c *commandContext) downloader() (*download.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return download.New(cfg.Downloader.Binary,
		cfg.Downloader.MaxRetries,
		cfg.Downloader.RetryDelaySeconds,
		cfg.Downloader.TimeoutSeconds,
		logger)
}

func (c *commandContext) pipeline() (*ingest.Pipeline, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	organizer, err := c.organizer()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.playlistStore()
	if err != nil {
		return nil, nil, err
	}
	runner, err := c.downloader()
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	p, err := ingest.New(cfg, organizer, store, cat, runner, logger)
	if err != nil {
		cat.Close()
		return nil, nil, err
	}
	cleanup := func() { _ = cat.Close() }
	return p, cleanup, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
