package testsupport

import (
	"path/filepath"
	"testing"

	"chorus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InboxDir = filepath.Join(base, "inbox")
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.PlaylistDir = filepath.Join(base, "playlists")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Downloader.RetryDelaySeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithKeepInboxFiles leaves processed files in the inbox on the test config.
func WithKeepInboxFiles() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.KeepInboxFiles = true
	}
}

// WithDownloaderBinary overrides the downloader binary on the test config.
func WithDownloaderBinary(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Downloader.Binary = binary
	}
}
