package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chorus/internal/config"
)

func TestDefaultValidatesAfterNormalize(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("config file should not exist")
	}
	if cfg.Downloader.Binary != "spotdl" || cfg.Downloader.MaxRetries != 3 {
		t.Fatalf("unexpected downloader defaults: %+v", cfg.Downloader)
	}
	if cfg.Ingest.FilenameMaxLen != 100 {
		t.Fatalf("filename_max_len default = %d", cfg.Ingest.FilenameMaxLen)
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
inbox_dir = "` + filepath.Join(dir, "in") + `"
library_dir = "` + filepath.Join(dir, "lib") + `"
playlist_dir = "` + filepath.Join(dir, "pl") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[ingest]
keep_inbox_files = true

[downloader]
max_retries = 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if !cfg.Ingest.KeepInboxFiles {
		t.Fatal("keep_inbox_files not parsed")
	}
	if cfg.Downloader.MaxRetries != 7 {
		t.Fatalf("max_retries = %d", cfg.Downloader.MaxRetries)
	}
	if !filepath.IsAbs(cfg.Paths.InboxDir) {
		t.Fatalf("inbox dir not absolute: %q", cfg.Paths.InboxDir)
	}
}

func TestValidateRejectsSameInboxAndLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
inbox_dir = "` + dir + `"
library_dir = "` + dir + `"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestEnsureDirectoriesCreatesTree(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InboxDir = filepath.Join(dir, "inbox")
	cfg.Paths.LibraryDir = filepath.Join(dir, "library")
	cfg.Paths.PlaylistDir = filepath.Join(dir, "playlists")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.InboxDir, cfg.Paths.LibraryDir, cfg.Paths.PlaylistDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Errorf("directory %q missing", p)
		}
	}
}

func TestSampleConfigMentionsEverySection(t *testing.T) {
	sample := config.SampleConfig()
	for _, section := range []string{"[paths]", "[ingest]", "[downloader]", "[logging]"} {
		if !strings.Contains(sample, section) {
			t.Errorf("sample config missing %s", section)
		}
	}
}
