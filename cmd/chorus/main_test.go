package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "chorus", "config.toml")

	out, err := execute(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Errorf("unexpected output: %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	for _, section := range []string{"[paths]", "[downloader]", "[ingest]", "[logging]"} {
		if !strings.Contains(string(data), section) {
			t.Errorf("sample config missing %s", section)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := execute(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, err := execute(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := execute(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite init: %v", err)
	}
}

func TestIngestRequiresPlaylistName(t *testing.T) {
	_, err := execute(t, "ingest")
	if err == nil {
		t.Fatal("expected argument error")
	}
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	content := "[paths]\n" +
		"inbox_dir = \"" + filepath.Join(root, "inbox") + "\"\n" +
		"library_dir = \"" + filepath.Join(root, "library") + "\"\n" +
		"playlist_dir = \"" + filepath.Join(root, "playlists") + "\"\n" +
		"log_dir = \"" + filepath.Join(root, "logs") + "\"\n"
	path := filepath.Join(root, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestPlaylistCreateAndAdd(t *testing.T) {
	configPath := writeTestConfig(t)

	songDir := t.TempDir()
	first := filepath.Join(songDir, "Morning Light.mp3")
	second := filepath.Join(songDir, "Night Drive.mp3")
	for _, path := range []string{first, second} {
		if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
			t.Fatalf("write song: %v", err)
		}
	}

	out, err := execute(t, "--config", configPath, "playlist", "create", "mix", first)
	if err != nil {
		t.Fatalf("playlist create: %v", err)
	}
	if !strings.Contains(out, "Wrote 1 track(s)") {
		t.Errorf("unexpected create output: %q", out)
	}

	out, err = execute(t, "--config", configPath, "playlist", "add", "mix", second, first)
	if err != nil {
		t.Fatalf("playlist add: %v", err)
	}
	if !strings.Contains(out, "Added 1 track(s), skipped 1 duplicate(s); playlist now has 2 song(s)") {
		t.Errorf("unexpected add output: %q", out)
	}

	out, err = execute(t, "--config", configPath, "playlist", "show", "mix")
	if err != nil {
		t.Fatalf("playlist show: %v", err)
	}
	for _, title := range []string{"Morning Light", "Night Drive"} {
		if !strings.Contains(out, title) {
			t.Errorf("playlist show missing %q in %q", title, out)
		}
	}
}

func TestPlaylistCreateRejectsNonAudio(t *testing.T) {
	configPath := writeTestConfig(t)

	notes := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(notes, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := execute(t, "--config", configPath, "playlist", "create", "mix", notes); err == nil {
		t.Fatal("expected error for non-audio file")
	}
}
