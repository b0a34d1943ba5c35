package services_test

import (
	"errors"
	"strings"
	"testing"

	"chorus/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "playlist", "merge", "no document named mix", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "playlist: merge: no document named mix") {
		t.Fatalf("detail missing: %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := services.Wrap(services.ErrTransient, "library", "move file", "", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause not wrapped: %v", err)
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient default, got %v", err)
	}
}

func TestIsStructural(t *testing.T) {
	if !services.IsStructural(services.Wrap(services.ErrParse, "playlist", "read", "", nil)) {
		t.Fatal("parse errors are structural")
	}
	if services.IsStructural(services.Wrap(services.ErrTransient, "library", "move", "", nil)) {
		t.Fatal("transient errors are per-file")
	}
}
