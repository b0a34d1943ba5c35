package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"chorus/internal/download"
	"chorus/internal/library"
	"chorus/internal/media"
	"chorus/internal/services"
	"chorus/internal/testsupport"
)

func fakeExtractor(byName map[string]media.Track) library.ExtractFunc {
	return func(path string) (media.Track, bool) {
		if track, ok := byName[filepath.Base(path)]; ok {
			track.Path = path
			return track, true
		}
		return media.DefaultTrack(path), false
	}
}

func newTestPipeline(t *testing.T, meta map[string]media.Track) *Pipeline {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	organizer := library.NewOrganizer(cfg.Paths.InboxDir, cfg.Paths.LibraryDir, cfg.Ingest.FilenameMaxLen, nil)
	organizer.SetExtractor(fakeExtractor(meta))
	store := testsupport.NewPlaylistStore(t, cfg)
	cat := testsupport.MustOpenCatalog(t, cfg)

	p, err := New(cfg, organizer, store, cat, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func seedInbox(t *testing.T, p *Pipeline, names ...string) {
	t.Helper()
	for _, name := range names {
		testsupport.WriteFile(t, filepath.Join(p.cfg.Paths.InboxDir, name), 128)
	}
}

func TestRunCreatesPlaylistAndRecordsBatch(t *testing.T) {
	meta := map[string]media.Track{
		"a.mp3": {Title: "Alpha", Artist: "Aurora", Album: "Dawn"},
		"b.mp3": {Title: "Beta", Artist: "Aurora", Album: "Dawn"},
	}
	p := newTestPipeline(t, meta)
	seedInbox(t, p, "a.mp3", "b.mp3")

	report, err := p.Run(context.Background(), Options{PlaylistName: "Morning Mix"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Moved != 2 || report.Failures != 0 {
		t.Fatalf("report = %+v", report)
	}
	if !report.PlaylistCreated || report.PlaylistAdded != 2 || report.TotalSongs != 2 {
		t.Fatalf("playlist outcome = %+v", report)
	}
	if report.BatchID == 0 {
		t.Error("batch not recorded in catalog")
	}
	if _, err := os.Stat(report.PlaylistPath); err != nil {
		t.Errorf("playlist file missing: %v", err)
	}

	batches, err := p.catalog.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(batches) != 1 || batches[0].Added != 2 {
		t.Fatalf("catalog batches = %+v", batches)
	}
}

func TestRunMergesIntoExistingPlaylist(t *testing.T) {
	meta := map[string]media.Track{
		"a.mp3": {Title: "Alpha", Artist: "Aurora", Album: "Dawn"},
		"b.mp3": {Title: "Beta", Artist: "Aurora", Album: "Dawn"},
	}
	p := newTestPipeline(t, meta)
	seedInbox(t, p, "a.mp3")
	if _, err := p.Run(context.Background(), Options{PlaylistName: "Mix"}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	seedInbox(t, p, "b.mp3")
	report, err := p.Run(context.Background(), Options{PlaylistName: "Mix"})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.PlaylistCreated {
		t.Error("second run should merge, not create")
	}
	if report.PlaylistAdded != 1 || report.TotalSongs != 2 {
		t.Fatalf("merge outcome = %+v", report)
	}
}

func TestRunIncludesInboxDuplicateLibraryCopyInPlaylist(t *testing.T) {
	meta := map[string]media.Track{
		"song.mp3": {Title: "Song", Artist: "Aurora", Album: "Dawn"},
		"copy.mp3": {Title: "  SONG ", Artist: "Aurora", Album: "Dawn"},
	}
	p := newTestPipeline(t, meta)
	seedInbox(t, p, "song.mp3")
	if _, err := p.Run(context.Background(), Options{PlaylistName: "First"}); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	// The duplicate is not moved, but its library copy still lands in the
	// new playlist.
	seedInbox(t, p, "copy.mp3")
	report, err := p.Run(context.Background(), Options{PlaylistName: "Second"})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Moved != 0 || report.InboxDuplicates != 1 {
		t.Fatalf("organize outcome = %+v", report)
	}
	if !report.PlaylistCreated || report.PlaylistAdded != 1 {
		t.Fatalf("playlist outcome = %+v", report)
	}

	tracks, err := p.store.Read("Second")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Title != "Song" {
		t.Fatalf("playlist tracks = %+v", tracks)
	}
}

func TestRunEmptyInboxIsNoOp(t *testing.T) {
	p := newTestPipeline(t, nil)

	report, err := p.Run(context.Background(), Options{PlaylistName: "Empty"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Moved != 0 || report.PlaylistAdded != 0 || report.BatchID != 0 {
		t.Fatalf("expected no-op report, got %+v", report)
	}
	if _, err := os.Stat(p.store.Path("Empty")); !os.IsNotExist(err) {
		t.Error("playlist file written for empty batch")
	}
}

func TestRunRequiresPlaylistName(t *testing.T) {
	p := newTestPipeline(t, nil)
	if _, err := p.Run(context.Background(), Options{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRunRejectsConcurrentInvocation(t *testing.T) {
	p := newTestPipeline(t, nil)

	other := flock.New(p.lockPath)
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("prelock: ok=%v err=%v", ok, err)
	}
	defer other.Unlock()

	_, err = p.Run(context.Background(), Options{PlaylistName: "Mix"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
}

type dropExecutor struct {
	dir   string
	name  string
	calls int
}

func (d *dropExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	d.calls++
	if onStdout != nil {
		onStdout("Downloaded 1 song")
	}
	return os.WriteFile(filepath.Join(d.dir, d.name), []byte("audio"), 0o644)
}

func TestRunDownloadsThenIngests(t *testing.T) {
	meta := map[string]media.Track{
		"fresh.mp3": {Title: "Fresh", Artist: "Aurora", Album: "Dawn"},
	}
	p := newTestPipeline(t, meta)

	exec := &dropExecutor{dir: p.cfg.Paths.InboxDir, name: "fresh.mp3"}
	runner, err := download.New("spotdl", 1, 0, 0, nil, download.WithExecutor(exec))
	if err != nil {
		t.Fatalf("download.New: %v", err)
	}
	p.runner = runner

	var lines []string
	report, err := p.Run(context.Background(), Options{
		PlaylistName: "Fetched",
		SourceURL:    "https://example.com/p",
		OnLine:       func(line string) { lines = append(lines, line) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("downloader calls = %d, want 1", exec.calls)
	}
	if report.Moved != 1 || !report.PlaylistCreated {
		t.Fatalf("report = %+v", report)
	}
	if len(lines) == 0 {
		t.Error("downloader output not streamed")
	}
}

func TestRunWithSourceURLButNoDownloader(t *testing.T) {
	p := newTestPipeline(t, nil)
	_, err := p.Run(context.Background(), Options{PlaylistName: "Mix", SourceURL: "https://example.com/p"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}
