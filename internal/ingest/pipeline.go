package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"chorus/internal/catalog"
	"chorus/internal/config"
	"chorus/internal/download"
	"chorus/internal/library"
	"chorus/internal/logging"
	"chorus/internal/media"
	"chorus/internal/playlist"
	"chorus/internal/services"
)

// Options controls one ingestion run.
type Options struct {
	// PlaylistName names the playlist to create or merge into.
	PlaylistName string
	// SourceURL, when set, runs the downloader into the inbox first.
	SourceURL string
	// KeepInboxFiles leaves processed files in the inbox.
	KeepInboxFiles bool
	// OnLine receives downloader output lines as they arrive.
	OnLine func(string)
}

// Report aggregates the outcome of one ingestion run.
type Report struct {
	BatchID            int64
	Playlist           string
	PlaylistPath       string
	PlaylistCreated    bool
	Moved              int
	InboxDuplicates    int
	Failures           int
	PlaylistAdded      int
	PlaylistDuplicates int
	TotalSongs         int
}

// Pipeline wires the downloader, organizer, playlist store, and catalog
// into one ingestion flow.
type Pipeline struct {
	cfg       *config.Config
	organizer *library.Organizer
	store     *playlist.Store
	catalog   *catalog.Store
	runner    *download.Runner
	logger    *slog.Logger

	lockPath string
	lock     *flock.Flock
}

// New constructs a pipeline. The downloader runner and catalog may be nil;
// ingestion then skips the corresponding step.
func New(cfg *config.Config, organizer *library.Organizer, store *playlist.Store, cat *catalog.Store, runner *download.Runner, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil || organizer == nil || store == nil {
		return nil, errors.New("ingest requires config, organizer, and playlist store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "chorus.lock")
	return &Pipeline{
		cfg:       cfg,
		organizer: organizer,
		store:     store,
		catalog:   cat,
		runner:    runner,
		logger:    logging.NewComponentLogger(logger, "ingest"),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Run executes one ingestion batch. The playlist document is created when
// absent and merged into when present; either way existing track IDs are
// never disturbed. An empty batch is a no-op, not a failure.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	if opts.PlaylistName == "" {
		return Report{}, services.Wrap(services.ErrValidation, "ingest", "run", "playlist name required", nil)
	}

	ok, err := p.lock.TryLock()
	if err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "ingest", "run", "acquire ingest lock", err)
	}
	if !ok {
		return Report{}, services.Wrap(services.ErrTransient, "ingest", "run", "another ingestion is already running", nil)
	}
	defer func() { _ = p.lock.Unlock() }()

	ctx = services.WithPlaylist(ctx, opts.PlaylistName)
	runLogger := logging.WithContext(ctx, p.logger)

	report := Report{Playlist: opts.PlaylistName}

	if opts.SourceURL != "" {
		if p.runner == nil {
			return report, services.Wrap(services.ErrConfiguration, "ingest", "run", "no downloader configured", nil)
		}
		if err := p.runner.Fetch(ctx, opts.SourceURL, p.cfg.Paths.InboxDir, opts.OnLine); err != nil {
			return report, err
		}
	}

	result, err := p.organizer.Organize(opts.KeepInboxFiles)
	if err != nil {
		return report, err
	}
	report.Moved = len(result.Tracks)
	report.InboxDuplicates = len(result.Duplicates)
	report.Failures = len(result.Failures)

	// Duplicates still reference a library copy worth listing, so their
	// matched tracks join the playlist candidates.
	candidates := make([]media.Track, 0, len(result.Tracks)+len(result.Duplicates))
	candidates = append(candidates, result.Tracks...)
	for _, dup := range result.Duplicates {
		candidates = append(candidates, dup.MatchedTrack)
	}

	if len(candidates) == 0 {
		runLogger.Info("nothing to ingest", logging.Int("failures", report.Failures))
		return report, nil
	}

	if err := p.syncPlaylist(candidates, opts.PlaylistName, &report); err != nil {
		return report, err
	}

	if p.catalog != nil {
		batchID, err := p.catalog.RecordBatch(ctx, opts.PlaylistName, opts.SourceURL, result.Tracks, report.InboxDuplicates, report.Failures)
		if err != nil {
			runLogger.Warn("catalog record failed", logging.Error(err))
		} else {
			report.BatchID = batchID
		}
	}

	runLogger.Info("ingestion finished",
		logging.Int("moved", report.Moved),
		logging.Int("playlist_added", report.PlaylistAdded),
		logging.Int("playlist_duplicates", report.PlaylistDuplicates),
		logging.Int("failures", report.Failures))
	return report, nil
}

func (p *Pipeline) syncPlaylist(candidates []media.Track, name string, report *Report) error {
	path := p.store.Path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		created, err := p.store.Create(candidates, name)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				// No valid tracks degrades to a no-op batch.
				p.logger.Warn("no valid tracks for playlist", logging.String("playlist", name))
				return nil
			}
			return err
		}
		report.PlaylistPath = created
		report.PlaylistCreated = true
		report.PlaylistAdded = len(candidates)
		report.TotalSongs = len(candidates)
		return nil
	}

	merge, err := p.store.AddToExisting(candidates, name)
	if err != nil {
		return err
	}
	report.PlaylistPath = path
	report.PlaylistAdded = merge.Added
	report.PlaylistDuplicates = merge.Duplicates
	report.TotalSongs = merge.TotalSongs
	return nil
}
