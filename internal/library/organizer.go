package library

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"chorus/internal/fileutil"
	"chorus/internal/logging"
	"chorus/internal/media"
	"chorus/internal/services"
	"chorus/internal/tags"
	"chorus/internal/textutil"
)

// ExtractFunc resolves a file's metadata. It never fails: unreadable files
// yield a default record with the filename stem as title.
type ExtractFunc func(path string) (media.Track, bool)

// Duplicate records an inbox file whose title already exists in its
// destination album folder. MatchedTrack carries the library copy's
// metadata so callers can still reference it in a playlist.
type Duplicate struct {
	InboxPath    string
	MatchedPath  string
	MatchedTrack media.Track
}

// Failure records a file left in the inbox after an unrecoverable
// per-file error.
type Failure struct {
	Path string
	Err  error
}

// Result aggregates one organize batch.
type Result struct {
	Tracks     []media.Track
	Duplicates []Duplicate
	Failures   []Failure
}

// DuplicatesSkipped reports how many inbox files matched existing library
// copies.
func (r Result) DuplicatesSkipped() int { return len(r.Duplicates) }

// Organizer moves audio files from an inbox directory into the library
// tree.
type Organizer struct {
	inboxDir    string
	libraryRoot string
	maxNameLen  int
	extract     ExtractFunc
	logger      *slog.Logger
}

// NewOrganizer returns an organizer for the given inbox and library root.
// maxNameLen bounds destination filenames; zero means the default limit.
func NewOrganizer(inboxDir, libraryRoot string, maxNameLen int, logger *slog.Logger) *Organizer {
	if maxNameLen <= 0 {
		maxNameLen = textutil.MaxNameLength
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Organizer{
		inboxDir:    inboxDir,
		libraryRoot: libraryRoot,
		maxNameLen:  maxNameLen,
		extract:     tags.Extract,
		logger:      logging.NewComponentLogger(logger, "library"),
	}
}

// SetExtractor replaces the metadata resolver. Tests use this to supply
// deterministic tags without real audio fixtures.
func (o *Organizer) SetExtractor(fn ExtractFunc) {
	if fn != nil {
		o.extract = fn
	}
}

// Organize processes every audio file directly inside the inbox
// (non-recursive). Each file is either moved into
// libraryRoot/artist/album, recorded as a duplicate of an existing
// library copy, or left in place with a logged failure. When
// keepInboxFiles is false, duplicate inbox copies are deleted after the
// batch and empty inbox subdirectories are pruned.
func (o *Organizer) Organize(keepInboxFiles bool) (Result, error) {
	if err := fileutil.CheckDirAccess(o.inboxDir); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "library", "organize", "inbox directory not accessible", err)
	}

	entries, err := os.ReadDir(o.inboxDir)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "library", "organize", "read inbox directory", err)
	}

	var result Result
	for _, entry := range entries {
		if entry.IsDir() || !media.IsAudioFile(entry.Name()) {
			continue
		}
		o.organizeFile(entry.Name(), &result)
	}

	if !keepInboxFiles {
		o.cleanupInbox(result)
	}

	o.logger.Info("organize batch finished",
		logging.Int("moved", len(result.Tracks)),
		logging.Int("duplicates", len(result.Duplicates)),
		logging.Int("failures", len(result.Failures)))
	return result, nil
}

func (o *Organizer) organizeFile(name string, result *Result) {
	path := filepath.Join(o.inboxDir, name)

	truncated := textutil.TruncateName(name, o.maxNameLen)
	if truncated != name {
		renamed := filepath.Join(o.inboxDir, truncated)
		if err := os.Rename(path, renamed); err != nil {
			o.logger.Warn("cannot shorten filename, skipping",
				logging.String("file", name),
				logging.Error(err))
			result.Failures = append(result.Failures, Failure{Path: path, Err: err})
			return
		}
		path = renamed
		name = truncated
	}

	track, ok := o.extract(path)
	if !ok {
		o.logger.Warn("tag read failed, using defaults",
			logging.String("file", name))
	}

	destDir := filepath.Join(o.libraryRoot,
		destinationComponent(track.Artist, media.DefaultArtist),
		destinationComponent(track.Album, media.DefaultAlbum))

	if match, found := o.findDuplicate(destDir, track); found {
		o.logger.Info("duplicate in destination folder, skipping move",
			logging.String("file", name),
			logging.String("existing", match.MatchedPath))
		match.InboxPath = path
		result.Duplicates = append(result.Duplicates, match)
		return
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		o.logger.Warn("cannot create destination folder, skipping",
			logging.String("file", name),
			logging.Error(err))
		result.Failures = append(result.Failures, Failure{Path: path, Err: err})
		return
	}

	dest := filepath.Join(destDir, name)
	if err := fileutil.MoveFile(path, dest); err != nil {
		o.logger.Warn("move failed, skipping",
			logging.String("file", name),
			logging.Error(err))
		result.Failures = append(result.Failures, Failure{Path: path, Err: err})
		return
	}

	track.Path = dest
	if info, err := os.Stat(dest); err == nil {
		track.SizeBytes = info.Size()
	}
	result.Tracks = append(result.Tracks, track)

	o.logger.Info("file organized",
		logging.String("file", name),
		logging.String("artist", track.Artist),
		logging.String("album", track.Album))
}

// findDuplicate compares the candidate's title against every audio file
// already in the destination folder, case-insensitively and trimmed. The
// check is scoped to the one album folder, not the whole library.
func (o *Organizer) findDuplicate(destDir string, candidate media.Track) (Duplicate, bool) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return Duplicate{}, false
	}

	want := candidate.TitleKey()
	for _, entry := range entries {
		if entry.IsDir() || !media.IsAudioFile(entry.Name()) {
			continue
		}
		existingPath := filepath.Join(destDir, entry.Name())
		existing, _ := o.extract(existingPath)
		if existing.TitleKey() == want {
			return Duplicate{MatchedPath: existingPath, MatchedTrack: existing}, true
		}
	}
	return Duplicate{}, false
}

// cleanupInbox deletes the inbox copies of recognized duplicates (moved
// files are already gone) and prunes empty subdirectories. Failed files
// stay untouched.
func (o *Organizer) cleanupInbox(result Result) {
	for _, dup := range result.Duplicates {
		if err := os.Remove(dup.InboxPath); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("cannot delete duplicate from inbox",
				logging.String("file", dup.InboxPath),
				logging.Error(err))
		}
	}
	if err := fileutil.RemoveEmptyDirs(o.inboxDir); err != nil {
		o.logger.Warn("inbox cleanup incomplete", logging.Error(err))
	}
}

// ScanPreview lists up to limit audio files waiting in the inbox with
// their resolved metadata, without moving anything. A limit of zero or
// less means no cap.
func (o *Organizer) ScanPreview(limit int) ([]media.Track, error) {
	entries, err := os.ReadDir(o.inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrConfiguration, "library", "scan", "read inbox directory", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !media.IsAudioFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var preview []media.Track
	for _, name := range names {
		if limit > 0 && len(preview) >= limit {
			break
		}
		track, _ := o.extract(filepath.Join(o.inboxDir, name))
		preview = append(preview, track)
	}
	return preview, nil
}

// LibraryPreview walks the organized library tree and returns up to limit
// tracks with resolved metadata. A limit of zero or less means no cap.
func (o *Organizer) LibraryPreview(limit int) ([]media.Track, error) {
	var preview []media.Track
	err := filepath.WalkDir(o.libraryRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == o.libraryRoot {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !media.IsAudioFile(path) {
			return nil
		}
		track, _ := o.extract(path)
		preview = append(preview, track)
		if limit > 0 && len(preview) >= limit {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "library", "preview", "walk library tree", err)
	}
	return preview, nil
}

// destinationComponent sanitizes a path component unless it equals the
// literal default, which is already filesystem-safe.
func destinationComponent(value, fallback string) string {
	if value == fallback {
		return value
	}
	cleaned := textutil.SanitizeName(value)
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
