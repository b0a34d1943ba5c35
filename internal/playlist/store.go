package playlist

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"chorus/internal/logging"
	"chorus/internal/media"
	"chorus/internal/services"
	"chorus/internal/textutil"
)

const (
	baseTrackID        = 100
	applicationVersion = "12.13.7.1"
	libraryFeatures    = 5
	audioKind          = "File audio MPEG"
	fileTrackType      = "File"
)

// Info describes one playlist file in the store directory.
type Info struct {
	Name      string
	Path      string
	SizeBytes int64
}

// MergeResult reports the outcome of adding tracks to an existing playlist.
type MergeResult struct {
	Added      int
	Duplicates int
	TotalSongs int
}

// Store reads and writes playlist documents under a single directory. One
// playlist is one file named after the sanitized playlist name.
type Store struct {
	dir         string
	libraryRoot string
	logger      *slog.Logger

	// NewID returns a fresh 16-character uppercase hex identifier. Tests
	// replace it with a deterministic sequence.
	NewID func() string
	// Now supplies document timestamps.
	Now func() time.Time
}

// NewStore returns a store rooted at dir. Music folder references in
// written documents point at libraryRoot.
func NewStore(dir, libraryRoot string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		dir:         dir,
		libraryRoot: libraryRoot,
		logger:      logging.NewComponentLogger(logger, "playlist"),
		NewID:       NewPersistentID,
		Now:         time.Now,
	}
}

// NewPersistentID derives a 16-character uppercase hex identifier from a
// random UUID.
func NewPersistentID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw)[:16]
}

// Path returns the file path the given playlist name maps to.
func (s *Store) Path(name string) string {
	cleaned := textutil.SanitizeName(name)
	if cleaned == "" {
		cleaned = strings.ToLower(s.NewID())
	}
	return filepath.Join(s.dir, cleaned+".xml")
}

// Create writes a new playlist document containing the given tracks, with
// track IDs assigned sequentially from 100 in input order. It returns the
// path of the written file.
func (s *Store) Create(tracks []media.Track, name string) (string, error) {
	valid := validTracks(tracks)
	if len(valid) == 0 {
		return "", services.Wrap(services.ErrValidation, "playlist", "create", "no valid tracks to write", nil)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "playlist", "create", "create store directory", err)
	}

	path := s.Path(name)
	doc := s.buildDocument(valid, strings.TrimSuffix(filepath.Base(path), ".xml"))
	if err := s.writeDocument(path, doc); err != nil {
		return "", err
	}

	s.logger.Info("playlist created",
		logging.String("path", path),
		logging.Int("tracks", len(valid)))
	return path, nil
}

// List enumerates the *.xml files in the store directory. Contents are not
// parsed.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrConfiguration, "playlist", "list", "read store directory", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:      strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Path:      filepath.Join(s.dir, entry.Name()),
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Read parses the named playlist and reconstructs its tracks in recorded
// order. Unknown keys are ignored; a document without a Tracks section
// yields an empty list rather than an error.
func (s *Store) Read(name string) ([]media.Track, error) {
	path := s.Path(name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "playlist", "read", fmt.Sprintf("playlist %q not found", name), err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "playlist", "read", "open playlist", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, "playlist", "read", "parse playlist document", err)
	}

	tracksDict, ok := doc.Root.DictValue("Tracks")
	if !ok {
		s.logger.Warn("playlist has no Tracks section", logging.String("path", path))
		return nil, nil
	}

	var tracks []media.Track
	tracksDict.Each(func(key string, value Value) {
		entry, ok := value.(*Dict)
		if !ok {
			s.logger.Warn("skipping non-dict track entry", logging.String("key", key))
			return
		}
		tracks = append(tracks, trackFromDict(entry))
	})
	return tracks, nil
}

// AddToExisting merges tracks into the named playlist. Candidates whose
// trimmed, case-insensitive (title, artist, album) triple matches an
// already-recorded track are counted as duplicates and skipped; the rest
// are appended with track IDs continuing from max(existing)+1. Existing
// entries and their IDs are never rewritten.
func (s *Store) AddToExisting(tracks []media.Track, name string) (MergeResult, error) {
	path := s.Path(name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return MergeResult{}, services.Wrap(services.ErrNotFound, "playlist", "merge", fmt.Sprintf("playlist %q not found", name), err)
		}
		return MergeResult{}, services.Wrap(services.ErrConfiguration, "playlist", "merge", "open playlist", err)
	}
	doc, err := Parse(f)
	f.Close()
	if err != nil {
		return MergeResult{}, services.Wrap(services.ErrParse, "playlist", "merge", "parse existing playlist", err)
	}

	tracksDict, ok := doc.Root.DictValue("Tracks")
	if !ok {
		tracksDict = NewDict()
		doc.Root.Set("Tracks", tracksDict)
	}

	existing := make(map[string]struct{}, tracksDict.Len())
	nextID := int64(baseTrackID)
	tracksDict.Each(func(key string, value Value) {
		entry, ok := value.(*Dict)
		if !ok {
			return
		}
		existing[trackFromDict(entry).TripleKey()] = struct{}{}
		id := entry.IntValue("Track ID")
		if id == 0 {
			id, _ = strconv.ParseInt(key, 10, 64)
		}
		if id >= nextID {
			nextID = id + 1
		}
	})

	items := s.playlistItems(doc)
	result := MergeResult{}
	for _, track := range validTracks(tracks) {
		if _, dup := existing[track.TripleKey()]; dup {
			result.Duplicates++
			s.logger.Info("duplicate track skipped",
				logging.String("title", track.Title),
				logging.String("artist", track.Artist))
			continue
		}
		existing[track.TripleKey()] = struct{}{}
		tracksDict.Set(strconv.FormatInt(nextID, 10), s.trackDict(track, nextID))
		item := NewDict()
		item.Set("Track ID", Integer(nextID))
		items.Append(item)
		nextID++
		result.Added++
	}
	result.TotalSongs = tracksDict.Len()

	if result.Added > 0 {
		if err := s.writeDocument(path, doc); err != nil {
			return MergeResult{}, err
		}
	}

	s.logger.Info("playlist merge finished",
		logging.String("path", path),
		logging.Int("added", result.Added),
		logging.Int("duplicates", result.Duplicates),
		logging.Int("total", result.TotalSongs))
	return result, nil
}

// playlistItems returns the item array of the document's first playlist,
// creating the containers when a foreign document lacks them.
func (s *Store) playlistItems(doc *Document) *Array {
	playlists, ok := doc.Root.ArrayValue("Playlists")
	if !ok {
		playlists = NewArray()
		doc.Root.Set("Playlists", playlists)
	}
	var entry *Dict
	for _, v := range playlists.Values {
		if d, ok := v.(*Dict); ok {
			entry = d
			break
		}
	}
	if entry == nil {
		entry = NewDict()
		playlists.Append(entry)
	}
	items, ok := entry.ArrayValue("Playlist Items")
	if !ok {
		items = NewArray()
		entry.Set("Playlist Items", items)
	}
	return items
}

func (s *Store) buildDocument(tracks []media.Track, name string) *Document {
	now := s.Now().UTC().Format(time.RFC3339)

	doc := NewDocument()
	root := doc.Root
	root.Set("Major Version", Integer(1))
	root.Set("Minor Version", Integer(1))
	root.Set("Date", Date(now))
	root.Set("Application Version", String(applicationVersion))
	root.Set("Features", Integer(libraryFeatures))
	root.Set("Show Content Ratings", Boolean(true))
	root.Set("Music Folder", String(fileLocalhostURI(s.libraryRoot)+"/"))
	root.Set("Library Persistent ID", String(s.NewID()))

	tracksDict := NewDict()
	id := int64(baseTrackID)
	ids := make([]int64, 0, len(tracks))
	for _, track := range tracks {
		tracksDict.Set(strconv.FormatInt(id, 10), s.trackDict(track, id))
		ids = append(ids, id)
		id++
	}
	root.Set("Tracks", tracksDict)

	items := NewArray()
	for _, trackID := range ids {
		item := NewDict()
		item.Set("Track ID", Integer(trackID))
		items.Append(item)
	}

	entry := NewDict()
	entry.Set("Name", String(name))
	entry.Set("Description", String(""))
	entry.Set("Playlist ID", Integer(baseTrackID+int64(len(tracks))+1))
	entry.Set("Playlist Persistent ID", String(s.NewID()))
	entry.Set("All Items", Boolean(true))
	entry.Set("Playlist Items", items)

	playlists := NewArray()
	playlists.Append(entry)
	root.Set("Playlists", playlists)

	return doc
}

func (s *Store) trackDict(track media.Track, id int64) *Dict {
	now := s.Now().UTC().Format(time.RFC3339)

	d := NewDict()
	d.Set("Track ID", Integer(id))
	d.Set("Name", String(track.Title))
	d.Set("Artist", String(track.Artist))
	d.Set("Album", String(track.Album))
	d.Set("Kind", String(audioKind))
	d.Set("Size", Integer(track.SizeBytes))
	d.Set("Total Time", Integer(track.DurationMS))
	d.Set("Track Number", Integer(intOrDefault(track.TrackNumber, 1)))
	d.Set("Year", Integer(intOrDefault(track.Year, 0)))
	d.Set("Date Modified", Date(now))
	d.Set("Date Added", Date(now))
	d.Set("Bit Rate", Integer(int64(track.Bitrate)))
	d.Set("Sample Rate", Integer(int64(track.SampleRate)))
	d.Set("Persistent ID", String(s.NewID()))
	d.Set("Track Type", String(fileTrackType))
	d.Set("Location", String(fileLocalhostURI(track.Path)))
	d.Set("File Folder Count", Integer(-1))
	d.Set("Library Folder Count", Integer(-1))
	return d
}

// writeDocument serializes to a temporary file and renames it into place so
// a failed write never leaves a truncated playlist behind.
func (s *Store) writeDocument(path string, doc *Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".playlist-*.xml")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "playlist", "write", "create temporary file", err)
	}
	tmpName := tmp.Name()
	if err := doc.Encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return services.Wrap(services.ErrParse, "playlist", "write", "encode playlist document", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrConfiguration, "playlist", "write", "flush playlist document", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrConfiguration, "playlist", "write", "replace playlist document", err)
	}
	return nil
}

func trackFromDict(d *Dict) media.Track {
	track := media.Track{
		Title:      d.StringValue("Name"),
		Artist:     d.StringValue("Artist"),
		Album:      d.StringValue("Album"),
		SizeBytes:  d.IntValue("Size"),
		DurationMS: d.IntValue("Total Time"),
		Bitrate:    int(d.IntValue("Bit Rate")),
		SampleRate: int(d.IntValue("Sample Rate")),
		Path:       pathFromLocation(d.StringValue("Location")),
	}
	if n := d.IntValue("Track Number"); n > 0 {
		track.TrackNumber = strconv.FormatInt(n, 10)
	}
	if y := d.IntValue("Year"); y > 0 {
		track.Year = strconv.FormatInt(y, 10)
	}
	return track
}

// validTracks drops entries missing the fields a document entry cannot be
// built without.
func validTracks(tracks []media.Track) []media.Track {
	valid := make([]media.Track, 0, len(tracks))
	for _, t := range tracks {
		if strings.TrimSpace(t.Title) == "" || strings.TrimSpace(t.Path) == "" {
			continue
		}
		valid = append(valid, t)
	}
	return valid
}

func intOrDefault(s string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return def
	}
	return n
}

func fileLocalhostURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Host: "localhost", Path: filepath.ToSlash(abs)}
	return u.String()
}

func pathFromLocation(location string) string {
	if location == "" {
		return ""
	}
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return u.Path
}
