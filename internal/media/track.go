package media

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// Default values substituted when tag extraction fails or a field is absent.
const (
	DefaultArtist      = "AAAnonymus"
	DefaultAlbum       = "Singles"
	DefaultYear        = "2024"
	DefaultTrackNumber = "1"
	DefaultBitrate     = 128
	DefaultSampleRate  = 48000
)

// Track is one audio file's metadata record. String fields hold tag values,
// numeric fields hold stream properties. Path is the absolute location of the
// file after organization.
type Track struct {
	Title       string
	Artist      string
	Album       string
	Year        string
	TrackNumber string
	DurationMS  int64
	Bitrate     int
	SampleRate  int
	SizeBytes   int64
	Path        string
}

// DefaultTrack returns the fully populated fallback record for path, using
// the filename stem as the title.
func DefaultTrack(path string) Track {
	return Track{
		Title:       Stem(path),
		Artist:      DefaultArtist,
		Album:       DefaultAlbum,
		Year:        DefaultYear,
		TrackNumber: DefaultTrackNumber,
		DurationMS:  0,
		Bitrate:     DefaultBitrate,
		SampleRate:  DefaultSampleRate,
		Path:        path,
	}
}

// Stem returns the filename without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var foldCaser = cases.Fold()

// FoldKey normalizes a value for caseless, whitespace-insensitive comparison.
func FoldKey(value string) string {
	return foldCaser.String(strings.TrimSpace(value))
}

// TitleKey returns the normalized title used by folder-scoped duplicate
// detection during ingestion.
func (t Track) TitleKey() string {
	return FoldKey(t.Title)
}

// TripleKey returns the normalized (title, artist, album) key used by
// playlist-merge duplicate detection.
func (t Track) TripleKey() string {
	return FoldKey(t.Title) + "\x00" + FoldKey(t.Artist) + "\x00" + FoldKey(t.Album)
}

// audioExtensions lists the file types the organizer ingests.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".flac": {},
	".m4a":  {},
	".ogg":  {},
	".opus": {},
}

// IsAudioFile reports whether path has a supported audio extension.
func IsAudioFile(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
