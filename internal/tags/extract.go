package tags

import (
	"os"
	"strconv"
	"strings"

	"go.senan.xyz/taglib"

	"chorus/internal/media"
)

// tagMap wraps a taglib result map with helper methods.
type tagMap map[string][]string

// get returns the first value for any of the given keys, or empty string.
func (t tagMap) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// trackNumber parses a track number that may be "N" or "N/M" format and
// returns the numerator as a string.
func (t tagMap) trackNumber() string {
	s := t.get(taglib.TrackNumber)
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, "/"); idx > 0 {
		s = s[:idx]
	}
	if _, err := strconv.Atoi(s); err != nil {
		return ""
	}
	return s
}

// Extract reads metadata from the audio file at path. Every missing or
// unreadable field falls back to its default, so the returned track is
// always complete. The boolean reports whether the tag container was
// actually parsed; when false the track carries defaults with the title
// taken from the filename.
func Extract(path string) (media.Track, bool) {
	track := media.DefaultTrack(path)

	if info, err := os.Stat(path); err == nil {
		track.SizeBytes = info.Size()
	}

	raw, err := taglib.ReadTags(path)
	readOK := err == nil
	if readOK {
		t := tagMap(raw)
		if v := strings.TrimSpace(t.get(taglib.Title)); v != "" {
			track.Title = v
		}
		if v := strings.TrimSpace(t.get(taglib.Artist, taglib.AlbumArtist)); v != "" {
			track.Artist = v
		}
		if v := strings.TrimSpace(t.get(taglib.Album)); v != "" {
			track.Album = v
		}
		if v := yearOf(t.get(taglib.Date, "YEAR", "ORIGINALYEAR")); v != "" {
			track.Year = v
		}
		if v := t.trackNumber(); v != "" {
			track.TrackNumber = v
		}
	}

	if props, err := taglib.ReadProperties(path); err == nil {
		if props.Length > 0 {
			track.DurationMS = props.Length.Milliseconds()
		}
		if props.Bitrate > 0 {
			track.Bitrate = int(props.Bitrate)
		}
		if props.SampleRate > 0 {
			track.SampleRate = int(props.SampleRate)
		}
	}

	return track, readOK
}

// yearOf reduces a date tag ("2024", "2024-03-01") to its year component.
func yearOf(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return ""
	}
	year := date[:4]
	if _, err := strconv.Atoi(year); err != nil {
		return ""
	}
	return year
}
