// Package playlist persists playlists as property-list XML documents and
// merges new tracks into existing documents without disturbing recorded
// track identifiers.
package playlist
