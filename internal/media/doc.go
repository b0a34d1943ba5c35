// Package media defines the track record shared by the extractor, organizer,
// playlist store, and catalog.
//
// A Track is always fully populated: components that fail to read real
// metadata substitute the documented defaults instead of returning partial
// records. Comparison helpers centralize the caseless, whitespace-trimmed
// matching used by duplicate detection so the two duplicate definitions
// (folder-scoped title match during ingestion, library-wide triple match
// during playlist merge) share one normalization.
package media
