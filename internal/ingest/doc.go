// Package ingest runs the full ingestion pipeline: optional download into
// the inbox, organization into the library tree, playlist create-or-merge,
// and catalog recording. A file lock keeps concurrent runs against the
// same library from racing.
package ingest
