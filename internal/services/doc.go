// Package services defines the shared error taxonomy and context carriers
// used across ingestion components.
//
// Errors are tagged with sentinel markers (validation, not-found, parse,
// external tool, transient) via Wrap so callers classify failures with
// errors.Is instead of string matching. Context helpers thread batch and
// playlist identifiers to the logging layer.
package services
