// Package catalog records ingested tracks and ingestion batches in a
// SQLite database so past runs can be listed and queried.
package catalog
