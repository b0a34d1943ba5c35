// Package download drives the external downloader process that fills the
// inbox, streaming its output line by line and retrying failed runs with
// a fixed delay.
package download
