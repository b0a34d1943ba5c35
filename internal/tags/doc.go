// Package tags extracts audio metadata from files, applying stable
// fallbacks so every file yields a usable track record.
package tags
