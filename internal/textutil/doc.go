// Package textutil provides filename and path-segment sanitization.
//
// SanitizeName maps artist, album, and playlist names onto safe folder and
// file components; TruncateName bounds filename length without ever touching
// the extension. Both are pure functions and sanitization is idempotent, so
// callers can apply them repeatedly.
package textutil
