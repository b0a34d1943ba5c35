package textutil

import (
	"path/filepath"
	"strings"
)

// MaxNameLength is the default filename length budget applied to inbox files
// before organization.
const MaxNameLength = 100

// nameReplacer substitutes filesystem-unsafe characters with underscores.
var nameReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	"\"", "_",
	"/", "_",
	"\\", "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// SanitizeName replaces filesystem-unsafe characters in a name with
// underscores, then trims surrounding whitespace and trailing dots.
func SanitizeName(name string) string {
	name = nameReplacer.Replace(name)
	name = strings.TrimSpace(name)
	return strings.TrimRight(name, ".")
}

// TruncateName shortens name so that its total length does not exceed maxLen,
// cutting only the base portion. The extension is never altered or dropped,
// even when it alone exceeds the budget.
func TruncateName(name string, maxLen int) string {
	if maxLen <= 0 || len(name) <= maxLen {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	keep := maxLen - len(ext)
	if keep < 0 {
		keep = 0
	}
	if keep > len(base) {
		keep = len(base)
	}
	return base[:keep] + ext
}
