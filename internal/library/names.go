package library

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	copyMarker    = regexp.MustCompile(`(?i)\s+-\s+copy(?:\s+\(\d+\))?$`)
	numericMarker = regexp.MustCompile(`\s+\(\d+\)$`)
)

// NameWithoutExt returns the basename of fullPath minus its final extension.
func NameWithoutExt(fullPath string) string {
	base := filepath.Base(fullPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Canonicalize strips trailing " - Copy", " - Copy (N)" and " (N)" markers
// until none remain. A name made only of markers keeps its last non-empty form.
func Canonicalize(name string) string {
	current := strings.TrimSpace(name)
	for {
		next := strings.TrimSpace(copyMarker.ReplaceAllString(current, ""))
		next = strings.TrimSpace(numericMarker.ReplaceAllString(next, ""))
		if next == "" || next == current {
			return current
		}
		current = next
	}
}

// CanonicalKey is the duplicate grouping key for a file path.
func CanonicalKey(fullPath string) string {
	return strings.ToLower(Canonicalize(NameWithoutExt(fullPath)))
}

// IsCopyVariant reports whether an extension-less name carries a copy or
// numeric duplicate marker.
func IsCopyVariant(name string) bool {
	trimmed := strings.TrimSpace(name)
	return copyMarker.MatchString(trimmed) || numericMarker.MatchString(trimmed)
}
