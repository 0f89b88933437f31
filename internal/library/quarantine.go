package library

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EnsureQuarantine creates the quarantine directory if it does not exist.
func (l *Library) EnsureQuarantine() error {
	if err := l.fs.MkdirAll(l.QuarantineDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create quarantine directory %s: %w", l.QuarantineDir(), err)
	}
	return nil
}

// Quarantine moves src into the quarantine directory and returns its new path.
// When the basename is taken, "__dupN" is inserted before the extension with
// N counting up from 2 until a free name is found.
func (l *Library) Quarantine(src string) (string, error) {
	if err := l.EnsureQuarantine(); err != nil {
		return "", err
	}

	dest, err := l.freeQuarantineName(filepath.Base(src))
	if err != nil {
		return "", err
	}
	if err := l.fs.Rename(src, dest); err != nil {
		return "", fmt.Errorf("failed to move %s to quarantine: %w", src, err)
	}
	return dest, nil
}

func (l *Library) freeQuarantineName(base string) (string, error) {
	dir := l.QuarantineDir()
	candidate := filepath.Join(dir, base)
	exists, err := l.Exists(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", candidate, err)
	}
	if !exists {
		return candidate, nil
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 2; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s__dup%d%s", stem, n, ext))
		exists, err := l.Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}
