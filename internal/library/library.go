package library

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultQuarantineName is the reserved directory, directly under the root,
// that receives duplicate and copy-variant files.
const DefaultQuarantineName = "_quarantine"

// ErrOutsideRoot is returned when a path does not resolve under the library root.
var ErrOutsideRoot = errors.New("path is outside the library root")

// Library is a filesystem tree rooted at a single directory.
// It owns path normalization between absolute filesystem paths and the
// root-relative, forward-slash paths stored in the catalog.
type Library struct {
	fs             afero.Fs
	root           string
	quarantineName string
}

// New creates a Library over fs rooted at root. The root is resolved to an
// absolute, cleaned path. An empty quarantineName selects DefaultQuarantineName.
func New(fs afero.Fs, root, quarantineName string) (*Library, error) {
	if root == "" {
		return nil, fmt.Errorf("library root is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library root %s: %w", root, err)
	}
	if quarantineName == "" {
		quarantineName = DefaultQuarantineName
	}
	if strings.ContainsAny(quarantineName, `/\`) || quarantineName == "." || quarantineName == ".." {
		return nil, fmt.Errorf("invalid quarantine directory name %q", quarantineName)
	}
	return &Library{
		fs:             fs,
		root:           absRoot,
		quarantineName: quarantineName,
	}, nil
}

// Fs returns the filesystem the library operates on.
func (l *Library) Fs() afero.Fs {
	return l.fs
}

// Root returns the absolute library root.
func (l *Library) Root() string {
	return l.root
}

// QuarantineName returns the reserved quarantine directory name.
func (l *Library) QuarantineName() string {
	return l.quarantineName
}

// QuarantineDir returns the absolute path of the quarantine directory.
func (l *Library) QuarantineDir() string {
	return filepath.Join(l.root, l.quarantineName)
}

// RelPath converts an absolute (or cwd-relative) path into a root-relative
// path with forward slashes and a single leading slash. The root maps to "/".
func (l *Library) RelPath(fullPath string) (string, error) {
	abs, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", fullPath, err)
	}
	if abs == l.root {
		return "/", nil
	}

	prefix := l.root
	if !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix += string(os.PathSeparator)
	}
	if !strings.HasPrefix(abs, prefix) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, fullPath)
	}

	rel := filepath.ToSlash(strings.TrimPrefix(abs, prefix))
	return "/" + strings.TrimLeft(rel, "/"), nil
}

// AbsPath converts a stored root-relative path back into an absolute path.
// Paths containing ".." segments are rejected rather than clamped.
func (l *Library) AbsPath(rel string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(rel), `\`, "/")
	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
		}
	}
	cleaned := path.Clean("/" + normalized)
	if cleaned == "/" {
		return l.root, nil
	}
	return filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}

// IsQuarantined reports whether fullPath is the quarantine directory or lies
// beneath it. Only the first segment of the relative path is compared, case
// sensitively, so a nested folder with the same name is ordinary content.
func (l *Library) IsQuarantined(fullPath string) bool {
	rel, err := l.RelPath(fullPath)
	if err != nil {
		return false
	}
	return l.IsQuarantinedRel(rel)
}

// IsQuarantinedRel is IsQuarantined for an already normalized relative path.
func (l *Library) IsQuarantinedRel(rel string) bool {
	first, _, _ := strings.Cut(strings.TrimPrefix(rel, "/"), "/")
	return first == l.quarantineName
}

// Exists reports whether the given absolute path exists.
func (l *Library) Exists(fullPath string) (bool, error) {
	return afero.Exists(l.fs, fullPath)
}

// ParentRel returns the relative path of the directory containing rel.
// The root has no parent and yields "".
func ParentRel(rel string) string {
	if rel == "/" || rel == "" {
		return ""
	}
	return path.Dir(rel)
}
