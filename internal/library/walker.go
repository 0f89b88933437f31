package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"folder-catalog/internal/contextutil"
)

// Tree is the flat result of walking a library.
type Tree struct {
	Files []string // Absolute file paths in pre-order
	Dirs  []string // Absolute directory paths in pre-order, root excluded
}

type walkItem struct {
	path  string
	isDir bool
}

// Walk enumerates every file and directory under the root in pre-order.
// The quarantine directory and its contents are never emitted.
// Failing to read the root is fatal; failing to read a nested directory is
// logged and that directory contributes no entries.
func (l *Library) Walk(ctx context.Context) (*Tree, error) {
	logger := contextutil.LoggerFromContext(ctx)

	rootEntries, err := afero.ReadDir(l.fs, l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read library root %s: %w", l.root, err)
	}

	tree := &Tree{}
	stack := make([]walkItem, 0, len(rootEntries))
	stack = l.pushEntries(stack, l.root, rootEntries)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !item.isDir {
			tree.Files = append(tree.Files, item.path)
			continue
		}
		tree.Dirs = append(tree.Dirs, item.path)

		entries, err := afero.ReadDir(l.fs, item.path)
		if err != nil {
			logger.WarnContext(ctx, "failed to read directory", "path", item.path, "error", err)
			continue
		}
		stack = l.pushEntries(stack, item.path, entries)
	}

	return tree, nil
}

// pushEntries pushes children in reverse so they pop in name order.
func (l *Library) pushEntries(stack []walkItem, dir string, entries []os.FileInfo) []walkItem {
	for i := len(entries) - 1; i >= 0; i-- {
		full := filepath.Join(dir, entries[i].Name())
		if l.IsQuarantined(full) {
			continue
		}
		stack = append(stack, walkItem{path: full, isDir: entries[i].IsDir()})
	}
	return stack
}
