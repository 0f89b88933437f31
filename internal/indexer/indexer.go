package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/library"
	"folder-catalog/internal/storage"
)

// Store is the relational collaborator of the indexer and reconciler.
// *storage.Store satisfies it.
type Store interface {
	storage.Querier
	WithinTx(ctx context.Context, fn func(q storage.Querier) error) error
}

// Indexer reconciles single filesystem entries into the files and items tables.
type Indexer struct {
	lib   *library.Library
	store Store
}

// NewIndexer creates a new Indexer.
func NewIndexer(lib *library.Library, store Store) *Indexer {
	return &Indexer{
		lib:   lib,
		store: store,
	}
}

// IndexEntry upserts the entry at fullPath with the given parent and, for
// files, heals the catalog entry sharing its display name. Failures are
// logged and reported as StatusError; they never panic or abort the caller.
func (ix *Indexer) IndexEntry(ctx context.Context, fullPath string, parentID *int64) Result {
	return ix.index(ctx, fullPath, parentID, HealItem)
}

// IndexNewFile indexes a file added through the API. It creates the catalog
// entry when none carries the file's name but never repoints an existing one.
func (ix *Indexer) IndexNewFile(ctx context.Context, fullPath string, parentID *int64) Result {
	return ix.index(ctx, fullPath, parentID, func(ctx context.Context, q storage.Querier, name, link string) error {
		_, err := q.InsertItemIfMissing(ctx, name, link)
		return err
	})
}

type linkFunc func(ctx context.Context, q storage.Querier, name, link string) error

func (ix *Indexer) index(ctx context.Context, fullPath string, parentID *int64, link linkFunc) Result {
	logger := contextutil.LoggerFromContext(ctx)

	res, err := ix.indexEntry(ctx, fullPath, parentID, link)
	if err != nil {
		logger.ErrorContext(ctx, "failed to index entry", "path", fullPath, "error", err)
		return Result{Status: StatusError, Path: res.Path, Err: err}
	}

	logger.DebugContext(ctx, "indexed entry", "path", res.Path, "status", res.Status, "id", res.ID)
	return res
}

func (ix *Indexer) indexEntry(ctx context.Context, fullPath string, parentID *int64, link linkFunc) (Result, error) {
	rel, err := ix.lib.RelPath(fullPath)
	if err != nil {
		return Result{Path: fullPath}, err
	}
	res := Result{Path: rel}

	info, err := ix.lib.Fs().Stat(fullPath)
	if err != nil {
		return res, fmt.Errorf("failed to stat %s: %w", fullPath, err)
	}

	record := &storage.FileRecord{
		Path:         rel,
		ParentID:     parentID,
		LastModified: info.ModTime().UTC(),
	}
	if info.IsDir() {
		record.Type = storage.FileTypeDirectory
		record.Subtype = library.SubtypeText
		record.Name = filepath.Base(fullPath)
	} else {
		size := info.Size()
		record.Type = storage.FileTypeFile
		record.Size = &size
		record.Subtype = library.Subtype(fullPath)
		record.Name = library.NameWithoutExt(fullPath)
	}

	err = ix.store.WithinTx(ctx, func(q storage.Querier) error {
		existing, err := q.FileByPath(ctx, rel)
		switch {
		case err == nil:
			record.ID = existing.ID
			if err := q.RefreshFile(ctx, record); err != nil {
				return err
			}
			res.Status = StatusUpdated
		case errors.Is(err, storage.ErrNotFound):
			if _, err := q.InsertFile(ctx, record); err != nil {
				return err
			}
			res.Status = StatusIndexed
		default:
			return err
		}
		res.ID = record.ID

		if record.Type != storage.FileTypeFile {
			return nil
		}
		return link(ctx, q, record.Name, rel)
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// HealItem repoints the file-type catalog entry named name at link, creating
// the entry when none exists yet.
func HealItem(ctx context.Context, q storage.Querier, name, link string) error {
	n, err := q.RelinkItemsByName(ctx, name, link)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = q.InsertItem(ctx, &storage.ItemRecord{
		Name: name,
		Link: &link,
		Type: storage.ItemTypeFile,
	})
	return err
}
