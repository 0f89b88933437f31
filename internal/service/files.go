package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_service.go -package=mocks -mock_names=FileService=MockFileService folder-catalog/internal/service FileService

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/indexer"
	"folder-catalog/internal/library"
	"folder-catalog/internal/storage"
)

// Move outcomes reported per file by MoveMany.
const (
	MoveStatusMoved    = "moved"
	MoveStatusNotFound = "not_found"
	MoveStatusError    = "error"
)

// MoveResult is the outcome of moving one file.
type MoveResult struct {
	FileID  int64  `json:"fileId"`
	Status  string `json:"status"`
	NewPath string `json:"newPath,omitempty"`
	Message string `json:"message,omitempty"`
}

// FileService keeps the library tree and the files table in step for
// user-initiated file operations.
type FileService interface {
	// List returns every indexed entry ordered by path.
	List(ctx context.Context) ([]storage.FileRecord, error)
	// Get returns one indexed entry.
	Get(ctx context.Context, id int64) (*storage.FileRecord, error)
	// Open opens the file behind an indexed entry for reading.
	Open(ctx context.Context, id int64) (afero.File, *storage.FileRecord, error)
	// Upload writes content to the library root under filename and indexes it.
	Upload(ctx context.Context, filename string, content io.Reader) (*storage.FileRecord, error)
	// Delete removes an entry and unlinks its file.
	Delete(ctx context.Context, id int64) (*storage.FileRecord, error)
	// Move relocates a file into folder, a root-relative directory.
	Move(ctx context.Context, id int64, folder string) (*storage.FileRecord, error)
	// MoveMany moves each file independently and reports per-file outcomes.
	MoveMany(ctx context.Context, ids []int64, folder string) ([]MoveResult, error)
}

// fileService implements FileService.
type fileService struct {
	lib     *library.Library
	store   indexer.Store
	indexer *indexer.Indexer
}

// NewFileService creates a new FileService.
func NewFileService(lib *library.Library, store indexer.Store, ix *indexer.Indexer) FileService {
	return &fileService{
		lib:     lib,
		store:   store,
		indexer: ix,
	}
}

func (s *fileService) List(ctx context.Context) ([]storage.FileRecord, error) {
	files, err := s.store.ListFiles(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list files")
	}
	return files, nil
}

func (s *fileService) Get(ctx context.Context, id int64) (*storage.FileRecord, error) {
	f, err := s.store.FileByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to get file")
	}
	return f, nil
}

func (s *fileService) Open(ctx context.Context, id int64) (afero.File, *storage.FileRecord, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.Type != storage.FileTypeFile {
		return nil, nil, &ValidationError{Field: "id", Message: "is a directory"}
	}

	abs, err := s.lib.AbsPath(f.Path)
	if err != nil {
		return nil, nil, WrapError(err, "failed to resolve file")
	}
	file, err := s.lib.Fs().Open(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, WrapError(err, "failed to open file")
	}
	return file, f, nil
}

func (s *fileService) Upload(ctx context.Context, filename string, content io.Reader) (*storage.FileRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return nil, &ValidationError{Field: "file", Message: "filename is required"}
	}
	if name == s.lib.QuarantineName() {
		return nil, &ValidationError{Field: "file", Message: "filename is reserved"}
	}

	dest := filepath.Join(s.lib.Root(), name)
	// An existing file with the same name is replaced, like a re-upload.
	out, err := s.lib.Fs().OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, WrapError(err, "failed to create file")
	}
	if _, err := io.Copy(out, content); err != nil {
		_ = out.Close()
		return nil, WrapError(err, "failed to write file")
	}
	if err := out.Close(); err != nil {
		return nil, WrapError(err, "failed to write file")
	}

	res := s.indexer.IndexNewFile(ctx, dest, nil)
	if res.Status == indexer.StatusError {
		return nil, WrapError(res.Err, "failed to index uploaded file")
	}

	logger.InfoContext(ctx, "file uploaded", "path", res.Path, "status", res.Status)
	return s.Get(ctx, res.ID)
}

func (s *fileService) Delete(ctx context.Context, id int64) (*storage.FileRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Type != storage.FileTypeFile {
		return nil, &ValidationError{Field: "id", Message: "directories cannot be deleted"}
	}

	deleted, err := s.store.DeleteFile(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to delete file")
	}

	abs, err := s.lib.AbsPath(deleted.Path)
	if err != nil {
		return nil, WrapError(err, "failed to resolve file")
	}
	if err := s.lib.Fs().Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		// The row is gone; a leftover file is picked up by the next scan.
		logger.WarnContext(ctx, "failed to unlink deleted file", "path", abs, "error", err)
	}

	logger.InfoContext(ctx, "file deleted", "path", deleted.Path)
	return deleted, nil
}

func (s *fileService) Move(ctx context.Context, id int64, folder string) (*storage.FileRecord, error) {
	folderAbs, err := s.resolveFolder(folder)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, id, folderAbs)
}

func (s *fileService) MoveMany(ctx context.Context, ids []int64, folder string) ([]MoveResult, error) {
	if len(ids) == 0 {
		return nil, &ValidationError{Field: "fileIds", Message: "cannot be empty"}
	}
	folderAbs, err := s.resolveFolder(folder)
	if err != nil {
		return nil, err
	}

	results := make([]MoveResult, 0, len(ids))
	for _, id := range ids {
		moved, err := s.move(ctx, id, folderAbs)
		switch {
		case err == nil:
			results = append(results, MoveResult{FileID: id, Status: MoveStatusMoved, NewPath: moved.Path})
		case errors.Is(err, ErrNotFound):
			results = append(results, MoveResult{FileID: id, Status: MoveStatusNotFound})
		default:
			results = append(results, MoveResult{FileID: id, Status: MoveStatusError, Message: err.Error()})
		}
	}
	return results, nil
}

// resolveFolder maps a root-relative folder to an absolute path, refusing
// escapes and the quarantine directory.
func (s *fileService) resolveFolder(folder string) (string, error) {
	if strings.TrimSpace(folder) == "" {
		return "", &ValidationError{Field: "newFolder", Message: "is required"}
	}
	abs, err := s.lib.AbsPath(folder)
	if err != nil {
		return "", &ValidationError{Field: "newFolder", Message: "must stay inside the library"}
	}
	if s.lib.IsQuarantined(abs) {
		return "", &ValidationError{Field: "newFolder", Message: "cannot target the quarantine directory"}
	}
	return abs, nil
}

func (s *fileService) move(ctx context.Context, id int64, folderAbs string) (*storage.FileRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Type != storage.FileTypeFile {
		return nil, &ValidationError{Field: "fileId", Message: "directories cannot be moved"}
	}

	src, err := s.lib.AbsPath(f.Path)
	if err != nil {
		return nil, WrapError(err, "failed to resolve file")
	}
	dest := filepath.Join(folderAbs, filepath.Base(src))
	if dest == src {
		return f, nil
	}
	newRel, err := s.lib.RelPath(dest)
	if err != nil {
		return nil, WrapError(err, "failed to resolve destination")
	}

	fs := s.lib.Fs()
	if exists, err := afero.Exists(fs, dest); err != nil {
		return nil, WrapError(err, "failed to check destination")
	} else if exists {
		return nil, WrapError(ErrConflict, newRel+" already exists")
	}
	if err := fs.MkdirAll(folderAbs, 0o755); err != nil {
		return nil, WrapError(err, "failed to create folder")
	}
	parentID, err := s.directoryID(ctx, folderAbs)
	if err != nil {
		return nil, err
	}
	if err := fs.Rename(src, dest); err != nil {
		return nil, WrapError(err, "failed to move file")
	}

	err = s.store.WithinTx(ctx, func(q storage.Querier) error {
		if err := q.UpdateFileLocation(ctx, f.ID, newRel, parentID); err != nil {
			return err
		}
		return indexer.HealItem(ctx, q, f.Name, newRel)
	})
	if err != nil {
		if rbErr := fs.Rename(dest, src); rbErr != nil {
			logger.ErrorContext(ctx, "failed to restore file after store error", "path", dest, "error", rbErr)
		}
		return nil, WrapError(err, "failed to record move")
	}

	logger.InfoContext(ctx, "file moved", "from", f.Path, "to", newRel)
	f.Path = newRel
	f.ParentID = parentID
	return f, nil
}

// directoryID returns the files id of the directory at abs, indexing it and
// its missing ancestors first. The root has no row and yields nil.
func (s *fileService) directoryID(ctx context.Context, abs string) (*int64, error) {
	rel, err := s.lib.RelPath(abs)
	if err != nil {
		return nil, WrapError(err, "failed to resolve folder")
	}
	if rel == "/" {
		return nil, nil
	}

	dir, err := s.store.FileByPath(ctx, rel)
	if err == nil {
		return &dir.ID, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, WrapError(err, "failed to look up folder")
	}

	parentID, err := s.directoryID(ctx, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	res := s.indexer.IndexEntry(ctx, abs, parentID)
	if res.Status == indexer.StatusError {
		return nil, WrapError(res.Err, "failed to index folder")
	}
	return &res.ID, nil
}
