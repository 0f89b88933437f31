package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_querier.go -package=mocks folder-catalog/internal/storage Querier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// deleteBatchSize bounds the number of bound parameters per DELETE statement.
const deleteBatchSize = 500

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Querier is the set of statements the indexer and file service run against
// the files and items tables.
type Querier interface {
	// FileByPath gets a file entry by its exact relative path. Returns ErrNotFound if absent.
	FileByPath(ctx context.Context, path string) (*FileRecord, error)
	// FileByID gets a file entry by id. Returns ErrNotFound if absent.
	FileByID(ctx context.Context, id int64) (*FileRecord, error)
	// ListFiles returns all file entries ordered by path.
	ListFiles(ctx context.Context) ([]FileRecord, error)
	// InsertFile inserts a new entry and sets f.ID.
	InsertFile(ctx context.Context, f *FileRecord) (int64, error)
	// RefreshFile rewrites size, last_modified, subtype and name of f.ID.
	RefreshFile(ctx context.Context, f *FileRecord) error
	// UpdateFileLocation repoints an entry to a new path and parent.
	UpdateFileLocation(ctx context.Context, id int64, path string, parentID *int64) error
	// DeleteFile removes an entry and returns it. Returns ErrNotFound if absent.
	DeleteFile(ctx context.Context, id int64) (*FileRecord, error)
	// FilesByType lists id and path of every entry of the given type.
	FilesByType(ctx context.Context, fileType string) ([]FileRef, error)
	// DeleteFiles removes the given entries and returns the number deleted.
	DeleteFiles(ctx context.Context, ids []int64) (int64, error)
	// CountFiles returns the number of entries in the files table.
	CountFiles(ctx context.Context) (int, error)
	// RelinkItemsByName points every file-type catalog entry named name at link.
	RelinkItemsByName(ctx context.Context, name, link string) (int64, error)
	// InsertItem inserts a catalog entry and sets item.ID.
	InsertItem(ctx context.Context, item *ItemRecord) (int64, error)
	// InsertItemIfMissing adds a file-type catalog entry unless one named name exists.
	InsertItemIfMissing(ctx context.Context, name, link string) (bool, error)
	// DeleteOrphanItems removes file-type catalog entries with no file entry of the same name.
	DeleteOrphanItems(ctx context.Context) (int64, error)
}

// Queries implements Querier over a DBTX.
type Queries struct {
	db DBTX
}

// NewQueries creates Queries bound to db, which may be a pool or a transaction.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const fileColumns = "id, path, type, parent_id, size, last_modified, subtype, name"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*FileRecord, error) {
	var f FileRecord
	if err := row.Scan(&f.ID, &f.Path, &f.Type, &f.ParentID, &f.Size, &f.LastModified, &f.Subtype, &f.Name); err != nil {
		return nil, err
	}
	f.LastModified = f.LastModified.UTC()
	return &f, nil
}

// FileByPath gets a file entry by its exact relative path.
func (q *Queries) FileByPath(ctx context.Context, path string) (*FileRecord, error) {
	f, err := scanFile(q.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE path = $1 LIMIT 1", path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file by path: %w", err)
	}
	return f, nil
}

// FileByID gets a file entry by id.
func (q *Queries) FileByID(ctx context.Context, id int64) (*FileRecord, error) {
	f, err := scanFile(q.db.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}
	return f, nil
}

// ListFiles returns all file entries ordered by path.
func (q *Queries) ListFiles(ctx context.Context) ([]FileRecord, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+fileColumns+" FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	files := make([]FileRecord, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

// InsertFile inserts a new entry and sets f.ID.
func (q *Queries) InsertFile(ctx context.Context, f *FileRecord) (int64, error) {
	err := q.db.QueryRowContext(ctx,
		`INSERT INTO files (path, type, parent_id, size, last_modified, subtype, name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		f.Path, f.Type, f.ParentID, f.Size, f.LastModified.UTC(), f.Subtype, f.Name,
	).Scan(&f.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert file: %w", err)
	}
	return f.ID, nil
}

// RefreshFile rewrites the stat-derived columns of an existing entry.
// The path and parent are left untouched.
func (q *Queries) RefreshFile(ctx context.Context, f *FileRecord) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE files SET size = $1, last_modified = $2, subtype = $3, name = $4 WHERE id = $5",
		f.Size, f.LastModified.UTC(), f.Subtype, f.Name, f.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh file: %w", err)
	}
	return nil
}

// UpdateFileLocation repoints an entry to a new path and parent.
func (q *Queries) UpdateFileLocation(ctx context.Context, id int64, path string, parentID *int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE files SET path = $1, parent_id = $2 WHERE id = $3",
		path, parentID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update file location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFile removes an entry and returns the deleted row.
func (q *Queries) DeleteFile(ctx context.Context, id int64) (*FileRecord, error) {
	f, err := scanFile(q.db.QueryRowContext(ctx,
		"DELETE FROM files WHERE id = $1 RETURNING "+fileColumns, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete file: %w", err)
	}
	return f, nil
}

// FilesByType lists id and path of every entry of the given type.
func (q *Queries) FilesByType(ctx context.Context, fileType string) ([]FileRef, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, path FROM files WHERE type = $1 ORDER BY id", fileType)
	if err != nil {
		return nil, fmt.Errorf("failed to query files by type: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var refs []FileRef
	for rows.Next() {
		var ref FileRef
		if err := rows.Scan(&ref.ID, &ref.Path); err != nil {
			return nil, fmt.Errorf("failed to scan file ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file refs: %w", err)
	}
	return refs, nil
}

// DeleteFiles removes the given entries in batches of bound parameters.
// Run it inside WithinTx to make the whole removal atomic.
func (q *Queries) DeleteFiles(ctx context.Context, ids []int64) (int64, error) {
	var total int64
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		batch := ids[start:end]

		placeholders := make([]string, len(batch))
		args := make([]any, len(batch))
		for i, id := range batch {
			placeholders[i] = "$" + strconv.Itoa(i+1)
			args[i] = id
		}

		res, err := q.db.ExecContext(ctx,
			"DELETE FROM files WHERE id IN ("+strings.Join(placeholders, ", ")+")", args...)
		if err != nil {
			return total, fmt.Errorf("failed to delete files: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to read affected rows: %w", err)
		}
		total += n
	}
	return total, nil
}

// CountFiles returns the number of entries in the files table.
func (q *Queries) CountFiles(ctx context.Context) (int, error) {
	var count int
	if err := q.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

// RelinkItemsByName points every file-type catalog entry named name at link.
// It returns the number of rows changed so callers can fall back to an insert.
func (q *Queries) RelinkItemsByName(ctx context.Context, name, link string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"UPDATE items SET link = $1 WHERE name = $2 AND type = $3",
		link, name, ItemTypeFile,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to relink items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// InsertItem inserts a catalog entry and sets item.ID.
func (q *Queries) InsertItem(ctx context.Context, item *ItemRecord) (int64, error) {
	if item.Type == "" {
		item.Type = ItemTypeFile
	}
	err := q.db.QueryRowContext(ctx,
		"INSERT INTO items (name, link, image_url, type) VALUES ($1, $2, $3, $4) RETURNING id",
		item.Name, item.Link, item.ImageURL, item.Type,
	).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}
	return item.ID, nil
}

// InsertItemIfMissing inserts a file-type catalog entry for name pointing at
// link when no file-type entry of that name exists. Existing entries keep
// their link. It reports whether a row was inserted.
func (q *Queries) InsertItemIfMissing(ctx context.Context, name, link string) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO items (name, link, type)
		 SELECT $1, $2, $3
		 WHERE NOT EXISTS (SELECT 1 FROM items WHERE name = $4 AND type = $5)`,
		name, link, ItemTypeFile, name, ItemTypeFile,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// DeleteOrphanItems removes file-type catalog entries whose name matches no
// file entry. Entries of other types belong to the CRUD layer and are kept.
func (q *Queries) DeleteOrphanItems(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM items
		 WHERE type = $1
		   AND NOT EXISTS (
		     SELECT 1 FROM files f WHERE f.type = $2 AND f.name = items.name
		   )`,
		ItemTypeFile, FileTypeFile,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphan items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// Store owns the connection pool and hands out transaction-scoped Queries.
type Store struct {
	*Queries
	db *sql.DB
}

// NewStore creates a Store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{Queries: NewQueries(db), db: db}
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping verifies the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// WithinTx runs fn in a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including on panic.
func (s *Store) WithinTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(NewQueries(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
