package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrDuplicate is returned when a junction pair already exists.
var ErrDuplicate = errors.New("record already exists")

// LinkTable names a junction table and its two foreign key columns.
type LinkTable struct {
	Name  string
	Left  string
	Right string
}

// Junction tables of the catalog.
var (
	ItemTags       = LinkTable{Name: "item_tags", Left: "item_id", Right: "tag_id"}
	TagGroupTags   = LinkTable{Name: "tag_group_tags", Left: "tag_group_id", Right: "tag_id"}
	TopicTagGroups = LinkTable{Name: "topic_tag_groups", Left: "topic_id", Right: "tag_group_id"}
	TopicItems     = LinkTable{Name: "topic_items", Left: "topic_id", Right: "item_id"}
)

// Link is one row of a junction table.
type Link struct {
	LeftID  int64
	RightID int64
}

// LinkRepo provides list/get/create/delete over one junction table.
// Table and column names come from the fixed LinkTable values above and are
// never taken from user input.
type LinkRepo struct {
	db    DBTX
	table LinkTable
}

// NewLinkRepo creates a LinkRepo for table.
func NewLinkRepo(db DBTX, table LinkTable) *LinkRepo {
	return &LinkRepo{db: db, table: table}
}

// Table returns the junction table this repo works on.
func (r *LinkRepo) Table() LinkTable {
	return r.table
}

func (r *LinkRepo) columns() string {
	return r.table.Left + ", " + r.table.Right
}

// List returns every pair ordered by left then right id.
func (r *LinkRepo) List(ctx context.Context) ([]Link, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+r.columns()+" FROM "+r.table.Name+" ORDER BY "+r.columns())
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.table.Name, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	links := make([]Link, 0)
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.LeftID, &link.RightID); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table.Name, err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// Get returns the pair (left, right). Returns ErrNotFound if absent.
func (r *LinkRepo) Get(ctx context.Context, left, right int64) (*Link, error) {
	var link Link
	err := r.db.QueryRowContext(ctx,
		"SELECT "+r.columns()+" FROM "+r.table.Name+
			" WHERE "+r.table.Left+" = $1 AND "+r.table.Right+" = $2",
		left, right,
	).Scan(&link.LeftID, &link.RightID)
	if err != nil {
		return nil, notFound(err, "failed to query "+r.table.Name)
	}
	return &link, nil
}

// Create inserts the pair. Returns ErrDuplicate if it already exists.
func (r *LinkRepo) Create(ctx context.Context, left, right int64) (*Link, error) {
	var link Link
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO "+r.table.Name+" ("+r.columns()+") VALUES ($1, $2)"+
			" ON CONFLICT DO NOTHING RETURNING "+r.columns(),
		left, right,
	).Scan(&link.LeftID, &link.RightID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", r.table.Name, err)
	}
	return &link, nil
}

// Delete removes the pair and returns it. Returns ErrNotFound if absent.
func (r *LinkRepo) Delete(ctx context.Context, left, right int64) (*Link, error) {
	var link Link
	err := r.db.QueryRowContext(ctx,
		"DELETE FROM "+r.table.Name+
			" WHERE "+r.table.Left+" = $1 AND "+r.table.Right+" = $2"+
			" RETURNING "+r.columns(),
		left, right,
	).Scan(&link.LeftID, &link.RightID)
	if err != nil {
		return nil, notFound(err, "failed to delete "+r.table.Name)
	}
	return &link, nil
}
