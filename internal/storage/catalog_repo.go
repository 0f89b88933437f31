package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ItemRepo provides CRUD over catalog entries.
type ItemRepo struct {
	db DBTX
}

// NewItemRepo creates a new ItemRepo.
func NewItemRepo(db DBTX) *ItemRepo {
	return &ItemRepo{db: db}
}

const itemColumns = "id, name, link, image_url, type"

func scanItem(row rowScanner) (*ItemRecord, error) {
	var item ItemRecord
	if err := row.Scan(&item.ID, &item.Name, &item.Link, &item.ImageURL, &item.Type); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns all catalog entries ordered by id.
func (r *ItemRepo) List(ctx context.Context) ([]ItemRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+itemColumns+" FROM items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]ItemRecord, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Get returns the catalog entry with id. Returns ErrNotFound if absent.
func (r *ItemRepo) Get(ctx context.Context, id int64) (*ItemRecord, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1", id))
	return item, notFound(err, "failed to query item")
}

// Create inserts item and returns the stored row.
func (r *ItemRepo) Create(ctx context.Context, item ItemRecord) (*ItemRecord, error) {
	if item.Type == "" {
		item.Type = ItemTypeFile
	}
	created, err := scanItem(r.db.QueryRowContext(ctx,
		"INSERT INTO items (name, link, image_url, type) VALUES ($1, $2, $3, $4) RETURNING "+itemColumns,
		item.Name, item.Link, item.ImageURL, item.Type))
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return created, nil
}

// Update replaces every column of the entry with item.ID.
func (r *ItemRepo) Update(ctx context.Context, item ItemRecord) (*ItemRecord, error) {
	if item.Type == "" {
		item.Type = ItemTypeFile
	}
	updated, err := scanItem(r.db.QueryRowContext(ctx,
		"UPDATE items SET name = $1, link = $2, image_url = $3, type = $4 WHERE id = $5 RETURNING "+itemColumns,
		item.Name, item.Link, item.ImageURL, item.Type, item.ID))
	return updated, notFound(err, "failed to update item")
}

// Delete removes the entry with id and returns it.
func (r *ItemRepo) Delete(ctx context.Context, id int64) (*ItemRecord, error) {
	deleted, err := scanItem(r.db.QueryRowContext(ctx,
		"DELETE FROM items WHERE id = $1 RETURNING "+itemColumns, id))
	return deleted, notFound(err, "failed to delete item")
}

// TagRepo provides CRUD over tags.
type TagRepo struct {
	db DBTX
}

// NewTagRepo creates a new TagRepo.
func NewTagRepo(db DBTX) *TagRepo {
	return &TagRepo{db: db}
}

const tagColumns = `id, "group", name`

func scanTag(row rowScanner) (*Tag, error) {
	var tag Tag
	if err := row.Scan(&tag.ID, &tag.Group, &tag.Name); err != nil {
		return nil, err
	}
	return &tag, nil
}

func collectTags(rows *sql.Rows) ([]Tag, error) {
	defer func() {
		_ = rows.Close()
	}()

	tags := make([]Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	return tags, rows.Err()
}

// List returns all tags ordered by id.
func (r *TagRepo) List(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+tagColumns+" FROM tags ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	return collectTags(rows)
}

// Get returns the tag with id. Returns ErrNotFound if absent.
func (r *TagRepo) Get(ctx context.Context, id int64) (*Tag, error) {
	tag, err := scanTag(r.db.QueryRowContext(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE id = $1", id))
	return tag, notFound(err, "failed to query tag")
}

// Create inserts tag and returns the stored row.
func (r *TagRepo) Create(ctx context.Context, tag Tag) (*Tag, error) {
	created, err := scanTag(r.db.QueryRowContext(ctx,
		`INSERT INTO tags ("group", name) VALUES ($1, $2) RETURNING `+tagColumns,
		tag.Group, tag.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}
	return created, nil
}

// Update replaces the group and name of tag.ID.
func (r *TagRepo) Update(ctx context.Context, tag Tag) (*Tag, error) {
	updated, err := scanTag(r.db.QueryRowContext(ctx,
		`UPDATE tags SET "group" = $1, name = $2 WHERE id = $3 RETURNING `+tagColumns,
		tag.Group, tag.Name, tag.ID))
	return updated, notFound(err, "failed to update tag")
}

// Delete removes the tag with id and returns it.
func (r *TagRepo) Delete(ctx context.Context, id int64) (*Tag, error) {
	deleted, err := scanTag(r.db.QueryRowContext(ctx,
		"DELETE FROM tags WHERE id = $1 RETURNING "+tagColumns, id))
	return deleted, notFound(err, "failed to delete tag")
}

// TagGroupRepo provides CRUD over tag groups.
type TagGroupRepo struct {
	db DBTX
}

// NewTagGroupRepo creates a new TagGroupRepo.
func NewTagGroupRepo(db DBTX) *TagGroupRepo {
	return &TagGroupRepo{db: db}
}

func scanTagGroup(row rowScanner) (*TagGroup, error) {
	var group TagGroup
	if err := row.Scan(&group.ID, &group.Name); err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns all tag groups ordered by id.
func (r *TagGroupRepo) List(ctx context.Context) ([]TagGroup, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM tag_groups ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query tag groups: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	groups := make([]TagGroup, 0)
	for rows.Next() {
		group, err := scanTagGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag group: %w", err)
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

// Get returns the tag group with id. Returns ErrNotFound if absent.
func (r *TagGroupRepo) Get(ctx context.Context, id int64) (*TagGroup, error) {
	group, err := scanTagGroup(r.db.QueryRowContext(ctx,
		"SELECT id, name FROM tag_groups WHERE id = $1", id))
	return group, notFound(err, "failed to query tag group")
}

// Create inserts a tag group and returns the stored row.
func (r *TagGroupRepo) Create(ctx context.Context, group TagGroup) (*TagGroup, error) {
	created, err := scanTagGroup(r.db.QueryRowContext(ctx,
		"INSERT INTO tag_groups (name) VALUES ($1) RETURNING id, name", group.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to insert tag group: %w", err)
	}
	return created, nil
}

// Update renames group.ID.
func (r *TagGroupRepo) Update(ctx context.Context, group TagGroup) (*TagGroup, error) {
	updated, err := scanTagGroup(r.db.QueryRowContext(ctx,
		"UPDATE tag_groups SET name = $1 WHERE id = $2 RETURNING id, name",
		group.Name, group.ID))
	return updated, notFound(err, "failed to update tag group")
}

// Delete removes the tag group with id and returns it.
func (r *TagGroupRepo) Delete(ctx context.Context, id int64) (*TagGroup, error) {
	deleted, err := scanTagGroup(r.db.QueryRowContext(ctx,
		"DELETE FROM tag_groups WHERE id = $1 RETURNING id, name", id))
	return deleted, notFound(err, "failed to delete tag group")
}

// TopicRepo provides CRUD over topics.
type TopicRepo struct {
	db DBTX
}

// NewTopicRepo creates a new TopicRepo.
func NewTopicRepo(db DBTX) *TopicRepo {
	return &TopicRepo{db: db}
}

func scanTopic(row rowScanner) (*Topic, error) {
	var topic Topic
	if err := row.Scan(&topic.ID, &topic.Name, &topic.Description); err != nil {
		return nil, err
	}
	return &topic, nil
}

// List returns all topics ordered by id.
func (r *TopicRepo) List(ctx context.Context) ([]Topic, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description FROM topics ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	topics := make([]Topic, 0)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *topic)
	}
	return topics, rows.Err()
}

// Get returns the topic with id. Returns ErrNotFound if absent.
func (r *TopicRepo) Get(ctx context.Context, id int64) (*Topic, error) {
	topic, err := scanTopic(r.db.QueryRowContext(ctx,
		"SELECT id, name, description FROM topics WHERE id = $1", id))
	return topic, notFound(err, "failed to query topic")
}

// Create inserts a topic and returns the stored row.
func (r *TopicRepo) Create(ctx context.Context, topic Topic) (*Topic, error) {
	created, err := scanTopic(r.db.QueryRowContext(ctx,
		"INSERT INTO topics (name, description) VALUES ($1, $2) RETURNING id, name, description",
		topic.Name, topic.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to insert topic: %w", err)
	}
	return created, nil
}

// Update replaces name and description of topic.ID.
func (r *TopicRepo) Update(ctx context.Context, topic Topic) (*Topic, error) {
	updated, err := scanTopic(r.db.QueryRowContext(ctx,
		"UPDATE topics SET name = $1, description = $2 WHERE id = $3 RETURNING id, name, description",
		topic.Name, topic.Description, topic.ID))
	return updated, notFound(err, "failed to update topic")
}

// Delete removes the topic with id and returns it.
func (r *TopicRepo) Delete(ctx context.Context, id int64) (*Topic, error) {
	deleted, err := scanTopic(r.db.QueryRowContext(ctx,
		"DELETE FROM topics WHERE id = $1 RETURNING id, name, description", id))
	return deleted, notFound(err, "failed to delete topic")
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps anything else.
func notFound(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
