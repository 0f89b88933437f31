package storage

import (
	"context"
	"fmt"
)

// ViewRepo assembles hydrated read models from the catalog tables.
type ViewRepo struct {
	db DBTX
}

// NewViewRepo creates a new ViewRepo.
func NewViewRepo(db DBTX) *ViewRepo {
	return &ViewRepo{db: db}
}

// TagGroupsWithTags returns every tag group with its tags, both ordered by id.
func (r *ViewRepo) TagGroupsWithTags(ctx context.Context) ([]TagGroupWithTags, error) {
	groups, err := NewTagGroupRepo(r.db).List(ctx)
	if err != nil {
		return nil, err
	}

	tagsByGroup, err := r.groupTags(ctx,
		`SELECT tgt.tag_group_id, t.id, t."group", t.name
		 FROM tag_group_tags tgt
		 JOIN tags t ON t.id = tgt.tag_id
		 ORDER BY tgt.tag_group_id, t.id`)
	if err != nil {
		return nil, err
	}

	views := make([]TagGroupWithTags, 0, len(groups))
	for _, g := range groups {
		views = append(views, TagGroupWithTags{TagGroup: g, Tags: orEmpty(tagsByGroup[g.ID])})
	}
	return views, nil
}

// TopicWithSchema returns the topic with its tag groups and their tags.
// Returns ErrNotFound if the topic does not exist.
func (r *ViewRepo) TopicWithSchema(ctx context.Context, id int64) (*TopicWithSchema, error) {
	topic, err := NewTopicRepo(r.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT tg.id, tg.name
		 FROM topic_tag_groups ttg
		 JOIN tag_groups tg ON tg.id = ttg.tag_group_id
		 WHERE ttg.topic_id = $1
		 ORDER BY tg.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic tag groups: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var groups []TagGroup
	for rows.Next() {
		g, err := scanTagGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag group: %w", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag groups: %w", err)
	}

	tagsByGroup, err := r.groupTags(ctx,
		`SELECT tgt.tag_group_id, t.id, t."group", t.name
		 FROM topic_tag_groups ttg
		 JOIN tag_group_tags tgt ON tgt.tag_group_id = ttg.tag_group_id
		 JOIN tags t ON t.id = tgt.tag_id
		 WHERE ttg.topic_id = $1
		 ORDER BY tgt.tag_group_id, t.id`, id)
	if err != nil {
		return nil, err
	}

	view := &TopicWithSchema{Topic: *topic, TagGroups: make([]TagGroupWithTags, 0, len(groups))}
	for _, g := range groups {
		view.TagGroups = append(view.TagGroups, TagGroupWithTags{TagGroup: g, Tags: orEmpty(tagsByGroup[g.ID])})
	}
	return view, nil
}

// ItemWithTags returns the catalog entry with its tags.
// Returns ErrNotFound if the entry does not exist.
func (r *ViewRepo) ItemWithTags(ctx context.Context, id int64) (*ItemWithTags, error) {
	item, err := NewItemRepo(r.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t."group", t.name
		 FROM item_tags it
		 JOIN tags t ON t.id = it.tag_id
		 WHERE it.item_id = $1
		 ORDER BY t.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query item tags: %w", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, err
	}

	return &ItemWithTags{ItemRecord: *item, Tags: tags}, nil
}

// groupTags runs a query yielding (group id, tag columns) rows and buckets
// the tags by group id.
func (r *ViewRepo) groupTags(ctx context.Context, query string, args ...any) (map[int64][]Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query group tags: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make(map[int64][]Tag)
	for rows.Next() {
		var groupID int64
		var tag Tag
		if err := rows.Scan(&groupID, &tag.ID, &tag.Group, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group tag: %w", err)
		}
		out[groupID] = append(out[groupID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group tags: %w", err)
	}
	return out, nil
}

func orEmpty(tags []Tag) []Tag {
	if tags == nil {
		return []Tag{}
	}
	return tags
}
