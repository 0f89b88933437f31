package storage

import "time"

// Entry kinds stored in files.type.
const (
	FileTypeFile      = "file"
	FileTypeDirectory = "directory"
)

// ItemTypeFile marks catalog entries owned by the indexer.
const ItemTypeFile = "file"

// FileRecord is a row of the files table: one filesystem entry under the library root.
type FileRecord struct {
	ID           int64     `json:"id"`
	Path         string    `json:"path"` // Root-relative, forward slashes, leading "/"
	Type         string    `json:"type"` // FileTypeFile or FileTypeDirectory
	ParentID     *int64    `json:"parent_id"`
	Size         *int64    `json:"size"` // nil for directories
	LastModified time.Time `json:"last_modified"`
	Subtype      string    `json:"subtype"`
	Name         string    `json:"name"` // Display name, extension stripped for files
}

// FileRef is the minimal projection used by cleanup passes.
type FileRef struct {
	ID   int64
	Path string
}

// ItemRecord is a row of the items table (a catalog entry).
type ItemRecord struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Link     *string `json:"link"`
	ImageURL *string `json:"image_url"`
	Type     string  `json:"type"`
}

// Tag is a row of the tags table.
type Tag struct {
	ID    int64  `json:"id"`
	Group string `json:"group"`
	Name  string `json:"name"`
}

// TagGroup is a row of the tag_groups table.
type TagGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Topic is a row of the topics table.
type Topic struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// TagGroupWithTags is a tag group hydrated with its tags.
type TagGroupWithTags struct {
	TagGroup
	Tags []Tag `json:"tags"`
}

// TopicWithSchema is a topic hydrated with its tag groups and their tags.
type TopicWithSchema struct {
	Topic
	TagGroups []TagGroupWithTags `json:"tag_groups"`
}

// ItemWithTags is a catalog entry hydrated with its tags.
type ItemWithTags struct {
	ItemRecord
	Tags []Tag `json:"tags"`
}
