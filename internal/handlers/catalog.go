package handlers

import (
	"context"
	"net/http"
	"strings"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/service"
	"folder-catalog/internal/storage"
)

// crudRepo is the storage surface behind a CRUDHandler.
type crudRepo[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, v T) (*T, error)
	Update(ctx context.Context, v T) (*T, error)
	Delete(ctx context.Context, id int64) (*T, error)
}

// CRUDHandler serves list/get/create/update/delete for one catalog table.
type CRUDHandler[T any] struct {
	resource string
	repo     crudRepo[T]
	setID    func(v *T, id int64)
	validate func(v *T) error
}

// NewItemHandler serves /api/items.
func NewItemHandler(repo crudRepo[storage.ItemRecord]) *CRUDHandler[storage.ItemRecord] {
	return &CRUDHandler[storage.ItemRecord]{
		resource: "item",
		repo:     repo,
		setID:    func(v *storage.ItemRecord, id int64) { v.ID = id },
		validate: func(v *storage.ItemRecord) error { return requireName(&v.Name) },
	}
}

// NewTagHandler serves /api/tags.
func NewTagHandler(repo crudRepo[storage.Tag]) *CRUDHandler[storage.Tag] {
	return &CRUDHandler[storage.Tag]{
		resource: "tag",
		repo:     repo,
		setID:    func(v *storage.Tag, id int64) { v.ID = id },
		validate: func(v *storage.Tag) error { return requireName(&v.Name) },
	}
}

// NewTagGroupHandler serves /api/tag-groups.
func NewTagGroupHandler(repo crudRepo[storage.TagGroup]) *CRUDHandler[storage.TagGroup] {
	return &CRUDHandler[storage.TagGroup]{
		resource: "tag group",
		repo:     repo,
		setID:    func(v *storage.TagGroup, id int64) { v.ID = id },
		validate: func(v *storage.TagGroup) error { return requireName(&v.Name) },
	}
}

// NewTopicHandler serves /api/topics.
func NewTopicHandler(repo crudRepo[storage.Topic]) *CRUDHandler[storage.Topic] {
	return &CRUDHandler[storage.Topic]{
		resource: "topic",
		repo:     repo,
		setID:    func(v *storage.Topic, id int64) { v.ID = id },
		validate: func(v *storage.Topic) error { return requireName(&v.Name) },
	}
}

func requireName(name *string) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return &service.ValidationError{Field: "name", Message: "is required"}
	}
	return nil
}

// List returns every row.
func (h *CRUDHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	rows, err := h.repo.List(ctx)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Get returns the row with the id URL parameter.
func (h *CRUDHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	row, err := h.repo.Get(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// Create inserts the row in the request body.
func (h *CRUDHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var v T
	if err := decodeJSON(w, r, &v); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	h.setID(&v, 0)
	if err := h.validate(&v); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}

	created, err := h.repo.Create(ctx, v)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	logger.InfoContext(ctx, "catalog row created", "resource", h.resource)
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces the row with the id URL parameter.
func (h *CRUDHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	var v T
	if err := decodeJSON(w, r, &v); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	h.setID(&v, id)
	if err := h.validate(&v); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}

	updated, err := h.repo.Update(ctx, v)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the row with the id URL parameter and returns it.
func (h *CRUDHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	deleted, err := h.repo.Delete(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	logger.InfoContext(ctx, "catalog row deleted", "resource", h.resource, "id", id)
	writeJSON(w, http.StatusOK, deleted)
}
