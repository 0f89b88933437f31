package handlers

import (
	"context"
	"net/http"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/storage"
)

// viewRepo is the storage surface behind ViewHandler.
type viewRepo interface {
	TagGroupsWithTags(ctx context.Context) ([]storage.TagGroupWithTags, error)
	TopicWithSchema(ctx context.Context, id int64) (*storage.TopicWithSchema, error)
	ItemWithTags(ctx context.Context, id int64) (*storage.ItemWithTags, error)
}

// ViewHandler serves hydrated read models for the catalog UI.
type ViewHandler struct {
	views viewRepo
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(views viewRepo) *ViewHandler {
	return &ViewHandler{views: views}
}

// TagGroups returns every tag group with its tags.
func (h *ViewHandler) TagGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	groups, err := h.views.TagGroupsWithTags(ctx)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Topic returns one topic with its tag groups and their tags.
func (h *ViewHandler) Topic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	topic, err := h.views.TopicWithSchema(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

// Item returns one catalog entry with its tags.
func (h *ViewHandler) Item(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	item, err := h.views.ItemWithTags(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
