package handlers

import (
	"context"
	"net/http"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/service"
	"folder-catalog/internal/storage"
)

// linkRepo is the storage surface behind a LinkHandler.
type linkRepo interface {
	Table() storage.LinkTable
	List(ctx context.Context) ([]storage.Link, error)
	Get(ctx context.Context, left, right int64) (*storage.Link, error)
	Create(ctx context.Context, left, right int64) (*storage.Link, error)
	Delete(ctx context.Context, left, right int64) (*storage.Link, error)
}

// LinkHandler serves one junction table. Pairs are encoded as JSON objects
// keyed by the table's column names, e.g. {"item_id": 1, "tag_id": 2}.
type LinkHandler struct {
	repo  linkRepo
	table storage.LinkTable
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(repo linkRepo) *LinkHandler {
	return &LinkHandler{
		repo:  repo,
		table: repo.Table(),
	}
}

func (h *LinkHandler) encode(link storage.Link) map[string]int64 {
	return map[string]int64{
		h.table.Left:  link.LeftID,
		h.table.Right: link.RightID,
	}
}

func (h *LinkHandler) pairFromURL(r *http.Request) (int64, int64, error) {
	left, err := parseID(r, "left")
	if err != nil {
		return 0, 0, err
	}
	right, err := parseID(r, "right")
	if err != nil {
		return 0, 0, err
	}
	return left, right, nil
}

// List returns every pair.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	links, err := h.repo.List(ctx)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	out := make([]map[string]int64, 0, len(links))
	for _, link := range links {
		out = append(out, h.encode(link))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one pair.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	left, right, err := h.pairFromURL(r)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	link, err := h.repo.Get(ctx, left, right)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.encode(*link))
}

// Create inserts the pair in the request body.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var body map[string]int64
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	left, right := body[h.table.Left], body[h.table.Right]
	if left <= 0 {
		writeServiceError(w, r, logger, &service.ValidationError{Field: h.table.Left, Message: "is required"})
		return
	}
	if right <= 0 {
		writeServiceError(w, r, logger, &service.ValidationError{Field: h.table.Right, Message: "is required"})
		return
	}

	link, err := h.repo.Create(ctx, left, right)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.encode(*link))
}

// Delete removes one pair and returns it.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	left, right, err := h.pairFromURL(r)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	link, err := h.repo.Delete(ctx, left, right)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.encode(*link))
}
