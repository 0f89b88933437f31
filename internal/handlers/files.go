package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/service"
)

// maxUploadBytes bounds a single uploaded file.
const maxUploadBytes = 512 << 20

// FileHandler handles HTTP requests for indexed files.
type FileHandler struct {
	files   service.FileService
	preview *markdownRenderer
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(files service.FileService) *FileHandler {
	return &FileHandler{
		files:   files,
		preview: newMarkdownRenderer(),
	}
}

// MoveRequest is the body of POST /api/files/move.
type MoveRequest struct {
	FileID    int64  `json:"fileId"`
	NewFolder string `json:"newFolder"`
}

// MoveManyRequest is the body of POST /api/files/move-multiple.
type MoveManyRequest struct {
	FileIDs   []int64 `json:"fileIds"`
	NewFolder string  `json:"newFolder"`
}

// MoveManyResponse reports per-file move outcomes.
type MoveManyResponse struct {
	Results []service.MoveResult `json:"results"`
}

// List returns every indexed entry.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	files, err := h.files.List(ctx)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// Get returns one indexed entry.
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	f, err := h.files.Get(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Content streams the raw bytes of a file.
func (h *FileHandler) Content(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	file, rec, err := h.files.Open(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(path.Ext(rec.Path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if rec.Size != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*rec.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(ctx, "failed to stream file", "path", rec.Path, "error", err)
	}
}

// Preview renders a markdown file as an HTML page.
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	file, rec, err := h.files.Open(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	defer file.Close()

	if !isMarkdown(rec.Path) {
		writeError(w, http.StatusUnsupportedMediaType, "Preview is only available for markdown files")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read file for preview", "path", rec.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	page, err := h.preview.render(rec.Name, rec.Path, data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "path", rec.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to render file")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// Upload stores the multipart field "file" in the library root and indexes it.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		logger.WarnContext(ctx, "invalid upload request", "error", err)
		writeError(w, http.StatusBadRequest, "A single file is required in form field \"file\"")
		return
	}
	defer file.Close()

	rec, err := h.files.Upload(ctx, header.Filename, file)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Delete removes an entry and its file.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	rec, err := h.files.Delete(ctx, id)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Move relocates one file.
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req MoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	if req.FileID <= 0 {
		writeServiceError(w, r, logger, &service.ValidationError{Field: "fileId", Message: "is required"})
		return
	}

	rec, err := h.files.Move(ctx, req.FileID, req.NewFolder)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// MoveMany relocates several files, reporting each outcome.
func (h *FileHandler) MoveMany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req MoveManyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, logger, err)
		return
	}

	results, err := h.files.MoveMany(ctx, req.FileIDs, req.NewFolder)
	if err != nil {
		writeServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveManyResponse{Results: results})
}
