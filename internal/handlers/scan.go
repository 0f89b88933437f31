package handlers

import (
	"context"
	"errors"
	"net/http"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/indexer"
)

// scanner is the part of indexer.Reconciler the scan endpoints need.
type scanner interface {
	Start(ctx context.Context, mode indexer.Mode) (string, error)
	LastReport() *indexer.Report
}

// ScanHandler handles HTTP requests for triggering and inspecting scans.
type ScanHandler struct {
	scanner scanner
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(s scanner) *ScanHandler {
	return &ScanHandler{scanner: s}
}

// ScanResponse represents the response from starting a scan.
type ScanResponse struct {
	Message string       `json:"message"`
	Status  string       `json:"status"`
	ScanID  string       `json:"scan_id"`
	Mode    indexer.Mode `json:"mode"`
}

// Start triggers a scan in the background.
func (h *ScanHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	mode, err := indexer.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scanID, err := h.scanner.Start(ctx, mode)
	if errors.Is(err, indexer.ErrScanInProgress) {
		writeError(w, http.StatusConflict, "A scan is already running")
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to start scan", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start scan")
		return
	}

	logger.InfoContext(ctx, "scan triggered via API", "scan_id", scanID, "mode", mode)
	writeJSON(w, http.StatusAccepted, ScanResponse{
		Message: "Scan started. Check GET /api/scan or server logs for progress.",
		Status:  "accepted",
		ScanID:  scanID,
		Mode:    mode,
	})
}

// Last returns the report of the most recent finished scan.
func (h *ScanHandler) Last(w http.ResponseWriter, r *http.Request) {
	report := h.scanner.LastReport()
	if report == nil {
		writeError(w, http.StatusNotFound, "No scan has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
