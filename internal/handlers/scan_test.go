package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"

	"folder-catalog/internal/indexer"
)

type fakeScanner struct {
	startErr error
	gotMode  indexer.Mode
	last     *indexer.Report
}

func (f *fakeScanner) Start(_ context.Context, mode indexer.Mode) (string, error) {
	f.gotMode = mode
	if f.startErr != nil {
		return "", f.startErr
	}
	return "scan-1", nil
}

func (f *fakeScanner) LastReport() *indexer.Report {
	return f.last
}

func TestScanHandler_Start(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		startErr   error
		wantStatus int
		wantMode   indexer.Mode
	}{
		{name: "default full", query: "", wantStatus: http.StatusAccepted, wantMode: indexer.ModeFull},
		{name: "initial", query: "?mode=initial", wantStatus: http.StatusAccepted, wantMode: indexer.ModeInitial},
		{name: "bad mode", query: "?mode=partial", wantStatus: http.StatusBadRequest},
		{name: "already running", query: "?mode=full", startErr: indexer.ErrScanInProgress, wantStatus: http.StatusConflict, wantMode: indexer.ModeFull},
		{name: "unexpected failure", query: "", startErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMode: indexer.ModeFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeScanner{startErr: tt.startErr}
			w := httptest.NewRecorder()
			NewScanHandler(s).Start(w, httptest.NewRequest(http.MethodPost, "/api/scan"+tt.query, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("Start() status = %d, want %d", w.Code, tt.wantStatus)
			}
			if s.gotMode != tt.wantMode {
				t.Errorf("Start() mode = %q, want %q", s.gotMode, tt.wantMode)
			}
			if tt.wantStatus == http.StatusAccepted {
				var resp ScanResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Status != "accepted" || resp.ScanID != "scan-1" {
					t.Errorf("Start() response = %+v", resp)
				}
			}
		})
	}
}

func TestScanHandler_Last(t *testing.T) {
	s := &fakeScanner{}
	handler := NewScanHandler(s)

	w := httptest.NewRecorder()
	handler.Last(w, httptest.NewRequest(http.MethodGet, "/api/scan", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Last() before any scan status = %d, want 404", w.Code)
	}

	s.last = &indexer.Report{ScanID: "scan-1", Mode: indexer.ModeFull, Indexed: 3, Moves: []indexer.Move{}}
	w = httptest.NewRecorder()
	handler.Last(w, httptest.NewRequest(http.MethodGet, "/api/scan", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Last() status = %d, want 200", w.Code)
	}
	var got indexer.Report
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ScanID != "scan-1" || got.Indexed != 3 {
		t.Errorf("Last() = %+v", got)
	}
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

func TestHealthHandler(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/lib", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	tests := []struct {
		name       string
		db         pinger
		root       string
		wantStatus int
		wantIssues []string
	}{
		{
			name:       "healthy",
			db:         fakePinger{},
			root:       "/lib",
			wantStatus: http.StatusOK,
		},
		{
			name:       "database down",
			db:         fakePinger{err: errors.New("connection refused")},
			root:       "/lib",
			wantStatus: http.StatusServiceUnavailable,
			wantIssues: []string{"database_unavailable"},
		},
		{
			name:       "root missing",
			db:         fakePinger{},
			root:       "/gone",
			wantStatus: http.StatusServiceUnavailable,
			wantIssues: []string{"library_root_unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, fs, tt.root)

			w := httptest.NewRecorder()
			handler.Status(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
			if w.Code != tt.wantStatus {
				t.Fatalf("Status() status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Issues) != len(tt.wantIssues) {
				t.Fatalf("Status() issues = %v, want %v", resp.Issues, tt.wantIssues)
			}
			for i := range tt.wantIssues {
				if resp.Issues[i] != tt.wantIssues[i] {
					t.Errorf("Status() issue[%d] = %q, want %q", i, resp.Issues[i], tt.wantIssues[i])
				}
			}
			if resp.Root != tt.root {
				t.Errorf("Status() root = %q, want %q", resp.Root, tt.root)
			}

			w = httptest.NewRecorder()
			handler.Live(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
			if w.Code != http.StatusOK {
				t.Errorf("Live() status = %d, want 200 regardless of dependencies", w.Code)
			}
		})
	}
}
