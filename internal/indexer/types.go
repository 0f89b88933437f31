package indexer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrScanInProgress is returned when a scan is requested while another runs.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrPartialScan is returned alongside a report when at least one entry failed.
	ErrPartialScan = errors.New("scan completed with errors")
)

// Status is the outcome of indexing one entry.
type Status string

const (
	StatusIndexed Status = "indexed"
	StatusUpdated Status = "updated"
	StatusError   Status = "error"
)

// Result is the per-entry outcome returned by Indexer.IndexEntry.
type Result struct {
	Status Status `json:"status"`
	Path   string `json:"path"`
	ID     int64  `json:"id,omitempty"`
	Err    error  `json:"-"`
}

// Mode selects how much of the reconciliation pipeline runs.
type Mode string

const (
	// ModeInitial indexes everything but skips stale and orphan cleanup.
	ModeInitial Mode = "initial"
	// ModeFull additionally removes rows that no longer match the filesystem.
	ModeFull Mode = "full"
)

// ParseMode parses a scan mode name. An empty string means ModeFull.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeInitial:
		return ModeInitial, nil
	default:
		return "", fmt.Errorf("unknown scan mode %q", s)
	}
}

// Startup policies for the scan run when the service boots.
const (
	StartupFull    = "full"
	StartupInitial = "initial"
	StartupOff     = "off"
)

// Move records one file relocated into quarantine.
type Move struct {
	// From is the original absolute path.
	From string `json:"from"`
	// To is the destination inside quarantine, empty when the move failed.
	To string `json:"to,omitempty"`
	// Error holds the move failure, if any.
	Error string `json:"error,omitempty"`
}

// Report summarizes one reconciliation run.
type Report struct {
	// ScanID identifies the run in logs.
	ScanID string `json:"scan_id"`
	// Mode is the mode the run used.
	Mode Mode `json:"mode"`
	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Directories is the number of directories found by the walk.
	Directories int `json:"directories"`
	// Files is the number of files found by the walk, quarantined ones included.
	Files int `json:"files"`
	// Indexed is the number of entries inserted.
	Indexed int `json:"indexed"`
	// Updated is the number of existing entries refreshed.
	Updated int `json:"updated"`
	// Errors is the number of entries that failed to index.
	Errors int `json:"errors"`
	// Quarantined is the number of files moved (or attempted) into quarantine.
	Quarantined int `json:"quarantined"`
	// StaleRemoved is the number of file rows deleted because the file is gone.
	StaleRemoved int64 `json:"stale_removed"`
	// OrphansRemoved is the number of catalog entries deleted for lack of a file.
	OrphansRemoved int64 `json:"orphans_removed"`
	// Moves lists every quarantine move.
	Moves []Move `json:"moves"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) record(res Result) {
	switch res.Status {
	case StatusIndexed:
		r.Indexed++
	case StatusUpdated:
		r.Updated++
	default:
		r.Errors++
	}
}
