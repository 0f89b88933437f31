package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"folder-catalog/internal/contextutil"
	"folder-catalog/internal/library"
	"folder-catalog/internal/storage"
)

// DuplicatePolicy decides which members of a duplicate group are quarantined.
type DuplicatePolicy string

const (
	// DuplicatesQuarantineAll pulls every member of a group for manual review.
	DuplicatesQuarantineAll DuplicatePolicy = "all"
	// DuplicatesKeepOriginal keeps the single unmarked member of a group, if
	// there is exactly one, and quarantines the rest.
	DuplicatesKeepOriginal DuplicatePolicy = "keep-original"
)

// ParseDuplicatePolicy parses a policy name. An empty string means DuplicatesQuarantineAll.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DuplicatesQuarantineAll:
		return DuplicatesQuarantineAll, nil
	case DuplicatesKeepOriginal:
		return DuplicatesKeepOriginal, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Reconciler runs whole-tree scans: walk, quarantine, index and, in full
// mode, remove rows that no longer match the filesystem.
type Reconciler struct {
	lib     *library.Library
	store   Store
	indexer *Indexer
	policy  DuplicatePolicy

	running sync.Mutex
	active  sync.WaitGroup

	mu   sync.RWMutex
	last *Report
}

// NewReconciler creates a new Reconciler.
func NewReconciler(lib *library.Library, store Store, policy DuplicatePolicy) *Reconciler {
	if policy == "" {
		policy = DuplicatesQuarantineAll
	}
	return &Reconciler{
		lib:     lib,
		store:   store,
		indexer: NewIndexer(lib, store),
		policy:  policy,
	}
}

// Indexer returns the per-entry indexer used by scans.
func (r *Reconciler) Indexer() *Indexer {
	return r.indexer
}

// LastReport returns the report of the most recent scan, or nil.
func (r *Reconciler) LastReport() *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Run performs one scan and blocks until it finishes. It returns
// ErrScanInProgress without waiting if another scan holds the lock. A non-nil
// report is returned whenever the scan started, also on error.
func (r *Reconciler) Run(ctx context.Context, mode Mode) (*Report, error) {
	if !r.running.TryLock() {
		return nil, ErrScanInProgress
	}
	defer r.running.Unlock()

	return r.run(ctx, mode, uuid.NewString())
}

// Start launches a scan in the background and returns its id. The scan
// outlives ctx's cancellation but keeps its values, including the logger.
func (r *Reconciler) Start(ctx context.Context, mode Mode) (string, error) {
	if !r.running.TryLock() {
		return "", ErrScanInProgress
	}

	scanID := uuid.NewString()
	scanCtx := context.WithoutCancel(ctx)
	r.active.Add(1)
	go func() {
		defer r.active.Done()
		defer r.running.Unlock()
		// Errors are logged and kept in the report.
		_, _ = r.run(scanCtx, mode, scanID)
	}()
	return scanID, nil
}

// Wait blocks until every scan launched by Start has finished.
func (r *Reconciler) Wait() {
	r.active.Wait()
}

// Startup applies the boot-time scan policy. "initial" skips the scan when
// the files table already has rows, "full" always scans, "off" never does.
func (r *Reconciler) Startup(ctx context.Context, policy string) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch policy {
	case StartupOff:
		logger.InfoContext(ctx, "startup scan disabled")
		return nil, nil
	case StartupInitial:
		count, err := r.store.CountFiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing index: %w", err)
		}
		if count > 0 {
			logger.InfoContext(ctx, "index already populated, skipping startup scan", "files", count)
			return nil, nil
		}
		return r.Run(ctx, ModeInitial)
	case StartupFull, "":
		return r.Run(ctx, ModeFull)
	default:
		return nil, fmt.Errorf("unknown startup scan policy %q", policy)
	}
}

func (r *Reconciler) run(ctx context.Context, mode Mode, scanID string) (*Report, error) {
	logger := contextutil.LoggerFromContext(ctx).With("scan_id", scanID)
	ctx = contextutil.WithLogger(ctx, logger)

	report := &Report{
		ScanID:    scanID,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		Moves:     []Move{},
	}
	logger.InfoContext(ctx, "scan started", "mode", mode, "root", r.lib.Root())

	err := r.scan(ctx, logger, mode, report)
	report.FinishedAt = time.Now().UTC()

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	if err != nil {
		logger.ErrorContext(ctx, "scan failed", "error", err)
		return report, err
	}

	logger.InfoContext(ctx, "scan completed",
		"duration", report.Duration(),
		"directories", report.Directories,
		"files", report.Files,
		"indexed", report.Indexed,
		"updated", report.Updated,
		"errors", report.Errors,
		"quarantined", report.Quarantined,
		"stale_removed", report.StaleRemoved,
		"orphans_removed", report.OrphansRemoved,
	)

	if report.Errors > 0 {
		return report, fmt.Errorf("%w: %d entries failed", ErrPartialScan, report.Errors)
	}
	return report, nil
}

func (r *Reconciler) scan(ctx context.Context, logger *slog.Logger, mode Mode, report *Report) error {
	if err := r.lib.EnsureQuarantine(); err != nil {
		return fmt.Errorf("failed to create quarantine directory: %w", err)
	}

	tree, err := r.lib.Walk(ctx)
	if err != nil {
		return fmt.Errorf("failed to walk library: %w", err)
	}
	report.Directories = len(tree.Dirs)
	report.Files = len(tree.Files)

	quarantined := make(map[string]struct{})
	for _, group := range r.lib.DuplicateGroups(tree.Files) {
		for _, path := range r.duplicateCandidates(group) {
			r.quarantine(ctx, logger, report, quarantined, path, "duplicate")
		}
	}
	for _, path := range r.lib.CopyVariants(tree.Files, quarantined) {
		r.quarantine(ctx, logger, report, quarantined, path, "copy")
	}

	dirs := append([]string(nil), tree.Dirs...)
	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) < depth(dirs[j])
	})

	dirIDs := make(map[string]int64, len(dirs))
	for _, dir := range dirs {
		res := r.indexer.IndexEntry(ctx, dir, parentOf(dirIDs, dir))
		report.record(res)
		if res.Status != StatusError {
			dirIDs[dir] = res.ID
		}
	}

	for _, file := range tree.Files {
		if _, skip := quarantined[file]; skip {
			continue
		}
		report.record(r.indexer.IndexEntry(ctx, file, parentOf(dirIDs, file)))
	}

	if mode != ModeFull {
		return nil
	}

	if err := r.removeStale(ctx, report); err != nil {
		report.Errors++
		logger.ErrorContext(ctx, "stale cleanup failed", "error", err)
	}

	orphans, err := r.store.DeleteOrphanItems(ctx)
	if err != nil {
		report.Errors++
		logger.ErrorContext(ctx, "orphan cleanup failed", "error", err)
	}
	report.OrphansRemoved = orphans
	return nil
}

func (r *Reconciler) duplicateCandidates(group library.DuplicateGroup) []string {
	if r.policy != DuplicatesKeepOriginal {
		return group.Paths
	}
	original, ok := group.Original()
	if !ok {
		return group.Paths
	}
	candidates := make([]string, 0, len(group.Paths)-1)
	for _, p := range group.Paths {
		if p != original {
			candidates = append(candidates, p)
		}
	}
	return candidates
}

// quarantine moves path and marks it quarantined even if the move fails, so
// an ambiguous file is never indexed.
func (r *Reconciler) quarantine(ctx context.Context, logger *slog.Logger, report *Report, quarantined map[string]struct{}, path, reason string) {
	quarantined[path] = struct{}{}
	report.Quarantined++

	dest, err := r.lib.Quarantine(path)
	if err != nil {
		logger.WarnContext(ctx, "failed to quarantine file", "path", path, "reason", reason, "error", err)
		report.Moves = append(report.Moves, Move{From: path, Error: err.Error()})
		return
	}
	logger.InfoContext(ctx, "quarantined file", "path", path, "dest", dest, "reason", reason)
	report.Moves = append(report.Moves, Move{From: path, To: dest})
}

// removeStale deletes every file row whose path no longer exists, in one
// transaction. Rows under the quarantine directory are left alone.
func (r *Reconciler) removeStale(ctx context.Context, report *Report) error {
	refs, err := r.store.FilesByType(ctx, storage.FileTypeFile)
	if err != nil {
		return err
	}

	var stale []int64
	for _, ref := range refs {
		if r.lib.IsQuarantinedRel(ref.Path) {
			continue
		}
		abs, err := r.lib.AbsPath(ref.Path)
		if err == nil {
			exists, err := r.lib.Exists(abs)
			if exists || err != nil {
				// A failed stat is not proof the file is gone.
				continue
			}
		}
		stale = append(stale, ref.ID)
	}
	if len(stale) == 0 {
		return nil
	}

	return r.store.WithinTx(ctx, func(q storage.Querier) error {
		n, err := q.DeleteFiles(ctx, stale)
		if err != nil {
			return err
		}
		report.StaleRemoved = n
		return nil
	})
}

func parentOf(dirIDs map[string]int64, fullPath string) *int64 {
	id, ok := dirIDs[filepath.Dir(fullPath)]
	if !ok {
		return nil
	}
	return &id
}

func depth(p string) int {
	return strings.Count(filepath.Clean(p), string(os.PathSeparator))
}
