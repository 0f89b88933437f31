package indexer

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"folder-catalog/internal/library"
	"folder-catalog/internal/storage"
)

func listItems(t *testing.T, store *storage.Store) []storage.ItemRecord {
	t.Helper()
	items, err := storage.NewItemRepo(store.DB()).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return items
}

func assertIndexed(t *testing.T, store *storage.Store, rel string) *storage.FileRecord {
	t.Helper()
	f, err := store.FileByPath(context.Background(), rel)
	if err != nil {
		t.Fatalf("FileByPath(%s) error = %v, want indexed", rel, err)
	}
	return f
}

func assertNotIndexed(t *testing.T, store *storage.Store, rel string) {
	t.Helper()
	if _, err := store.FileByPath(context.Background(), rel); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FileByPath(%s) error = %v, want ErrNotFound", rel, err)
	}
}

func assertExists(t *testing.T, fs afero.Fs, path string, want bool) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Exists(%s) error = %v", path, err)
	}
	if exists != want {
		t.Errorf("Exists(%s) = %v, want %v", path, exists, want)
	}
}

func TestReconciler_Run_IndexesTree(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/top.txt", "top")
	writeFile(t, fs, "/lib/docs/readme.md", "# hi")
	writeFile(t, fs, "/lib/docs/deep/photo.png", "png")

	r := NewReconciler(lib, store, DuplicatesQuarantineAll)
	report, err := r.Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Directories != 2 || report.Files != 3 || report.Indexed != 5 || report.Errors != 0 {
		t.Errorf("Run() report = %+v", report)
	}
	if report.ScanID == "" || report.Mode != ModeFull {
		t.Errorf("Run() report identity = %q %q", report.ScanID, report.Mode)
	}
	if r.LastReport() != report {
		t.Error("LastReport() does not return the latest report")
	}

	top := assertIndexed(t, store, "/top.txt")
	if top.ParentID != nil {
		t.Errorf("root-level file parent = %d, want nil", *top.ParentID)
	}
	docs := assertIndexed(t, store, "/docs")
	if docs.ParentID != nil {
		t.Errorf("root-level directory parent = %d, want nil", *docs.ParentID)
	}
	deep := assertIndexed(t, store, "/docs/deep")
	if deep.ParentID == nil || *deep.ParentID != docs.ID {
		t.Errorf("/docs/deep parent = %v, want %d", deep.ParentID, docs.ID)
	}
	photo := assertIndexed(t, store, "/docs/deep/photo.png")
	if photo.ParentID == nil || *photo.ParentID != deep.ID {
		t.Errorf("photo parent = %v, want %d", photo.ParentID, deep.ID)
	}
	if photo.Subtype != library.SubtypeImage {
		t.Errorf("photo subtype = %s, want image", photo.Subtype)
	}

	if items := listItems(t, store); len(items) != 3 {
		t.Errorf("catalog entries = %d, want 3", len(items))
	}
	assertNotIndexed(t, store, "/_quarantine")
}

func TestReconciler_Run_QuarantinesDuplicateGroup(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/a.txt", "original")
	writeFile(t, fs, "/lib/a - Copy.txt", "copy")
	writeFile(t, fs, "/lib/a (2).txt", "second")
	writeFile(t, fs, "/lib/b.txt", "b")

	report, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Quarantined != 3 || len(report.Moves) != 3 {
		t.Errorf("Run() quarantined = %d, moves = %+v, want 3", report.Quarantined, report.Moves)
	}
	for _, name := range []string{"a.txt", "a - Copy.txt", "a (2).txt"} {
		assertExists(t, fs, "/lib/"+name, false)
		assertExists(t, fs, "/lib/_quarantine/"+name, true)
		assertNotIndexed(t, store, "/"+name)
	}
	assertIndexed(t, store, "/b.txt")
}

func TestReconciler_Run_KeepOriginalPolicy(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/a.txt", "original")
	writeFile(t, fs, "/lib/a - Copy.txt", "copy")
	writeFile(t, fs, "/lib/a (2).txt", "second")

	report, err := NewReconciler(lib, store, DuplicatesKeepOriginal).Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Quarantined != 2 {
		t.Errorf("Run() quarantined = %d, want 2", report.Quarantined)
	}
	assertExists(t, fs, "/lib/a.txt", true)
	assertIndexed(t, store, "/a.txt")
	for _, name := range []string{"a - Copy.txt", "a (2).txt"} {
		assertExists(t, fs, "/lib/_quarantine/"+name, true)
		assertNotIndexed(t, store, "/"+name)
	}
}

func TestReconciler_Run_CopyVariantWithoutSibling(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/work/report - Copy.docx", "docx")
	writeFile(t, fs, "/lib/work/summary.docx", "docx")

	report, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Quarantined != 1 {
		t.Fatalf("Run() quarantined = %d, want 1", report.Quarantined)
	}
	if report.Moves[0].To != "/lib/_quarantine/report - Copy.docx" {
		t.Errorf("Run() move = %+v", report.Moves[0])
	}
	assertNotIndexed(t, store, "/work/report - Copy.docx")
	assertIndexed(t, store, "/work/summary.docx")
}

// renameFailFs rejects every Rename.
type renameFailFs struct {
	afero.Fs
}

func (f *renameFailFs) Rename(oldname, newname string) error {
	return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: os.ErrPermission}
}

func TestReconciler_Run_FailedMoveStaysUnindexed(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "/lib/report - Copy.docx", "docx")
	writeFile(t, base, "/lib/notes.txt", "notes")

	lib, err := library.New(&renameFailFs{Fs: base}, "/lib", "")
	if err != nil {
		t.Fatalf("library.New() error = %v", err)
	}
	store := newTestStore(t)

	report, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Quarantined != 1 || len(report.Moves) != 1 {
		t.Fatalf("Run() report = %+v, want one quarantine attempt", report)
	}
	move := report.Moves[0]
	if move.From != "/lib/report - Copy.docx" || move.To != "" || move.Error == "" {
		t.Errorf("Run() move = %+v, want failed move with error", move)
	}
	assertExists(t, base, "/lib/report - Copy.docx", true)
	assertNotIndexed(t, store, "/report - Copy.docx")
	assertIndexed(t, store, "/notes.txt")
}

func TestReconciler_Run_IndexesNestedReservedName(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/docs/_quarantine/notes.txt", "notes")
	writeFile(t, fs, "/lib/_quarantine/held.txt", "held")

	report, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Files != 1 {
		t.Errorf("Run() files = %d, want 1", report.Files)
	}
	assertIndexed(t, store, "/docs/_quarantine")
	assertIndexed(t, store, "/docs/_quarantine/notes.txt")
	assertNotIndexed(t, store, "/_quarantine/held.txt")

	// A second full scan keeps the nested file.
	if _, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(context.Background(), ModeFull); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	assertIndexed(t, store, "/docs/_quarantine/notes.txt")
}

func TestReconciler_Run_QuarantineCollisions(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/_quarantine/x - Copy.txt", "older")
	writeFile(t, fs, "/lib/one/x - Copy.txt", "one")

	report, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Moves) != 1 || report.Moves[0].To != "/lib/_quarantine/x - Copy__dup2.txt" {
		t.Errorf("Run() moves = %+v", report.Moves)
	}
	data, err := afero.ReadFile(fs, "/lib/_quarantine/x - Copy.txt")
	if err != nil || string(data) != "older" {
		t.Errorf("existing quarantined file overwritten: %q, %v", data, err)
	}
}

func TestReconciler_Run_Idempotent(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/a.txt", "a")
	writeFile(t, fs, "/lib/music/track.mp3", "mp3")

	r := NewReconciler(lib, store, DuplicatesQuarantineAll)
	ctx := context.Background()

	first, err := r.Run(ctx, ModeFull)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	filesBefore, _ := store.ListFiles(ctx)
	itemsBefore := listItems(t, store)

	second, err := r.Run(ctx, ModeFull)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if first.Indexed != 3 || second.Indexed != 0 || second.Updated != 3 {
		t.Errorf("Run() counts: first indexed %d, second indexed %d updated %d", first.Indexed, second.Indexed, second.Updated)
	}
	if second.ScanID == first.ScanID {
		t.Error("scans share an id")
	}

	filesAfter, _ := store.ListFiles(ctx)
	if len(filesAfter) != len(filesBefore) {
		t.Fatalf("files = %d, want %d", len(filesAfter), len(filesBefore))
	}
	for i := range filesAfter {
		if filesAfter[i].ID != filesBefore[i].ID || filesAfter[i].Path != filesBefore[i].Path {
			t.Errorf("file %d changed: %+v -> %+v", i, filesBefore[i], filesAfter[i])
		}
	}
	itemsAfter := listItems(t, store)
	if len(itemsAfter) != len(itemsBefore) {
		t.Fatalf("items = %d, want %d", len(itemsAfter), len(itemsBefore))
	}
	for i := range itemsAfter {
		if *itemsAfter[i].Link != *itemsBefore[i].Link {
			t.Errorf("item link changed: %s -> %s", *itemsBefore[i].Link, *itemsAfter[i].Link)
		}
	}
}

func TestReconciler_Run_HealsMovedFile(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/old/report.pdf", "pdf")

	r := NewReconciler(lib, store, DuplicatesQuarantineAll)
	ctx := context.Background()
	if _, err := r.Run(ctx, ModeFull); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	items := listItems(t, store)
	if len(items) != 1 || *items[0].Link != "/old/report.pdf" {
		t.Fatalf("catalog before move = %+v", items)
	}
	itemID := items[0].ID

	if err := fs.MkdirAll("/lib/new", 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := fs.Rename("/lib/old/report.pdf", "/lib/new/report.pdf"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	report, err := r.Run(ctx, ModeFull)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	items = listItems(t, store)
	if len(items) != 1 {
		t.Fatalf("catalog after move = %+v, want one entry", items)
	}
	if items[0].ID != itemID || *items[0].Link != "/new/report.pdf" {
		t.Errorf("catalog entry = %+v, want id %d linking /new/report.pdf", items[0], itemID)
	}
	if report.StaleRemoved != 1 {
		t.Errorf("StaleRemoved = %d, want 1", report.StaleRemoved)
	}
	assertNotIndexed(t, store, "/old/report.pdf")
	assertIndexed(t, store, "/new/report.pdf")
}

func TestReconciler_Run_RemovesStaleAndOrphans(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/keep.txt", "keep")
	writeFile(t, fs, "/lib/gone.txt", "gone")

	r := NewReconciler(lib, store, DuplicatesQuarantineAll)
	ctx := context.Background()
	if _, err := r.Run(ctx, ModeFull); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	bookmark := "https://example.com/gone"
	if _, err := storage.NewItemRepo(store.DB()).Create(ctx, storage.ItemRecord{Name: "gone", Link: &bookmark, Type: "bookmark"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := fs.Remove("/lib/gone.txt"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	report, err := r.Run(ctx, ModeFull)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if report.StaleRemoved != 1 || report.OrphansRemoved != 1 {
		t.Errorf("Run() stale = %d, orphans = %d, want 1, 1", report.StaleRemoved, report.OrphansRemoved)
	}
	assertNotIndexed(t, store, "/gone.txt")
	assertIndexed(t, store, "/keep.txt")

	names := make(map[string]string)
	for _, item := range listItems(t, store) {
		names[item.Name] = item.Type
	}
	if _, ok := names["keep"]; !ok {
		t.Error("catalog entry for keep removed")
	}
	if typ := names["gone"]; typ != "bookmark" {
		t.Errorf("remaining gone entry type = %q, want only the bookmark to survive", typ)
	}
}

func TestReconciler_Run_InitialModeSkipsCleanup(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/gone.txt", "gone")

	r := NewReconciler(lib, store, DuplicatesQuarantineAll)
	ctx := context.Background()
	if _, err := r.Run(ctx, ModeInitial); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := fs.Remove("/lib/gone.txt"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	report, err := r.Run(ctx, ModeInitial)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if report.StaleRemoved != 0 || report.OrphansRemoved != 0 {
		t.Errorf("initial Run() removed rows: %+v", report)
	}
	assertIndexed(t, store, "/gone.txt")
	if items := listItems(t, store); len(items) != 1 {
		t.Errorf("catalog entries = %d, want 1", len(items))
	}
}

func TestReconciler_Run_KeepsQuarantinedRows(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/a.txt", "a")
	ctx := context.Background()

	// A row under quarantine is exempt from cleanup even though no file backs it.
	if _, err := store.InsertFile(ctx, &storage.FileRecord{Path: "/_quarantine/old.txt", Type: storage.FileTypeFile, Subtype: "text", Name: "old"}); err != nil {
		t.Fatalf("InsertFile() error = %v", err)
	}

	report, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(ctx, ModeFull)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.StaleRemoved != 0 {
		t.Errorf("StaleRemoved = %d, want 0", report.StaleRemoved)
	}
	assertIndexed(t, store, "/_quarantine/old.txt")
}

func TestReconciler_Run_PartialFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "/lib/ok.txt", "ok")
	writeFile(t, base, "/lib/locked.txt", "locked")

	lib, err := library.New(&statFailFs{Fs: base, failOn: "/lib/locked.txt"}, "/lib", "")
	if err != nil {
		t.Fatalf("library.New() error = %v", err)
	}
	store := newTestStore(t)

	report, err := NewReconciler(lib, store, DuplicatesQuarantineAll).Run(context.Background(), ModeFull)
	if !errors.Is(err, ErrPartialScan) {
		t.Fatalf("Run() error = %v, want ErrPartialScan", err)
	}
	if report == nil || report.Errors != 1 || report.Indexed != 1 {
		t.Fatalf("Run() report = %+v", report)
	}
	assertIndexed(t, store, "/ok.txt")
	assertNotIndexed(t, store, "/locked.txt")
}

func TestReconciler_Run_QuarantineSetupFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "/lib/a.txt", "a")

	lib, err := library.New(afero.NewReadOnlyFs(base), "/lib", "")
	if err != nil {
		t.Fatalf("library.New() error = %v", err)
	}

	_, err = NewReconciler(lib, newTestStore(t), DuplicatesQuarantineAll).Run(context.Background(), ModeFull)
	if err == nil || errors.Is(err, ErrPartialScan) {
		t.Fatalf("Run() error = %v, want fatal setup error", err)
	}
}

func TestReconciler_RejectsConcurrentScan(t *testing.T) {
	lib, _, store := newTestEnv(t)
	r := NewReconciler(lib, store, DuplicatesQuarantineAll)

	r.running.Lock()
	if _, err := r.Run(context.Background(), ModeFull); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("Run() error = %v, want ErrScanInProgress", err)
	}
	if _, err := r.Start(context.Background(), ModeFull); !errors.Is(err, ErrScanInProgress) {
		t.Errorf("Start() error = %v, want ErrScanInProgress", err)
	}
	r.running.Unlock()

	if _, err := r.Run(context.Background(), ModeFull); err != nil {
		t.Errorf("Run() after unlock error = %v", err)
	}
}

func TestReconciler_Start(t *testing.T) {
	lib, fs, store := newTestEnv(t)
	writeFile(t, fs, "/lib/a.txt", "a")
	r := NewReconciler(lib, store, DuplicatesQuarantineAll)

	ctx, cancel := context.WithCancel(context.Background())
	scanID, err := r.Start(ctx, ModeFull)
	cancel()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	r.Wait()

	last := r.LastReport()
	if last == nil || last.ScanID != scanID {
		t.Fatalf("LastReport() = %+v, want scan %s", last, scanID)
	}
	if last.Indexed != 1 {
		t.Errorf("background scan indexed %d, want 1", last.Indexed)
	}
}

// gatedFs holds every Open of dir until release is closed.
type gatedFs struct {
	afero.Fs
	dir     string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (f *gatedFs) Open(name string) (afero.File, error) {
	if name == f.dir {
		f.once.Do(func() { close(f.entered) })
		<-f.release
	}
	return f.Fs.Open(name)
}

func TestReconciler_Wait(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "/lib/a.txt", "a")
	gate := &gatedFs{Fs: base, dir: "/lib", entered: make(chan struct{}), release: make(chan struct{})}
	lib, err := library.New(gate, "/lib", "")
	if err != nil {
		t.Fatalf("library.New() error = %v", err)
	}
	r := NewReconciler(lib, newTestStore(t), DuplicatesQuarantineAll)

	scanID, err := r.Start(context.Background(), ModeFull)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-gate.entered

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait() returned while the scan was still walking")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() did not return after the scan finished")
	}

	last := r.LastReport()
	if last == nil || last.ScanID != scanID || last.Indexed != 1 {
		t.Errorf("LastReport() = %+v, want finished scan %s", last, scanID)
	}
}

func TestReconciler_Wait_NoScan(t *testing.T) {
	lib, _, store := newTestEnv(t)
	r := NewReconciler(lib, store, DuplicatesQuarantineAll)

	// Returns immediately when nothing was started.
	r.Wait()
	if r.LastReport() != nil {
		t.Errorf("LastReport() = %+v, want nil", r.LastReport())
	}
}

func TestReconciler_Startup(t *testing.T) {
	ctx := context.Background()

	t.Run("off", func(t *testing.T) {
		lib, fs, store := newTestEnv(t)
		writeFile(t, fs, "/lib/a.txt", "a")

		report, err := NewReconciler(lib, store, "").Startup(ctx, StartupOff)
		if err != nil || report != nil {
			t.Fatalf("Startup(off) = %+v, %v", report, err)
		}
		assertNotIndexed(t, store, "/a.txt")
	})

	t.Run("initial on empty index", func(t *testing.T) {
		lib, fs, store := newTestEnv(t)
		writeFile(t, fs, "/lib/a.txt", "a")

		report, err := NewReconciler(lib, store, "").Startup(ctx, StartupInitial)
		if err != nil {
			t.Fatalf("Startup(initial) error = %v", err)
		}
		if report == nil || report.Mode != ModeInitial {
			t.Fatalf("Startup(initial) report = %+v", report)
		}
		assertIndexed(t, store, "/a.txt")
	})

	t.Run("initial on populated index", func(t *testing.T) {
		lib, fs, store := newTestEnv(t)
		writeFile(t, fs, "/lib/a.txt", "a")
		r := NewReconciler(lib, store, "")
		if _, err := r.Run(ctx, ModeFull); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		writeFile(t, fs, "/lib/b.txt", "b")

		report, err := r.Startup(ctx, StartupInitial)
		if err != nil || report != nil {
			t.Fatalf("Startup(initial) = %+v, %v, want skipped", report, err)
		}
		assertNotIndexed(t, store, "/b.txt")
	})

	t.Run("full", func(t *testing.T) {
		lib, fs, store := newTestEnv(t)
		writeFile(t, fs, "/lib/a.txt", "a")

		report, err := NewReconciler(lib, store, "").Startup(ctx, StartupFull)
		if err != nil || report == nil || report.Mode != ModeFull {
			t.Fatalf("Startup(full) = %+v, %v", report, err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		lib, _, store := newTestEnv(t)
		if _, err := NewReconciler(lib, store, "").Startup(ctx, "sometimes"); err == nil {
			t.Error("Startup() expected error for unknown policy")
		}
	})
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", DuplicatesQuarantineAll, false},
		{"all", DuplicatesQuarantineAll, false},
		{"KEEP-ORIGINAL", DuplicatesKeepOriginal, false},
		{"newest", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDuplicatePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}
