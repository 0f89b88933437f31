package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"folder-catalog/internal/storage"
)

func newTestDB(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.New(storage.DriverSQLite, storage.SQLiteDSN(filepath.Join(t.TempDir(), "test.db")), 0)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db, storage.DriverSQLite); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}
	return storage.NewStore(db)
}

// catalogRouter mounts the catalog handlers the way the service router does.
func catalogRouter(store *storage.Store) http.Handler {
	db := store.DB()
	r := chi.NewRouter()

	items := NewItemHandler(storage.NewItemRepo(db))
	r.Route("/items", func(r chi.Router) {
		r.Get("/", items.List)
		r.Post("/", items.Create)
		r.Get("/{id}", items.Get)
		r.Put("/{id}", items.Update)
		r.Delete("/{id}", items.Delete)
	})

	tags := NewTagHandler(storage.NewTagRepo(db))
	r.Post("/tags", tags.Create)

	itemTags := NewLinkHandler(storage.NewLinkRepo(db, storage.ItemTags))
	r.Route("/item-tags", func(r chi.Router) {
		r.Get("/", itemTags.List)
		r.Post("/", itemTags.Create)
		r.Get("/{left}/{right}", itemTags.Get)
		r.Delete("/{left}/{right}", itemTags.Delete)
	})

	views := NewViewHandler(storage.NewViewRepo(db))
	r.Get("/view-models/items/{id}", views.Item)
	r.Get("/view-models/topics/{id}", views.Topic)
	r.Get("/view-models/tag-groups", views.TagGroups)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCRUDHandler_Items(t *testing.T) {
	h := catalogRouter(newTestDB(t))

	w := do(t, h, http.MethodPost, "/items", `{"name": "Blade Runner", "link": "https://example.com", "type": "bookmark"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created storage.ItemRecord
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == 0 || created.Name != "Blade Runner" || created.Type != "bookmark" {
		t.Fatalf("created = %+v", created)
	}

	w = do(t, h, http.MethodGet, "/items/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = do(t, h, http.MethodPut, "/items/1", `{"name": "Blade Runner 2049", "type": "bookmark"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated storage.ItemRecord
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.ID != created.ID || updated.Name != "Blade Runner 2049" || updated.Link != nil {
		t.Errorf("updated = %+v", updated)
	}

	w = do(t, h, http.MethodGet, "/items", "")
	var list []storage.ItemRecord
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list = %+v, want one item", list)
	}

	if w := do(t, h, http.MethodDelete, "/items/1", ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/items/1", ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestCRUDHandler_Errors(t *testing.T) {
	h := catalogRouter(newTestDB(t))

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"empty name", http.MethodPost, "/items", `{"name": "  "}`, http.StatusBadRequest},
		{"invalid JSON", http.MethodPost, "/items", `not json`, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/items/x", "", http.StatusBadRequest},
		{"update missing", http.MethodPut, "/items/42", `{"name": "n"}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/items/42", "", http.StatusNotFound},
		{"empty list", http.MethodGet, "/items", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.target, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.target, w.Code, tt.wantStatus)
			}
		})
	}

	if w := do(t, h, http.MethodGet, "/items", ""); strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", w.Body.String())
	}
}

func TestLinkHandler(t *testing.T) {
	h := catalogRouter(newTestDB(t))

	do(t, h, http.MethodPost, "/items", `{"name": "song"}`)
	do(t, h, http.MethodPost, "/tags", `{"group": "mood", "name": "calm"}`)

	w := do(t, h, http.MethodPost, "/item-tags", `{"item_id": 1, "tag_id": 1}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var link map[string]int64
	if err := json.NewDecoder(w.Body).Decode(&link); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if link["item_id"] != 1 || link["tag_id"] != 1 {
		t.Errorf("created link = %v", link)
	}

	if w := do(t, h, http.MethodPost, "/item-tags", `{"item_id": 1, "tag_id": 1}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/item-tags", `{"item_id": 1}`); w.Code != http.StatusBadRequest {
		t.Errorf("missing column status = %d, want 400", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/item-tags/1/1", ""); w.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", w.Code)
	}

	w = do(t, h, http.MethodGet, "/view-models/items/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("item view status = %d", w.Code)
	}
	var view storage.ItemWithTags
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Name != "song" || len(view.Tags) != 1 || view.Tags[0].Name != "calm" {
		t.Errorf("item view = %+v", view)
	}

	if w := do(t, h, http.MethodDelete, "/item-tags/1/1", ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d, want 200", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/item-tags/1/1", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestViewHandler_Missing(t *testing.T) {
	h := catalogRouter(newTestDB(t))

	if w := do(t, h, http.MethodGet, "/view-models/topics/3", ""); w.Code != http.StatusNotFound {
		t.Errorf("topic view status = %d, want 404", w.Code)
	}
	w := do(t, h, http.MethodGet, "/view-models/tag-groups", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("tag groups view = %d %q, want 200 []", w.Code, w.Body.String())
	}
}
