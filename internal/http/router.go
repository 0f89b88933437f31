package http

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"

	"folder-catalog/internal/handlers"
	"folder-catalog/internal/indexer"
	"folder-catalog/internal/library"
	"folder-catalog/internal/service"
	"folder-catalog/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Files      service.FileService
	Store      *storage.Store
	Reconciler *indexer.Reconciler
	Library    *library.Library
	Port       int
	DBDriver   string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)

	// Add CORS middleware
	r.Use(CORS)

	db := deps.Store.DB()
	health := handlers.NewHealthHandler(deps.Store, deps.Library.Fs(), deps.Library.Root())
	files := handlers.NewFileHandler(deps.Files)
	scans := handlers.NewScanHandler(deps.Reconciler)
	views := handlers.NewViewHandler(storage.NewViewRepo(db))

	r.Method(http.MethodGet, "/", handlers.NewInfoHandler(deps.Port, deps.Library.Root(), deps.DBDriver))

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.Live)
		r.Get("/status", health.Status)

		r.Route("/files", func(r chi.Router) {
			r.Get("/", files.List)
			r.Post("/upload", files.Upload)
			r.Post("/move", files.Move)
			r.Post("/move-multiple", files.MoveMany)
			r.Get("/{id}", files.Get)
			r.Delete("/{id}", files.Delete)
			r.Get("/{id}/content", files.Content)
			r.Get("/{id}/preview", files.Preview)
		})

		mountCRUD(r, "/items", handlers.NewItemHandler(storage.NewItemRepo(db)))
		mountCRUD(r, "/tags", handlers.NewTagHandler(storage.NewTagRepo(db)))
		mountCRUD(r, "/tag-groups", handlers.NewTagGroupHandler(storage.NewTagGroupRepo(db)))
		mountCRUD(r, "/topics", handlers.NewTopicHandler(storage.NewTopicRepo(db)))

		mountLinks(r, "/item-tags", storage.NewLinkRepo(db, storage.ItemTags))
		mountLinks(r, "/tag-group-tags", storage.NewLinkRepo(db, storage.TagGroupTags))
		mountLinks(r, "/topic-tag-groups", storage.NewLinkRepo(db, storage.TopicTagGroups))
		mountLinks(r, "/topic-items", storage.NewLinkRepo(db, storage.TopicItems))

		r.Route("/view-models", func(r chi.Router) {
			r.Get("/tag-groups", views.TagGroups)
			r.Get("/topics/{id}", views.Topic)
			r.Get("/items/{id}", views.Item)
		})

		r.Post("/scan", scans.Start)
		r.Get("/scan", scans.Last)
	})

	r.Handle("/served/*", http.StripPrefix("/served", servedFiles(deps.Library)))

	return r
}

// crudRoutes is the method set shared by the catalog CRUD handlers.
type crudRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

func mountCRUD(r chi.Router, pattern string, h crudRoutes) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func mountLinks(r chi.Router, pattern string, repo *storage.LinkRepo) {
	h := handlers.NewLinkHandler(repo)
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{left}/{right}", h.Get)
		r.Delete("/{left}/{right}", h.Delete)
	})
}

// servedFiles serves the library tree read-only, hiding the quarantine
// directory.
func servedFiles(lib *library.Library) http.Handler {
	fileServer := http.FileServer(afero.NewHttpFs(afero.NewReadOnlyFs(afero.NewBasePathFs(lib.Fs(), lib.Root()))))
	quarantine := lib.QuarantineName()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleaned := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		first, _, _ := strings.Cut(cleaned, "/")
		if first == quarantine {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
