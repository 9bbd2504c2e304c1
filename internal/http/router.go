package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"constitution-qa/internal/handlers"
	"constitution-qa/internal/ingest"
	"constitution-qa/internal/service"
	"constitution-qa/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService    service.ChatService
	DocumentRepo   storage.DocumentStore
	CollectionInfo handlers.CollectionInfoProvider
	Checker        handlers.CollectionChecker
	IngestPipeline *ingest.Pipeline
	PDFPath        string
	CollectionName string
	IndexHTML      string // Embedded HTML content for the chat page
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	statusHandler := handlers.NewStatusHandler(deps.DocumentRepo, deps.CollectionInfo, deps.CollectionName)
	indexHandler := handlers.NewIndexHandler(deps.IngestPipeline, deps.PDFPath)
	healthHandler := handlers.NewHealthHandler(deps.Checker, deps.CollectionName)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodGet, "/status", statusHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	// Serve the chat page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(deps.IndexHTML))
	})

	return r
}
