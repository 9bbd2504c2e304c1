package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/ingest"
)

// IndexHandler handles HTTP requests for triggering re-ingestion of the
// constitution document.
type IndexHandler struct {
	pipeline *ingest.Pipeline
	pdfPath  string
}

// NewIndexHandler creates a new IndexHandler. pdfPath may be empty when the
// service runs against a pre-indexed corpus; re-ingestion is then disabled.
func NewIndexHandler(pipeline *ingest.Pipeline, pdfPath string) *IndexHandler {
	return &IndexHandler{
		pipeline: pipeline,
		pdfPath:  pdfPath,
	}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles HTTP requests for triggering re-ingestion.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.pipeline == nil || h.pdfPath == "" {
		writeError(w, http.StatusServiceUnavailable, "No source document configured")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	logger.InfoContext(ctx, "ingestion triggered via API", "force", force)

	// Ingestion can take a while; run it detached from the request context.
	go func() {
		bgCtx := contextutil.WithLogger(context.Background(), logger)
		if err := h.pipeline.Run(bgCtx, h.pdfPath, force); err != nil {
			logger.Error("ingestion failed", "error", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(IndexResponse{
		Message: "Ingestion started",
		Status:  "accepted",
	})
}
