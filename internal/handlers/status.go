package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/storage"
	"constitution-qa/internal/vectorstore"
)

// CollectionInfoProvider exposes collection statistics from the vector store.
type CollectionInfoProvider interface {
	GetCollectionInfo(ctx context.Context, collection string) (*vectorstore.CollectionInfo, error)
}

// StatusHandler reports the indexed corpus: registered documents and the
// state of the vector collection.
type StatusHandler struct {
	docRepo    storage.DocumentStore
	info       CollectionInfoProvider
	collection string
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(docRepo storage.DocumentStore, info CollectionInfoProvider, collection string) *StatusHandler {
	return &StatusHandler{
		docRepo:    docRepo,
		info:       info,
		collection: collection,
	}
}

// DocumentStatus describes one ingested document.
type DocumentStatus struct {
	Source    string `json:"source"`
	Pages     int    `json:"pages"`
	Passages  int    `json:"passages"`
	IndexedAt string `json:"indexed_at"`
}

// StatusResponse represents the corpus status payload.
type StatusResponse struct {
	Documents   []DocumentStatus `json:"documents"`
	Collection  string           `json:"collection"`
	PointsCount int              `json:"points_count"`
	VectorSize  int              `json:"vector_size"`
}

// ServeHTTP handles HTTP requests for corpus status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := h.docRepo.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read corpus status")
		return
	}

	resp := StatusResponse{
		Documents:  make([]DocumentStatus, 0, len(docs)),
		Collection: h.collection,
	}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, DocumentStatus{
			Source:    doc.Source,
			Pages:     doc.Pages,
			Passages:  doc.PassageCount,
			IndexedAt: doc.IndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	if info, err := h.info.GetCollectionInfo(ctx, h.collection); err != nil {
		logger.WarnContext(ctx, "failed to get collection info", "error", err)
	} else {
		resp.PointsCount = info.PointsCount
		resp.VectorSize = info.VectorSize
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode status response", "error", err)
	}
}
