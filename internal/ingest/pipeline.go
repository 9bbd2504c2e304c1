package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/qa"
	"constitution-qa/internal/storage"
	"constitution-qa/internal/vectorstore"
)

// embedBatchSize bounds the number of texts sent per embeddings request.
const embedBatchSize = 16

// Pipeline indexes the constitution PDF into the vector store and records the
// result in the document registry, so unchanged documents are not re-embedded.
type Pipeline struct {
	docRepo    storage.DocumentStore
	embedder   qa.Embedder
	store      vectorstore.VectorStore
	collection string
	source     string
	chunker    *Chunker
}

// NewPipeline creates an ingestion pipeline. source is the document identifier
// stored in passage metadata and the registry.
func NewPipeline(
	docRepo storage.DocumentStore,
	embedder qa.Embedder,
	store vectorstore.VectorStore,
	collection string,
	source string,
) *Pipeline {
	return &Pipeline{
		docRepo:    docRepo,
		embedder:   embedder,
		store:      store,
		collection: collection,
		source:     source,
		chunker:    NewChunker(),
	}
}

// Run ingests the PDF at path. When the file hash matches the registered
// document and force is false, ingestion is skipped. A changed document has
// its stale vector points deleted before the new ones are upserted.
func (p *Pipeline) Run(ctx context.Context, path string, force bool) error {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := p.docRepo.GetBySource(ctx, p.source)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to check document registry: %w", err)
	}

	if existing != nil && existing.Hash == hash && !force {
		logger.InfoContext(ctx, "document unchanged, skipping ingestion", "source", p.source, "hash", hash)
		return nil
	}

	pages, err := ExtractPages(path)
	if err != nil {
		return fmt.Errorf("failed to extract pdf text: %w", err)
	}

	chunks := p.chunker.ChunkPages(pages)
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks produced from %s", path)
	}
	logger.InfoContext(ctx, "document chunked", "source", p.source, "pages", len(pages), "chunks", len(chunks))

	points := make([]vectorstore.Point, 0, len(chunks))
	records := make([]storage.PassageRecord, 0, len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks %d-%d: %w", start, end, err)
		}

		for i, chunk := range batch {
			id := uuid.NewString()
			points = append(points, vectorstore.Point{
				ID:  id,
				Vec: vectors[i],
				Meta: map[string]any{
					"text":    chunk.Text,
					"page":    chunk.Page,
					"section": chunk.Section,
					"source":  p.source,
				},
			})
			records = append(records, storage.PassageRecord{
				ID:      id,
				Page:    chunk.Page,
				Section: chunk.Section,
			})
		}
	}

	// Drop the previous generation of points before upserting the new one.
	if existing != nil {
		staleIDs, err := p.docRepo.ListPassageIDs(ctx, existing.ID)
		if err != nil {
			return fmt.Errorf("failed to list stale passages: %w", err)
		}
		if err := p.store.Delete(ctx, p.collection, staleIDs); err != nil {
			return fmt.Errorf("failed to delete stale passages: %w", err)
		}
	}

	if err := p.store.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert passages: %w", err)
	}

	doc := storage.Document{
		Source: p.source,
		Hash:   hash,
		Pages:  len(pages),
	}
	if _, err := p.docRepo.Replace(ctx, doc, records); err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	logger.InfoContext(ctx, "document ingested", "source", p.source, "passages", len(points))
	return nil
}
