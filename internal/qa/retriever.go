package qa

import (
	"context"
	"fmt"
	"strings"

	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/vectorstore"
)

// retriever composes the embedding gateway, the vector store and the section
// filter into one operation: normalized question -> grounding text.
type retriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	k          int
	threshold  float64
}

// NewRetriever creates a ContextRetriever over the given gateways. k is the
// retrieval width and threshold the section-similarity acceptance bound; both
// are fixed per instance, not per call.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, k int, threshold float64) ContextRetriever {
	return &retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		k:          k,
		threshold:  threshold,
	}
}

// Retrieve embeds the question, fetches the k nearest passages and keeps those
// whose stored section label resembles the inferred topic. Accepted passage
// texts are concatenated in store order, separated by a space. Zero surviving
// passages yield an empty string, which is a valid outcome.
func (r *retriever) Retrieve(ctx context.Context, question, topic string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return "", gatewayError("embedding gateway", err)
	}
	if len(embeddings) == 0 {
		return "", gatewayError("embedding gateway", fmt.Errorf("no embedding returned for question"))
	}

	results, err := r.store.Search(ctx, r.collection, embeddings[0], r.k)
	if err != nil {
		return "", gatewayError("passage store", err)
	}

	kept := make([]string, 0, len(results))
	for i, result := range results {
		passage := passageFromMeta(result.Meta)
		score := SectionSimilarity(topic, passage.Section)
		logger.DebugContext(ctx, "scored passage",
			"rank", i+1,
			"page", passage.Page,
			"section", passage.Section,
			"topic", topic,
			"section_similarity", score,
		)
		if score > r.threshold && passage.Text != "" {
			kept = append(kept, passage.Text)
		}
	}

	logger.InfoContext(ctx, "context retrieved",
		"topic", topic,
		"candidates", len(results),
		"kept", len(kept),
	)

	return strings.Join(kept, " "), nil
}

// passageFromMeta decodes a stored passage from a search result payload.
// Missing or mistyped fields decode to zero values; the section filter then
// rejects such passages naturally.
func passageFromMeta(meta map[string]any) Passage {
	var p Passage
	if text, ok := meta["text"].(string); ok {
		p.Text = text
	}
	if section, ok := meta["section"].(string); ok {
		p.Section = section
	}
	if source, ok := meta["source"].(string); ok {
		p.Source = source
	}
	switch page := meta["page"].(type) {
	case int64:
		p.Page = int(page)
	case float64:
		p.Page = int(page)
	case int:
		p.Page = page
	}
	return p
}
