package qa_test

import (
	"context"
	"errors"
	"testing"

	"constitution-qa/internal/qa"
	qamocks "constitution-qa/internal/qa/mocks"
	"constitution-qa/internal/vectorstore"
	vsmocks "constitution-qa/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

const testCollection = "student_constitution"

func newTestRetriever(t *testing.T, k int, threshold float64) (qa.ContextRetriever, *qamocks.MockEmbedder, *vsmocks.MockVectorStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	embedder := qamocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)
	return qa.NewRetriever(embedder, store, testCollection, k, threshold), embedder, store
}

func passageResult(text, section string, page int) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		Meta: map[string]any{
			"text":    text,
			"section": section,
			"page":    int64(page),
			"source":  "student-constitution",
		},
	}
}

func TestRetrieveFiltersBySectionSimilarity(t *testing.T) {
	retriever, embedder, store := newTestRetriever(t, 5, 0.5)

	question := "What does the constitution state about the election commission?"
	queryVec := []float32{0.1, 0.2, 0.3}

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), []string{question}).
		Return([][]float32{queryVec}, nil)
	store.EXPECT().
		Search(gomock.Any(), testCollection, queryVec, 5).
		Return([]vectorstore.SearchResult{
			passageResult("The commission is formed two weeks before elections.", "Election Commission", 12),
			passageResult("Clubs must register each semester.", "Clubs", 4),
			passageResult("Commission members may not run for office.", "Elections", 13),
		}, nil)

	got, err := retriever.Retrieve(context.Background(), question, "Election Commission")
	if err != nil {
		t.Fatalf("Retrieve() unexpected error: %v", err)
	}

	// Passages are kept in store order and joined with a single space. The
	// Clubs passage falls below the section similarity threshold.
	want := "The commission is formed two weeks before elections. Commission members may not run for office."
	if got != want {
		t.Errorf("Retrieve() = %q, want %q", got, want)
	}
}

func TestRetrieveNoSurvivingPassages(t *testing.T) {
	retriever, embedder, store := newTestRetriever(t, 5, 0.5)

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 5).
		Return([]vectorstore.SearchResult{
			passageResult("Clubs must register each semester.", "Clubs", 4),
			passageResult("", "Election Commission", 12),
		}, nil)

	got, err := retriever.Retrieve(context.Background(), "anything", "Election Commission")
	if err != nil {
		t.Fatalf("Retrieve() unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Retrieve() = %q, want empty grounding", got)
	}
}

func TestRetrieveEmptyStore(t *testing.T) {
	retriever, embedder, store := newTestRetriever(t, 5, 0.5)

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 5).
		Return(nil, nil)

	got, err := retriever.Retrieve(context.Background(), "anything", "Clubs")
	if err != nil {
		t.Fatalf("Retrieve() unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Retrieve() = %q, want empty grounding", got)
	}
}

func TestRetrieveHonorsConfiguredK(t *testing.T) {
	retriever, embedder, store := newTestRetriever(t, 3, 0.5)

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 3).
		Return(nil, nil)

	if _, err := retriever.Retrieve(context.Background(), "anything", "Clubs"); err != nil {
		t.Fatalf("Retrieve() unexpected error: %v", err)
	}
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	retriever, embedder, _ := newTestRetriever(t, 5, 0.5)

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("embedding service down"))

	_, err := retriever.Retrieve(context.Background(), "anything", "Clubs")
	if !errors.Is(err, qa.ErrGatewayUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrGatewayUnavailable", err)
	}
}

func TestRetrieveSearchFailure(t *testing.T) {
	retriever, embedder, store := newTestRetriever(t, 5, 0.5)

	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 5).
		Return(nil, errors.New("qdrant unreachable"))

	_, err := retriever.Retrieve(context.Background(), "anything", "Clubs")
	if !errors.Is(err, qa.ErrGatewayUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrGatewayUnavailable", err)
	}
}

func TestRetrieveIsIdempotent(t *testing.T) {
	retriever, embedder, store := newTestRetriever(t, 5, 0.5)

	results := []vectorstore.SearchResult{
		passageResult("The commission is formed two weeks before elections.", "Election Commission", 12),
	}
	embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil).
		Times(2)
	store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 5).
		Return(results, nil).
		Times(2)

	first, err := retriever.Retrieve(context.Background(), "q", "Election Commission")
	if err != nil {
		t.Fatalf("first Retrieve() failed: %v", err)
	}
	second, err := retriever.Retrieve(context.Background(), "q", "Election Commission")
	if err != nil {
		t.Fatalf("second Retrieve() failed: %v", err)
	}
	if first != second {
		t.Errorf("Retrieve() not deterministic: %q vs %q", first, second)
	}
}
