package qa

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_qa.go -package=mocks constitution-qa/internal/qa Engine,CompletionClient,ContextRetriever,Embedder

import (
	"context"

	"constitution-qa/internal/llm"
)

// Passage is one indexed excerpt of the constitution, produced by ingestion
// and read-only to the pipeline.
type Passage struct {
	Text    string
	Page    int
	Section string
	Source  string
}

// DirectAnswer is the fast-path result of the direct-answer router. When
// CanAnswerFromSystemInfo is true, Answer is the final response for the turn
// and no retrieval happens.
type DirectAnswer struct {
	Answer                  string
	CanAnswerFromSystemInfo bool
}

// NormalizedQuery is a retrieval-friendly rewrite of the user's question plus
// the section/topic the normalizer inferred for it. It lives for one turn.
type NormalizedQuery struct {
	CleanedQuestion string
	SectionName     string
}

// NormalizeOutcome tags the three possible results of query normalization.
type NormalizeOutcome int

const (
	// OutcomeNormalized means Query holds a genuine retrievable question.
	OutcomeNormalized NormalizeOutcome = iota
	// OutcomeRefused means the question is outside constitutional scope.
	OutcomeRefused
	// OutcomeNeedsClarification means the question was too ambiguous to route.
	OutcomeNeedsClarification
)

// NormalizeResult is the tagged result of the query normalizer. For Refused
// and NeedsClarification outcomes, Reply holds the user-visible text and is
// terminal for the turn.
type NormalizeResult struct {
	Outcome NormalizeOutcome
	Query   NormalizedQuery
	Reply   string
}

// CompletionClient is the completion gateway as consumed by the pipeline.
type CompletionClient interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Embedder is the embedding gateway as consumed by the retriever.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ContextRetriever turns a normalized question and its inferred topic into a
// single grounding text blob. An empty string means no relevant context and is
// a valid outcome, not an error.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question, topic string) (string, error)
}

// Engine answers one user question per conversation turn.
type Engine interface {
	// Answer routes the question through the direct-answer check, query
	// normalization, retrieval and synthesis, and appends the turn to the
	// conversation. On error the conversation is left untouched.
	Answer(ctx context.Context, conv *Conversation, question string) (string, error)
}
