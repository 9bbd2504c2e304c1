package qa

import (
	"context"
	"time"

	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/llm"
)

// engine implements Engine. One turn runs as a linear blocking pipeline:
// direct-answer check, then query normalization, then topic-filtered retrieval
// and grounded synthesis. Each stage's input depends on the previous stage's
// output, so there is no intra-turn parallelism.
type engine struct {
	completions CompletionClient
	retriever   ContextRetriever
	params      llm.ChatParams
	timeout     time.Duration
}

// NewEngine creates an Engine. params applies to all three completion stages.
// timeout bounds each individual gateway call; zero disables the bound.
func NewEngine(completions CompletionClient, retriever ContextRetriever, params llm.ChatParams, timeout time.Duration) Engine {
	return &engine{
		completions: completions,
		retriever:   retriever,
		params:      params,
		timeout:     timeout,
	}
}

// Answer runs one conversation turn. The conversation is only mutated once the
// turn produced an answer; gateway and parse failures leave it untouched so
// the caller can retry without a corrupted transcript.
func (e *engine) Answer(ctx context.Context, conv *Conversation, question string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)
	history := conv.History()

	direct, err := e.routeDirect(ctx, question, history)
	if err != nil {
		return "", err
	}
	if direct.CanAnswerFromSystemInfo {
		logger.InfoContext(ctx, "answered from system info", "question_length", len(question))
		conv.recordTurn(question, direct.Answer)
		return direct.Answer, nil
	}

	norm, err := e.normalize(ctx, question, history)
	if err != nil {
		return "", err
	}

	switch norm.Outcome {
	case OutcomeRefused:
		logger.InfoContext(ctx, "question out of scope")
		conv.recordTurn(question, norm.Reply)
		return norm.Reply, nil
	case OutcomeNeedsClarification:
		logger.InfoContext(ctx, "question needs clarification")
		conv.recordTurn(question, norm.Reply)
		return norm.Reply, nil
	}

	// The topic used to filter retrieval is always the one inferred this turn.
	conv.topic = norm.Query.SectionName
	logger.InfoContext(ctx, "question normalized",
		"section", norm.Query.SectionName,
		"cleaned_length", len(norm.Query.CleanedQuestion),
	)

	retrieveCtx, cancel := e.boundedContext(ctx)
	grounding, err := e.retriever.Retrieve(retrieveCtx, norm.Query.CleanedQuestion, norm.Query.SectionName)
	cancel()
	if err != nil {
		return "", err
	}
	logger.InfoContext(ctx, "grounding assembled", "grounding_length", len(grounding))

	answer, err := e.synthesize(ctx, norm.Query.CleanedQuestion, grounding, history)
	if err != nil {
		return "", err
	}

	conv.recordTurn(question, answer)
	return answer, nil
}

// complete issues one completion call under the engine's timeout bound.
func (e *engine) complete(ctx context.Context, messages []llm.Message) (string, error) {
	callCtx, cancel := e.boundedContext(ctx)
	defer cancel()
	return e.completions.ChatWithMessages(callCtx, messages, e.params)
}

func (e *engine) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}
