package qa

import (
	"context"
	"strings"

	"constitution-qa/internal/llm"
)

// synthesize produces the final answer from the grounding text alone. The
// prompt forbids outside knowledge and mandates the fixed refusal sentence
// when the context is insufficient, so an empty grounding text still yields a
// displayable reply. The response is free text, not JSON.
func (e *engine) synthesize(ctx context.Context, question, grounding string, history []llm.Message) (string, error) {
	messages := buildMessages(synthesizerSystemPrompt, history, synthesizerUserMessage(question, grounding))

	content, err := e.complete(ctx, messages)
	if err != nil {
		return "", gatewayError("answer synthesizer", err)
	}

	// A successful call must always yield a displayable string.
	answer := strings.TrimSpace(content)
	if answer == "" {
		return refusalSentence, nil
	}
	return answer, nil
}
