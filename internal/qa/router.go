package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"constitution-qa/internal/llm"
)

// routeDirect attempts the cheap fast path: one completion call that may only
// answer from the fixed fact table embedded in the router prompt. The reply
// must be a JSON object with exactly the DirectAnswer fields.
func (e *engine) routeDirect(ctx context.Context, question string, history []llm.Message) (DirectAnswer, error) {
	messages := buildMessages(routerSystemPrompt, history, routerUserMessage(question))

	content, err := e.complete(ctx, messages)
	if err != nil {
		return DirectAnswer{}, gatewayError("direct-answer router", err)
	}

	var raw struct {
		Answer                  *string `json:"answer"`
		CanAnswerFromSystemInfo *bool   `json:"can_answer_from_system_info"`
	}
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return DirectAnswer{}, malformedError("direct-answer router", err)
	}
	if raw.Answer == nil || raw.CanAnswerFromSystemInfo == nil {
		return DirectAnswer{}, malformedError("direct-answer router", fmt.Errorf("missing required fields"))
	}

	return DirectAnswer{
		Answer:                  *raw.Answer,
		CanAnswerFromSystemInfo: *raw.CanAnswerFromSystemInfo,
	}, nil
}

// buildMessages assembles the message sequence for a completion call:
// [system] + history + [user]; with empty history just [system, user].
func buildMessages(systemPrompt string, history []llm.Message, userContent string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userContent})
	return messages
}
