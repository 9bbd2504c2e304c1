package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"constitution-qa/internal/llm"
)

// normalize rewrites the raw question into a constitution-focused query and
// infers its section, or classifies it as out-of-scope or ambiguous. It never
// answers the question. The gateway reply must be a JSON object with exactly
// the NormalizedQuery fields; classification of the rewritten text happens
// here, so callers branch on the tagged outcome rather than sentinel strings.
func (e *engine) normalize(ctx context.Context, question string, history []llm.Message) (NormalizeResult, error) {
	messages := buildMessages(normalizerSystemPrompt, history, normalizerUserMessage(question))

	content, err := e.complete(ctx, messages)
	if err != nil {
		return NormalizeResult{}, gatewayError("query normalizer", err)
	}

	var raw struct {
		CleanedQuestion *string `json:"cleaned_question"`
		SectionName     *string `json:"section_name"`
	}
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return NormalizeResult{}, malformedError("query normalizer", err)
	}
	if raw.CleanedQuestion == nil || raw.SectionName == nil {
		return NormalizeResult{}, malformedError("query normalizer", fmt.Errorf("missing required fields"))
	}

	cleaned := strings.TrimSpace(*raw.CleanedQuestion)

	switch {
	case strings.Contains(cleaned, refusalMarker):
		return NormalizeResult{Outcome: OutcomeRefused, Reply: refusalSentence}, nil
	case strings.HasPrefix(cleaned, clarificationPrefix):
		return NormalizeResult{Outcome: OutcomeNeedsClarification, Reply: cleaned}, nil
	default:
		return NormalizeResult{
			Outcome: OutcomeNormalized,
			Query: NormalizedQuery{
				CleanedQuestion: cleaned,
				SectionName:     strings.TrimSpace(*raw.SectionName),
			},
		}, nil
	}
}
