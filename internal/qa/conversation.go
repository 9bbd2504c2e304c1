package qa

import "constitution-qa/internal/llm"

// Conversation owns the message history and the current inferred topic for one
// chat session. It is created by the caller and mutated only by the engine;
// callers running concurrent sessions give each session its own Conversation.
type Conversation struct {
	history []llm.Message
	topic   string
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// History returns a copy of the transcript so far.
func (c *Conversation) History() []llm.Message {
	out := make([]llm.Message, len(c.history))
	copy(out, c.history)
	return out
}

// Topic returns the section label inferred on the most recent normalized turn.
func (c *Conversation) Topic() string {
	return c.topic
}

// Len returns the number of recorded messages.
func (c *Conversation) Len() int {
	return len(c.history)
}

// recordTurn appends the user's original question and the produced answer.
// Short-circuit replies (refusal, clarification, insufficient context) are
// recorded too; failed turns never reach this point.
func (c *Conversation) recordTurn(question, answer string) {
	c.history = append(c.history,
		llm.Message{Role: llm.RoleUser, Content: question},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)
}
