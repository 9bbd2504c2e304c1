package qa

import (
	"testing"

	"constitution-qa/internal/llm"
)

func TestConversationRecordTurn(t *testing.T) {
	conv := NewConversation()

	if conv.Len() != 0 {
		t.Fatalf("new conversation Len() = %d, want 0", conv.Len())
	}
	if conv.Topic() != "" {
		t.Fatalf("new conversation Topic() = %q, want empty", conv.Topic())
	}

	conv.recordTurn("What are clubs?", "Clubs are student groups.")

	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("History() length = %d, want 2", len(history))
	}
	if history[0].Role != llm.RoleUser || history[0].Content != "What are clubs?" {
		t.Errorf("history[0] = %+v, want user question", history[0])
	}
	if history[1].Role != llm.RoleAssistant || history[1].Content != "Clubs are student groups." {
		t.Errorf("history[1] = %+v, want assistant answer", history[1])
	}
}

func TestConversationHistoryIsACopy(t *testing.T) {
	conv := NewConversation()
	conv.recordTurn("question", "answer")

	history := conv.History()
	history[0].Content = "mutated"

	if got := conv.History()[0].Content; got != "question" {
		t.Errorf("mutating the returned history changed the conversation: %q", got)
	}
}
