package qa_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"constitution-qa/internal/llm"
	"constitution-qa/internal/qa"
	"constitution-qa/internal/qa/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const refusalSentence = "I dont have enough information in the student constitution to answer that."

func newTestEngine(t *testing.T) (qa.Engine, *mocks.MockCompletionClient, *mocks.MockContextRetriever) {
	t.Helper()
	ctrl := gomock.NewController(t)
	completions := mocks.NewMockCompletionClient(ctrl)
	retriever := mocks.NewMockContextRetriever(ctrl)
	engine := qa.NewEngine(completions, retriever, llm.ChatParams{Temperature: 1.0, TopP: 1.0}, time.Second)
	return engine, completions, retriever
}

func TestEngineDirectAnswerFastPath(t *testing.T) {
	engine, completions, _ := newTestEngine(t)
	conv := qa.NewConversation()

	// Only the router call happens; no normalization, retrieval or synthesis.
	completions.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(`{"answer": "Nanduri Anirudh", "can_answer_from_system_info": true}`, nil).
		Times(1)

	answer, err := engine.Answer(context.Background(), conv, "Who made this chatbot?")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if answer != "Nanduri Anirudh" {
		t.Errorf("Answer() = %q, want %q", answer, "Nanduri Anirudh")
	}

	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Content != "Who made this chatbot?" {
		t.Errorf("recorded question = %q, want the original question", history[0].Content)
	}
	if history[1].Content != "Nanduri Anirudh" {
		t.Errorf("recorded answer = %q", history[1].Content)
	}
}

func TestEngineRefusesOutOfScopeQuestion(t *testing.T) {
	engine, completions, _ := newTestEngine(t)
	conv := qa.NewConversation()

	gomock.InOrder(
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"answer": "I don't have enough information to answer that.", "can_answer_from_system_info": false}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"cleaned_question": "I dont have enough information in the student constitution to answer that.", "section_name": ""}`, nil),
	)

	answer, err := engine.Answer(context.Background(), conv, "What is the weather today?")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if answer != refusalSentence {
		t.Errorf("Answer() = %q, want the fixed refusal sentence", answer)
	}

	// The refused turn is still recorded, with the original question.
	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Content != "What is the weather today?" {
		t.Errorf("recorded question = %q, want the original question", history[0].Content)
	}
	if history[1].Content != refusalSentence {
		t.Errorf("recorded answer = %q, want the refusal sentence", history[1].Content)
	}
}

func TestEngineAsksForClarification(t *testing.T) {
	engine, completions, _ := newTestEngine(t)
	conv := qa.NewConversation()

	clarification := "Just to clarify, which president are you asking about? Club, Committee, or Council?"

	gomock.InOrder(
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"answer": "", "can_answer_from_system_info": false}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"cleaned_question": "`+clarification+`", "section_name": ""}`, nil),
	)

	answer, err := engine.Answer(context.Background(), conv, "What does the president do?")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if answer != clarification {
		t.Errorf("Answer() = %q, want the clarification question verbatim", answer)
	}
	if conv.Len() != 2 {
		t.Errorf("history length = %d, want 2", conv.Len())
	}
}

func TestEngineFullPipeline(t *testing.T) {
	engine, completions, retriever := newTestEngine(t)
	conv := qa.NewConversation()

	question := "When is the election commission formed?"
	cleaned := "What does the constitution state about the formation of the election commission?"
	grounding := "The Election Commission is formed two weeks before elections."
	finalAnswer := "It is formed two weeks before elections (see Election Commission section)."

	var synthMessages []llm.Message
	gomock.InOrder(
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"answer": "", "can_answer_from_system_info": false}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"cleaned_question": "`+cleaned+`", "section_name": "Election Commission"}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
				synthMessages = messages
				return finalAnswer, nil
			}),
	)
	retriever.EXPECT().
		Retrieve(gomock.Any(), cleaned, "Election Commission").
		Return(grounding, nil)

	answer, err := engine.Answer(context.Background(), conv, question)
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if answer != finalAnswer {
		t.Errorf("Answer() = %q, want %q", answer, finalAnswer)
	}
	if conv.Topic() != "Election Commission" {
		t.Errorf("Topic() = %q, want %q", conv.Topic(), "Election Commission")
	}

	// The synthesizer prompt carries the cleaned question and the grounding.
	if len(synthMessages) == 0 {
		t.Fatal("synthesizer was never called")
	}
	userMsg := synthMessages[len(synthMessages)-1]
	if userMsg.Role != llm.RoleUser {
		t.Fatalf("last synthesizer message role = %q, want user", userMsg.Role)
	}
	if !strings.Contains(userMsg.Content, cleaned) {
		t.Errorf("synthesizer prompt missing the cleaned question")
	}
	if !strings.Contains(userMsg.Content, grounding) {
		t.Errorf("synthesizer prompt missing the grounding text")
	}

	// History records the original question, not the rewritten one.
	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Content != question {
		t.Errorf("recorded question = %q, want the original question", history[0].Content)
	}
}

func TestEngineEmptyGroundingStillSynthesizes(t *testing.T) {
	engine, completions, retriever := newTestEngine(t)
	conv := qa.NewConversation()

	var synthPrompt string
	gomock.InOrder(
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"answer": "", "can_answer_from_system_info": false}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"cleaned_question": "What does the constitution state about parking?", "section_name": "General"}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
				synthPrompt = messages[len(messages)-1].Content
				return refusalSentence, nil
			}),
	)
	retriever.EXPECT().
		Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", nil)

	answer, err := engine.Answer(context.Background(), conv, "Where can I park?")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if answer != refusalSentence {
		t.Errorf("Answer() = %q, want the refusal sentence", answer)
	}
	if synthPrompt == "" {
		t.Fatal("synthesizer was never called")
	}
	if !strings.Contains(synthPrompt, "Context from database:") {
		t.Errorf("synthesizer prompt missing the context block")
	}
}

func TestEngineCoercesBlankSynthesizerReply(t *testing.T) {
	engine, completions, retriever := newTestEngine(t)
	conv := qa.NewConversation()

	gomock.InOrder(
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"answer": "", "can_answer_from_system_info": false}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"cleaned_question": "What does the constitution state about clubs?", "section_name": "Clubs"}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("  \n ", nil),
	)
	retriever.EXPECT().
		Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("some context", nil)

	answer, err := engine.Answer(context.Background(), conv, "Tell me about clubs")
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if answer != refusalSentence {
		t.Errorf("Answer() = %q, want the refusal sentence for a blank reply", answer)
	}
}

func TestEngineMalformedModelOutput(t *testing.T) {
	tests := []struct {
		name   string
		router string
	}{
		{
			name:   "not JSON at all",
			router: "Sure! The answer is 42.",
		},
		{
			name:   "missing required field",
			router: `{"answer": "something"}`,
		},
		{
			name:   "unknown extra field",
			router: `{"answer": "x", "can_answer_from_system_info": false, "confidence": 0.9}`,
		},
		{
			name:   "null required field",
			router: `{"answer": null, "can_answer_from_system_info": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, completions, _ := newTestEngine(t)
			conv := qa.NewConversation()

			completions.EXPECT().
				ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(tt.router, nil)

			_, err := engine.Answer(context.Background(), conv, "Who are you?")
			if !errors.Is(err, qa.ErrMalformedModelOutput) {
				t.Fatalf("Answer() error = %v, want ErrMalformedModelOutput", err)
			}
			if conv.Len() != 0 {
				t.Errorf("failed turn mutated history: Len() = %d, want 0", conv.Len())
			}
		})
	}
}

func TestEngineMalformedNormalizerOutput(t *testing.T) {
	engine, completions, _ := newTestEngine(t)
	conv := qa.NewConversation()

	gomock.InOrder(
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"answer": "", "can_answer_from_system_info": false}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"cleaned_question": "what about clubs"}`, nil),
	)

	_, err := engine.Answer(context.Background(), conv, "clubs?")
	if !errors.Is(err, qa.ErrMalformedModelOutput) {
		t.Fatalf("Answer() error = %v, want ErrMalformedModelOutput", err)
	}
	if conv.Len() != 0 {
		t.Errorf("failed turn mutated history: Len() = %d, want 0", conv.Len())
	}
}

func TestEngineGatewayUnavailable(t *testing.T) {
	engine, completions, _ := newTestEngine(t)
	conv := qa.NewConversation()

	completions.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("connection refused"))

	_, err := engine.Answer(context.Background(), conv, "Who are you?")
	if !errors.Is(err, qa.ErrGatewayUnavailable) {
		t.Fatalf("Answer() error = %v, want ErrGatewayUnavailable", err)
	}
	if conv.Len() != 0 {
		t.Errorf("failed turn mutated history: Len() = %d, want 0", conv.Len())
	}
}

func TestEngineRetrieverErrorLeavesHistoryUntouched(t *testing.T) {
	engine, completions, retriever := newTestEngine(t)
	conv := qa.NewConversation()

	gomock.InOrder(
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"answer": "", "can_answer_from_system_info": false}`, nil),
		completions.EXPECT().
			ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"cleaned_question": "What does the constitution state about clubs?", "section_name": "Clubs"}`, nil),
	)
	wantErr := errors.New("qdrant down")
	retriever.EXPECT().
		Retrieve(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", wantErr)

	_, err := engine.Answer(context.Background(), conv, "clubs?")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Answer() error = %v, want wrapped retriever error", err)
	}
	if conv.Len() != 0 {
		t.Errorf("failed turn mutated history: Len() = %d, want 0", conv.Len())
	}
}

func TestEngineThreadsHistoryIntoEveryCall(t *testing.T) {
	engine, completions, _ := newTestEngine(t)
	conv := qa.NewConversation()

	// First turn answers from the fact table and seeds the history.
	completions.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(`{"answer": "BITSy", "can_answer_from_system_info": true}`, nil)
	if _, err := engine.Answer(context.Background(), conv, "What is your name?"); err != nil {
		t.Fatalf("first turn failed: %v", err)
	}

	// Second turn must see [system] + prior two messages + [user].
	completions.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			if len(messages) != 4 {
				t.Errorf("router got %d messages, want 4", len(messages))
			}
			if messages[0].Role != llm.RoleSystem {
				t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
			}
			if messages[1].Content != "What is your name?" || messages[2].Content != "BITSy" {
				t.Errorf("history not threaded in order: %+v", messages[1:3])
			}
			if messages[3].Role != llm.RoleUser {
				t.Errorf("messages[3].Role = %q, want user", messages[3].Role)
			}
			return `{"answer": "Nanduri Anirudh", "can_answer_from_system_info": true}`, nil
		})
	if _, err := engine.Answer(context.Background(), conv, "Who made you?"); err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
}
