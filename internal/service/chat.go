package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService constitution-qa/internal/service ChatService

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/qa"
)

// AskRequest represents a chat request in the domain layer. An empty
// SessionID starts a new conversation.
type AskRequest struct {
	SessionID string
	Question  string `validate:"required"`
}

// AskResponse carries the answer and the session handle the caller must
// present on follow-up turns to keep conversation history.
type AskResponse struct {
	SessionID string
	Answer    string
}

// ChatService is the caller-facing surface: submit one question string,
// receive one answer string, with history preserved per session.
type ChatService interface {
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// session owns one conversation. The per-session mutex serializes turns so a
// client re-using a session concurrently cannot interleave history mutation.
type session struct {
	mu   sync.Mutex
	conv *qa.Conversation
}

// chatService implements ChatService over the QA engine. Sessions live in
// memory for the process lifetime; there is deliberately no persistence.
type chatService struct {
	engine qa.Engine

	mu       sync.Mutex
	sessions map[string]*session
}

// NewChatService creates a new ChatService.
func NewChatService(engine qa.Engine) ChatService {
	return &chatService{
		engine:   engine,
		sessions: make(map[string]*session),
	}
}

// Ask answers one question within the request's session.
func (s *chatService) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in chat request")
		return AskResponse{}, &ValidationError{
			Field:   "question",
			Message: "cannot be empty",
		}
	}

	sessionID, sess, err := s.resolveSession(req.SessionID)
	if err != nil {
		logger.WarnContext(ctx, "unknown session", "session_id", req.SessionID)
		return AskResponse{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	answer, err := s.engine.Answer(ctx, sess.conv, req.Question)
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer question", "session_id", sessionID, "error", err)
		return AskResponse{}, WrapError(err, "failed to answer question")
	}

	logger.InfoContext(ctx, "question answered",
		"session_id", sessionID,
		"question_length", len(req.Question),
		"answer_length", len(answer),
		"history_len", sess.conv.Len(),
	)

	return AskResponse{
		SessionID: sessionID,
		Answer:    answer,
	}, nil
}

// resolveSession returns the existing session for an ID, or creates a fresh
// one when the ID is empty. Unknown IDs are an error: silently recreating a
// session would drop the history the client believes it has.
func (s *chatService) resolveSession(id string) (string, *session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
		sess := &session{conv: qa.NewConversation()}
		s.sessions[id] = sess
		return id, sess, nil
	}

	sess, ok := s.sessions[id]
	if !ok {
		return "", nil, ErrSessionNotFound
	}
	return id, sess, nil
}
