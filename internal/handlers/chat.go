package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/qa"
	"constitution-qa/internal/service"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Question  string `json:"question"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	// AnswerHTML is the answer rendered from markdown, for web clients.
	AnswerHTML string `json:"answer_html,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcResp, err := h.chatService.Ask(ctx, service.AskRequest{
		SessionID: req.SessionID,
		Question:  req.Question,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := ChatResponse{
		SessionID: svcResp.SessionID,
		Answer:    svcResp.Answer,
	}

	// Answers are markdown; render for web clients. Rendering failure is not
	// fatal, the plain answer is still usable.
	html, err := RenderMarkdown(svcResp.Answer)
	if err != nil {
		logger.WarnContext(ctx, "failed to render answer markdown", "error", err)
	} else {
		resp.AnswerHTML = html
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleServiceError maps service and pipeline errors to HTTP status codes.
// Internal error detail is never surfaced verbatim to the end user.
func (h *ChatHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Unknown session")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, qa.ErrMalformedModelOutput):
		writeError(w, http.StatusBadGateway, "The assistant returned an unreadable response. Please try again.")
	case errors.Is(err, qa.ErrGatewayUnavailable):
		writeError(w, http.StatusBadGateway, "A backend service is unavailable. Please try again.")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process chat request")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
