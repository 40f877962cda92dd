package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/assistant"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/auth"
)

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatEvent is one line of the NDJSON chat response stream.
type chatEvent struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	Tool       string          `json:"tool,omitempty"`
	ToolResult json.RawMessage `json:"toolResult,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// handleChat runs one assistant turn and streams chunks back as NDJSON.
// The request's session, resolved by the middleware, is attached to a
// fresh RunContext shared by all tool calls of the turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.loop == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages are required")
		return
	}

	messages := make([]assistant.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := m.Role
		if role != assistant.RoleAssistant {
			role = assistant.RoleUser
		}
		messages = append(messages, assistant.Message{Role: role, Content: m.Content})
	}

	session, _ := auth.SessionFromContext(r.Context())
	rc := assistant.NewRunContext(session, r.Header, s.auth)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	emit := func(ev chatEvent) {
		_ = enc.Encode(ev)
		if flusher != nil {
			flusher.Flush()
		}
	}

	for chunk := range s.loop.Run(r.Context(), rc, messages) {
		switch {
		case chunk.Err != nil:
			s.logger.Error("chat turn failed", "request_id", rc.RequestID, "error", chunk.Err)
			emit(chatEvent{Type: "error", Error: "assistant request failed"})
			return
		case chunk.ToolName != "":
			emit(chatEvent{Type: "tool", Tool: chunk.ToolName, ToolResult: chunk.ToolResult})
		case chunk.Text != "":
			emit(chatEvent{Type: "text", Text: chunk.Text})
		}
	}
	emit(chatEvent{Type: "done"})
}
