// Package assistant implements the chat assistant core: the per-request
// RunContext, the result cache, the schema-validated tool registry, and
// the tool-calling loop over an LLM provider.
package assistant

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

// SessionResolver resolves request headers to a session. It never fails;
// nil means anonymous.
type SessionResolver interface {
	Resolve(headers http.Header) *models.Session
}

// RunContext is the per-chat-request bundle threaded through every tool
// invocation: the resolved session, the result cache, and a request id.
// It is shared by reference across all tool calls of one request and
// discarded when the request completes.
type RunContext struct {
	// Session is the resolved authentication state; nil means anonymous.
	Session *models.Session

	// Headers enables lazy session resolution when Session is unset.
	Headers http.Header

	// Cache memoizes loader results within this request. Nil disables
	// caching.
	Cache map[string]any

	// RequestID identifies this chat request in logs.
	RequestID string

	resolver SessionResolver
	resolved bool
}

// NewRunContext creates a RunContext with a fresh cache and request id.
// session may be nil; resolver may be nil if no lazy resolution is wanted.
func NewRunContext(session *models.Session, headers http.Header, resolver SessionResolver) *RunContext {
	return &RunContext{
		Session:   session,
		Headers:   headers,
		Cache:     map[string]any{},
		RequestID: uuid.NewString(),
		resolver:  resolver,
		resolved:  session != nil,
	}
}

// ResolveSession returns the session for this request, lazily resolving it
// from the headers at most once. Nil means anonymous.
func (rc *RunContext) ResolveSession() *models.Session {
	if rc == nil {
		return nil
	}
	if rc.Session == nil && !rc.resolved && rc.resolver != nil && rc.Headers != nil {
		rc.Session = rc.resolver.Resolve(rc.Headers)
	}
	rc.resolved = true
	return rc.Session
}

// RequireSession returns the session, or a tagged auth-required result
// when the request is anonymous. Tools call this before any restricted
// read or mutation; the error is a value so the orchestrator can hand the
// model a structured failure instead of crashing the stream.
func RequireSession(rc *RunContext) (*models.Session, *ToolResult) {
	session := rc.ResolveSession()
	if session == nil || session.User.ID == "" {
		return nil, errResult(ErrAuthRequired)
	}
	return session, nil
}
