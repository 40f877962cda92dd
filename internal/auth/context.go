package auth

import (
	"context"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

type sessionContextKey struct{}

// WithSession attaches a resolved session to the context.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext retrieves a session from the context.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*models.Session)
	return session, ok
}
