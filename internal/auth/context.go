package auth

import (
	"context"

	"outreach-service/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	sessionContextKey  contextKey = "session"
	approverContextKey contextKey = "approver"
)

// ContextWithSession adds the signed-in session to the context.
func ContextWithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns nil when no one is signed in.
func SessionFromContext(ctx context.Context) *domain.Session {
	session, ok := ctx.Value(sessionContextKey).(*domain.Session)
	if !ok {
		return nil
	}
	return session
}

// ContextWithApprover marks the request as carrying approver rights.
func ContextWithApprover(ctx context.Context, approver bool) context.Context {
	return context.WithValue(ctx, approverContextKey, approver)
}

// ActorFromContext assembles the explicit actor for privileged operations.
func ActorFromContext(ctx context.Context) domain.Actor {
	approver, _ := ctx.Value(approverContextKey).(bool)
	return domain.Actor{Session: SessionFromContext(ctx), Approver: approver}
}
