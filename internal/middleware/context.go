package middleware

import (
	"context"

	"github.com/google/uuid"
)

// Actor is the authenticated workspace attached to every request past auth.
type Actor struct {
	WorkspaceID   uuid.UUID
	WorkspaceSlug string
	WorkspaceName string
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actorKey     contextKey = "actor"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	v, ok := ctx.Value(requestIDKey).(string)
	if !ok {
		return ""
	}
	return v
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	v, ok := ctx.Value(actorKey).(Actor)
	return v, ok
}
