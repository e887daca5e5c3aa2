package context

import (
	"context"
)

const contextKeyActor = contextKey("actor")

// ActorFromContext extracts the ID of the acting user from the context.
// Returns the user ID and true if present, or empty string and false if not present.
func ActorFromContext(ctx context.Context) (string, bool) {
	actor, ok := ctx.Value(contextKeyActor).(string)

	return actor, ok
}

// WithActor creates a new context carrying the ID of the logged-in user.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyActor, userID)
}
