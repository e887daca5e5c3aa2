package context

import (
	"context"

	"github.com/google/uuid"

	"github.com/mkrupp/homecase-shop/internal/util/encoding"
)

const contextKeySessionID = contextKey("sessionID")

// NewSessionID returns a random session ID: a version 4 UUID in Crockford base32.
func NewSessionID() string {
	id := uuid.New()

	return encoding.Base32(id[:])
}

// SessionIDFromContext extracts the session ID from the context.
// Returns the session ID and true if present, or empty string and false if not present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID).(string)

	return sessionID, ok
}

// WithSessionID creates a new context with the given session ID value.
// Every log line written during one CLI invocation carries the same session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, sessionID)
}
