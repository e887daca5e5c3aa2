package logging

import (
	"context"
	"log/slog"

	context_ "github.com/mkrupp/homecase-shop/internal/infra/context"
)

// SessionHandler wraps another slog.Handler to add the session ID and the acting
// user from the context to all log records.
type SessionHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*SessionHandler)(nil)

// NewSessionHandler creates a new SessionHandler wrapping the given handler.
func NewSessionHandler(h slog.Handler) *SessionHandler {
	return &SessionHandler{h: h}
}

// Handle implements slog.Handler.
func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	var attrs []any

	if sessionID, ok := context_.SessionIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String("id", sessionID))
	}

	if actor, ok := context_.ActorFromContext(ctx); ok {
		attrs = append(attrs, slog.String("actor", actor))
	}

	if len(attrs) > 0 {
		r.AddAttrs(slog.Group("session", attrs...))
	}

	//nolint:wrapcheck
	return h.h.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *SessionHandler) WithAttrs(attrs []slog.Attr) Handler {
	return NewSessionHandler(h.h.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.WithGroup.
func (h *SessionHandler) WithGroup(name string) Handler {
	return NewSessionHandler(h.h.WithGroup(name))
}

// Enabled implements slog.Handler.Enabled.
func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}
