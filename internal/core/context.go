package core

import (
	"context"

	"github.com/JonMunkholm/explorer/internal/logging"
)

type contextKey string

const ctxKeySessionID contextKey = "session_id"

// ContextWithSessionID attaches the caller's session ID. Loggers taken from
// the returned context include it as session_id.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	ctx = logging.ContextWithAttrs(ctx, "session_id", id)
	return context.WithValue(ctx, ctxKeySessionID, id)
}

// SessionIDFromContext extracts the session ID, or "" if none was set.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}
