package logging

import (
	"context"

	"go.uber.org/zap"
)

// RequestIDField is the log field carrying the request id.
const RequestIDField = "request_id"

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns log tagged with the request id in ctx, if any.
func FromContext(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return log.With(zap.String(RequestIDField, id))
	}
	return log
}
