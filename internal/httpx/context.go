package httpx

import (
	"context"
	"net/http"

	"bookscape/internal/logging"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithRequestID stores the request ID for handlers and for log lines.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = logging.WithRequestID(ctx, requestID)
	return context.WithValue(ctx, requestIDKey, requestID)
}
