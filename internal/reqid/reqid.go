// Package reqid propagates a per-request correlation ID through contexts.
package reqid

import "context"

type ctxKey struct{}

// NewContext returns a context carrying the request ID.
func NewContext(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID, if one was attached.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
