// Package identity resolves the authenticated caller for the current
// request. The caller id is placed on the context once, at the transport
// boundary, and read by every handler.
package identity

import "context"

type ctxKey struct{}

// WithCaller returns a context carrying the authenticated caller's id
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// CallerID returns the caller id from the context and whether one is
// present. An empty id counts as absent.
func CallerID(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id, id != ""
}

// IsAuthenticated reports whether the context carries a caller id
func IsAuthenticated(ctx context.Context) bool {
	_, ok := CallerID(ctx)
	return ok
}
