package auth

import "context"

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, if any
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(contextKey{}).(int64)
	return id, ok && id > 0
}
