package common

import "context"

// UserContext identifies the dashboard session behind a request.
type UserContext struct {
	SessionID string
	Email     string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveSessionID returns the session ID from context, or "" when anonymous.
func ResolveSessionID(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.SessionID
	}
	return ""
}
