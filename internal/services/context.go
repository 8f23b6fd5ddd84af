package services

import "context"

type contextKey string

const tokenContextKey contextKey = "session_token"

// WithToken attaches the session token to the context. The token is the
// explicit session handle threaded through every core call; there is no
// ambient global session state.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the session token, or "" when the caller carries
// no session.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
