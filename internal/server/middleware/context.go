package middleware

import "context"

type contextKey struct{ name string }

var (
	requestIDKey       = contextKey{"request_id"}
	clientIPKey        = contextKey{"client_ip"}
	userIDKey          = contextKey{"user_id"}
	providerSessionKey = contextKey{"provider_session"}
	sessionTokenKey    = contextKey{"session_token"}
)

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id from context and true if set; otherwise "", false.
func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok
}

// WithClientIP returns a context carrying the client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client IP from context, or "" if not set.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// WithIdentity returns a context with the resolved platform identity set:
// the local user id, the bound provider session id, and the raw platform token.
func WithIdentity(ctx context.Context, userID, providerSessionID, token string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, providerSessionKey, providerSessionID)
	ctx = context.WithValue(ctx, sessionTokenKey, token)
	return ctx
}

// GetUserID returns the user id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetProviderSession returns the provider session id from context and true if set; otherwise "", false.
func GetProviderSession(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(providerSessionKey).(string)
	return v, ok
}

// GetSessionToken returns the raw platform session token from context and true if set; otherwise "", false.
func GetSessionToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionTokenKey).(string)
	return v, ok
}
