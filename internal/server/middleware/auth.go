package middleware

import (
	"context"
	"net/http"
	"strings"
)

const bearerPrefix = "bearer "

// SessionResolver validates a platform session token and returns the bound
// provider session id and user id. Implemented by session.Manager.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (providerSessionID, userID string, err error)
}

// Auth resolves the caller's platform session from the Authorization header or
// the session_id cookie and, when valid, sets the identity in context. It
// never rejects the request: flows classify a missing principal themselves
// (the gate reports it as not-found, not as unauthorized).
func Auth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token != "" {
				if providerSessionID, userID, err := sessions.Resolve(r.Context(), token); err == nil {
					ctx := WithIdentity(r.Context(), userID, providerSessionID, token)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken returns the platform session token from the Authorization
// Bearer header, falling back to the session_id cookie; "" if neither is set.
func extractToken(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(v[len(bearerPrefix):])
	}
	if c, err := r.Cookie("session_id"); err == nil {
		return c.Value
	}
	return ""
}
