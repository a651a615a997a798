// Package server assembles the HTTP API: routes, middleware chain, and the
// handlers behind them.
package server

import (
	"encoding/json"
	"net/http"

	audithandler "community-platform/backend/internal/audit/handler"
	authhandler "community-platform/backend/internal/auth/handler"
	healthhandler "community-platform/backend/internal/health/handler"
	devidp "community-platform/backend/internal/idp/dev"
	"community-platform/backend/internal/server/middleware"
)

// Deps holds the dependencies the router wires into handlers.
type Deps struct {
	// Auth serves the sign-up, sign-in, gate, and callback endpoints.
	Auth *authhandler.AuthHandler
	// Sessions resolves platform session tokens for the auth middleware.
	Sessions middleware.SessionResolver
	// HealthPinger is used for readiness (e.g. *sql.DB). If nil, the health check skips the DB ping.
	HealthPinger healthhandler.Pinger
	// DevProvider exposes pending sign-up codes on a dev-only endpoint. Set
	// only when the dev identity provider is enabled and not production.
	DevProvider *devidp.Provider
	// Audit serves the audit review endpoint. If nil, the route is not registered.
	Audit *audithandler.Handler
}

// NewRouter builds the full route table wrapped in the middleware chain:
// request context, access logging, tracing, then session resolution.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthz", healthhandler.New(deps.HealthPinger).Check)

	if deps.Auth != nil {
		mux.HandleFunc("POST /api/auth/sign-up", deps.Auth.SignUp)
		mux.HandleFunc("POST /api/auth/sign-up/verify", deps.Auth.VerifySignUp)
		mux.HandleFunc("POST /api/auth/sign-in", deps.Auth.SignIn)
		mux.HandleFunc("POST /api/auth/logout", deps.Auth.Logout)
		mux.HandleFunc("GET /api/auth/me", deps.Auth.Me)
		mux.HandleFunc("GET /api/auth/oauth/{strategy}", deps.Auth.OAuth)
		mux.HandleFunc("GET /api/callback/sign-in", deps.Auth.SignInCallback)
		mux.HandleFunc("GET /api/callback/complete", deps.Auth.CompleteCallback)
	}

	if deps.Audit != nil {
		mux.HandleFunc("GET /api/audit/recent", deps.Audit.Recent)
	}

	if deps.DevProvider != nil {
		mux.HandleFunc("GET /api/dev/sign-up-code", devSignUpCode(deps.DevProvider))
	}

	var h http.Handler = mux
	if deps.Sessions != nil {
		h = middleware.Auth(deps.Sessions)(h)
	}
	h = middleware.Telemetry(h)
	h = middleware.Logging(h)
	h = middleware.RequestContext(h)
	return h
}

// devSignUpCode returns the pending verification code for a sign-up, so local
// flows can complete without a mail sink. Registered only with the dev provider.
func devSignUpCode(provider *devidp.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signUpID := r.URL.Query().Get("sign_up_id")
		code, ok := provider.Code(signUpID)
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "no pending sign-up"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"sign_up_id": signUpID, "code": code})
	}
}
