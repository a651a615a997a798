// Package handler exposes the auth flows over HTTP JSON.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"community-platform/backend/internal/auth/domain"
	"community-platform/backend/internal/auth/service"
	"community-platform/backend/internal/idp"
	"community-platform/backend/internal/server/middleware"
)

// OAuthConfig holds the redirect URLs handed to the identity provider.
type OAuthConfig struct {
	RedirectURL       string
	SignInCompleteURL string
	SignUpCompleteURL string
}

// AuthHandler serves the sign-up, sign-in, gate, and callback endpoints.
type AuthHandler struct {
	svc           *service.Service
	provider      idp.Provider
	oauth         OAuthConfig
	cookieTTL     time.Duration
	secureCookies bool
}

// NewAuthHandler returns an AuthHandler for the given service and provider.
func NewAuthHandler(svc *service.Service, provider idp.Provider, oauth OAuthConfig, cookieTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		provider:      provider,
		oauth:         oauth,
		cookieTTL:     cookieTTL,
		secureCookies: secureCookies,
	}
}

type signUpRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type signUpStartResponse struct {
	Status   int                      `json:"status"`
	SignUpID string                   `json:"signUpId"`
	Phase    domain.RegistrationPhase `json:"phase"`
}

// SignUp starts registration: validates the form, pre-creates the provider
// account, and triggers the emailed code challenge. The returned sign-up id is
// client-held state for the verify step.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteResult(w, &domain.AuthResult{Status: domain.StatusBadRequest, Message: "Invalid request payload"})
		return
	}

	sess, err := h.svc.StartRegistration(r.Context(), service.StartRegistrationInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		WriteResult(w, resultFromError(err))
		return
	}

	WriteJSON(w, signUpStartResponse{Status: domain.StatusOK, SignUpID: sess.SignUpID, Phase: sess.Phase}, http.StatusOK)
}

type verifyRequest struct {
	SignUpID  string `json:"signUpId"`
	Code      string `json:"code"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// VerifySignUp completes registration with the emailed code, provisions the
// local user, activates the session, and routes the new user to group creation.
func (h *AuthHandler) VerifySignUp(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteResult(w, &domain.AuthResult{Status: domain.StatusBadRequest, Message: "Invalid request payload"})
		return
	}

	res, err := h.svc.CompleteRegistration(r.Context(), service.CompleteRegistrationInput{
		SignUpID:  req.SignUpID,
		Code:      req.Code,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		WriteResult(w, resultFromError(err))
		return
	}

	h.setSessionCookie(w, res.SessionToken)
	WriteResult(w, &domain.AuthResult{
		Status:  domain.StatusOK,
		ID:      res.UserID,
		Message: "User successfully created",
	})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn authenticates credentials and returns the routing decision: 200 for
// a fresh user (route to group creation), 207 with group/channel ids otherwise.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteResult(w, &domain.AuthResult{Status: domain.StatusBadRequest, Message: "Invalid request payload"})
		return
	}

	res, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteResult(w, resultFromError(err))
		return
	}

	h.setSessionCookie(w, res.SessionToken)
	WriteResult(w, routedResult(res.UserID, res.Route, "User successfully logged in"))
}

// Logout revokes the platform session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.GetSessionToken(r.Context()); ok {
		if err := h.svc.Logout(r.Context(), token); err != nil {
			WriteResult(w, &domain.AuthResult{Status: domain.StatusInternalError, Error: "Internal server error"})
			return
		}
	}
	h.clearSessionCookie(w)
	WriteResult(w, &domain.AuthResult{Status: domain.StatusOK, Message: "Successfully logged out"})
}

// Me is the authentication gate: it cross-references the provider principal
// for the caller's session against the user directory. A platform session
// without a provider session still answers the gate from the local row.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	providerSession, _ := middleware.GetProviderSession(r.Context())
	user, err := h.svc.ResolveCurrentUser(r.Context(), providerSession)
	if errors.Is(err, domain.ErrUserNotFound) {
		if userID, ok := middleware.GetUserID(r.Context()); ok && userID != "" {
			user, err = h.svc.ResolveUserByID(r.Context(), userID)
		}
	}
	if err != nil {
		WriteResult(w, resultFromError(err))
		return
	}
	WriteResult(w, &domain.AuthResult{
		Status:   domain.StatusOK,
		ID:       user.ID,
		Image:    user.Image,
		Username: user.Username,
	})
}

type oauthResponse struct {
	Status int    `json:"status"`
	URL    string `json:"url"`
}

// OAuth returns the provider redirect URL for the requested strategy. The
// flow query parameter picks the completion destination: sign-in flows finish
// at the sign-in callback, sign-up flows at the complete callback.
func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	strategy := idp.OAuthStrategy(r.PathValue("strategy"))
	complete := h.oauth.SignInCompleteURL
	if r.URL.Query().Get("flow") == "sign-up" {
		complete = h.oauth.SignUpCompleteURL
	}
	url, err := h.provider.OAuthRedirectURL(strategy, h.oauth.RedirectURL, complete)
	if err != nil {
		WriteResult(w, resultFromError(err))
		return
	}
	WriteJSON(w, oauthResponse{Status: domain.StatusOK, URL: url}, http.StatusOK)
}

// SignInCallback finishes an OAuth sign-in: it resolves (and if needed
// reconciles) the local user for the provider session, issues a platform
// session, and returns the routing decision.
func (h *AuthHandler) SignInCallback(w http.ResponseWriter, r *http.Request) {
	h.finishOAuth(w, r, "User successfully logged in")
}

// CompleteCallback finishes an OAuth sign-up: the provider-side identity
// already exists, so the local user is provisioned idempotently and the new
// user is routed like any other fresh sign-in.
func (h *AuthHandler) CompleteCallback(w http.ResponseWriter, r *http.Request) {
	h.finishOAuth(w, r, "User successfully created")
}

func (h *AuthHandler) finishOAuth(w http.ResponseWriter, r *http.Request, message string) {
	providerSession := r.URL.Query().Get("session_token")
	if providerSession == "" {
		providerSession, _ = middleware.GetProviderSession(r.Context())
	}

	res, err := h.svc.CompleteOAuth(r.Context(), providerSession)
	if err != nil {
		WriteResult(w, resultFromError(err))
		return
	}

	h.setSessionCookie(w, res.SessionToken)
	WriteResult(w, routedResult(res.UserID, res.Route, message))
}

// routedResult renders the tri-state routing contract: 207 with group and
// optional channel ids when the user has a group, plain 200 otherwise.
func routedResult(userID string, route service.Route, message string) *domain.AuthResult {
	if route.HasGroup {
		return &domain.AuthResult{
			Status:    domain.StatusPartial,
			ID:        userID,
			GroupID:   route.GroupID,
			ChannelID: route.ChannelID,
		}
	}
	return &domain.AuthResult{Status: domain.StatusOK, ID: userID, Message: message}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
