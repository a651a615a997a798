// Package idp defines the identity-provider capability consumed by the auth flows.
// Two implementations exist: idp/clerk (hosted provider over HTTP) and idp/dev
// (in-process provider for local development).
package idp

import (
	"context"
	"fmt"
)

// AttemptStatus classifies the provider's view of a sign-in or sign-up attempt.
// Flows only proceed on StatusComplete; anything else is retryable by the caller.
type AttemptStatus string

const (
	StatusComplete          AttemptStatus = "complete"
	StatusNeedsVerification AttemptStatus = "needs_verification"
	StatusIncomplete        AttemptStatus = "incomplete"
)

// OAuthStrategy names a provider-side OAuth strategy (e.g. "oauth_google").
type OAuthStrategy string

const StrategyGoogle OAuthStrategy = "oauth_google"

// Principal is the provider's notion of the currently authenticated caller.
// Ephemeral, supplied per request; not owned by this system.
type Principal struct {
	ID        string
	Email     string
	Firstname string
	Lastname  string
	ImageURL  string
}

// SignInAttempt is the provider's response to a credential sign-in.
type SignInAttempt struct {
	Status    AttemptStatus
	SessionID string
	// UserID is the provider-side identity of the authenticated user; set when Status is complete.
	UserID string
}

// SignUpAttempt is the provider's response to account pre-creation or code verification.
type SignUpAttempt struct {
	SignUpID string
	Status   AttemptStatus
	// CreatedUserID is the provider-side identity created by a completed verification.
	CreatedUserID string
	SessionID     string
}

// Error is a provider rejection. Message is the only field that may be surfaced
// to end users; Code is for logs and branching.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("idp: %s (%s)", e.Message, e.Code)
}

// Provider is the identity-provider capability. All methods suspend on network
// I/O only; implementations must be safe for concurrent use.
type Provider interface {
	// CurrentPrincipal resolves the principal for a provider session token.
	// Returns (nil, nil) when no principal exists for the token.
	CurrentPrincipal(ctx context.Context, sessionToken string) (*Principal, error)
	// CreateCredentialSession authenticates identifier/password.
	CreateCredentialSession(ctx context.Context, identifier, password string) (*SignInAttempt, error)
	// ActivateSession marks the provider session active.
	ActivateSession(ctx context.Context, sessionID string) error
	// PreCreateAccount starts registration with the provider; the account is not
	// usable until code verification completes.
	PreCreateAccount(ctx context.Context, email, password string) (*SignUpAttempt, error)
	// RequestCodeChallenge asks the provider to send a verification code for the pending sign-up.
	RequestCodeChallenge(ctx context.Context, signUpID string) error
	// AttemptCodeVerification submits the emailed code for the pending sign-up.
	AttemptCodeVerification(ctx context.Context, signUpID, code string) (*SignUpAttempt, error)
	// OAuthRedirectURL builds the provider redirect for the given OAuth strategy.
	OAuthRedirectURL(strategy OAuthStrategy, redirectURL, redirectURLComplete string) (string, error)
}
