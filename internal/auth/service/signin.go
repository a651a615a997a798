package service

import (
	"context"
	"log"

	"community-platform/backend/internal/auth/domain"
	"community-platform/backend/internal/idp"
)

// SignInResult is the outcome of a completed sign-in: the local user, a
// platform session token, and the routing decision.
type SignInResult struct {
	UserID       string
	SessionToken string
	Route        Route
}

// SignIn authenticates email/password with the provider. The session is
// activated only when the provider reports the attempt exactly complete;
// incomplete attempts (e.g. an additional factor required) are retryable.
//
// A successfully authenticated principal without a local user row is a
// data-inconsistency signal, not a credential error. One idempotent
// reconciliation attempt runs before giving up so a previously failed
// provisioning heals on the next login.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	attempt, err := s.provider.CreateCredentialSession(ctx, email, password)
	if err != nil {
		s.auditEvent(ctx, "", "sign_in_failure", "session", "rejected")
		return nil, classifyProviderError("create credential session", err)
	}
	if attempt.Status != idp.StatusComplete {
		return nil, domain.ErrAuthenticationIncomplete
	}

	if err := s.provider.ActivateSession(ctx, attempt.SessionID); err != nil {
		log.Printf("sign-in: activating session for clerk id %s: %v", attempt.UserID, err)
		return nil, err
	}

	user, err := s.users.GetByClerkID(ctx, attempt.UserID)
	if err != nil {
		log.Printf("sign-in: directory lookup for clerk id %s: %v", attempt.UserID, err)
		return nil, err
	}
	if user == nil {
		log.Printf("sign-in: principal %s authenticated but has no local user row, attempting reconciliation", attempt.UserID)
		user, err = s.EnsureProvisioned(ctx, attempt.SessionID)
		if err != nil {
			s.auditEvent(ctx, "", "sign_in_failure", "user", "clerk_id="+attempt.UserID+" unprovisioned")
			return nil, domain.ErrUserNotFound
		}
	}

	token, err := s.sessions.Issue(ctx, attempt.SessionID, user.ID)
	if err != nil {
		log.Printf("sign-in: issuing platform session for user %s: %v", user.ID, err)
		return nil, err
	}

	route, err := s.RouteFor(ctx, user.ID)
	if err != nil {
		log.Printf("sign-in: routing decision for user %s: %v", user.ID, err)
		return nil, err
	}

	s.auditEvent(ctx, user.ID, "sign_in_success", "session", "")

	return &SignInResult{UserID: user.ID, SessionToken: token, Route: route}, nil
}

// Logout revokes the platform session token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}
