package service

import (
	"context"
	"errors"
	"log"
	"time"

	"community-platform/backend/internal/auth/domain"
	userdomain "community-platform/backend/internal/user/domain"
)

// EnsureProvisioned makes sure the principal behind sessionToken has a local
// user row, creating one from principal attributes when missing. Idempotent:
// an existing row is returned as-is, and a unique-violation race resolves by
// re-reading the winner. Backs the OAuth completion callback and closes the
// provider-created-but-never-provisioned gap left by a failed registration.
func (s *Service) EnsureProvisioned(ctx context.Context, sessionToken string) (*userdomain.User, error) {
	principal, err := s.provider.CurrentPrincipal(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.users.GetByClerkID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &userdomain.User{
		ID:        s.ids(),
		ClerkID:   principal.ID,
		Firstname: principal.Firstname,
		Lastname:  principal.Lastname,
		Image:     principal.ImageURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userdomain.ErrClerkIDTaken) {
			// Lost the race to a concurrent provisioning; the winner's row is authoritative.
			return s.users.GetByClerkID(ctx, principal.ID)
		}
		log.Printf("reconcile: provisioning clerk id %s: %v", principal.ID, err)
		return nil, err
	}

	s.auditEvent(ctx, user.ID, "reconcile_provisioned", "user", "clerk_id="+principal.ID)
	log.Printf("reconcile: provisioned user %s for clerk id %s", user.ID, principal.ID)
	return user, nil
}

// CompleteOAuth finishes an OAuth flow. The provider has already activated
// the session by the time its redirect lands on the callback, so all that is
// left is provisioning the local user, minting a platform session, and
// deciding the route.
func (s *Service) CompleteOAuth(ctx context.Context, providerSessionToken string) (*SignInResult, error) {
	if providerSessionToken == "" {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.EnsureProvisioned(ctx, providerSessionToken)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Issue(ctx, providerSessionToken, user.ID)
	if err != nil {
		log.Printf("oauth: issuing platform session for user %s: %v", user.ID, err)
		return nil, err
	}

	route, err := s.RouteFor(ctx, user.ID)
	if err != nil {
		log.Printf("oauth: routing decision for user %s: %v", user.ID, err)
		return nil, err
	}

	s.auditEvent(ctx, user.ID, "oauth_complete", "session", "")

	return &SignInResult{UserID: user.ID, SessionToken: token, Route: route}, nil
}
