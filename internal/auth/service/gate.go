package service

import (
	"context"
	"log"
	"strings"

	"community-platform/backend/internal/auth/domain"
)

// CurrentUser is the gate's view of the authenticated caller.
type CurrentUser struct {
	ID       string
	Image    string
	Username string
}

// ResolveCurrentUser cross-references the provider's principal for the given
// session token against the user directory. Idempotent and side-effect-free;
// safe to call repeatedly and concurrently.
//
// Returns domain.ErrUserNotFound when no principal resolves, and
// domain.ErrUserNotProvisioned when a principal exists upstream but the local
// user row is missing. Unexpected failures are logged in full and returned as
// an opaque error for the handler to classify as internal.
func (s *Service) ResolveCurrentUser(ctx context.Context, sessionToken string) (*CurrentUser, error) {
	principal, err := s.provider.CurrentPrincipal(ctx, sessionToken)
	if err != nil {
		log.Printf("auth gate: resolving principal: %v", err)
		return nil, err
	}
	if principal == nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.users.GetByClerkID(ctx, principal.ID)
	if err != nil {
		log.Printf("auth gate: directory lookup for clerk id %s: %v", principal.ID, err)
		return nil, err
	}
	if user == nil {
		log.Printf("auth gate: principal %s has no local user row", principal.ID)
		return nil, domain.ErrUserNotProvisioned
	}

	return &CurrentUser{
		ID:       user.ID,
		Image:    principal.ImageURL,
		Username: strings.TrimSpace(user.Firstname + " " + user.Lastname),
	}, nil
}

// ResolveUserByID serves the gate from a platform session when the request
// carries no provider session. The local row is authoritative here, so Image
// comes from the stored user rather than a provider principal.
//
// Returns domain.ErrUserNotFound when no user row exists for the id.
func (s *Service) ResolveUserByID(ctx context.Context, userID string) (*CurrentUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		log.Printf("auth gate: directory lookup for user %s: %v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return &CurrentUser{
		ID:       user.ID,
		Image:    user.Image,
		Username: strings.TrimSpace(user.Firstname + " " + user.Lastname),
	}, nil
}
