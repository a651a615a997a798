// Package service implements the auth flows: the authentication gate, the
// two-phase registration state machine, sign-in, the routing decision, and
// OAuth reconciliation. External systems (identity provider, user directory,
// session store) are injected capabilities so the flows are testable with fakes.
package service

import (
	"context"

	groupdomain "community-platform/backend/internal/group/domain"
	"community-platform/backend/internal/idp"
	userdomain "community-platform/backend/internal/user/domain"
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// GroupRepo is the minimal group repository needed by the routing decision.
type GroupRepo interface {
	FirstGroupByUser(ctx context.Context, userID string) (*groupdomain.Group, error)
	FirstChannelByGroup(ctx context.Context, groupID string) (*groupdomain.Channel, error)
}

// SessionIssuer mints and revokes platform session tokens bound to a provider session.
type SessionIssuer interface {
	Issue(ctx context.Context, providerSessionID, userID string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// AuditLogger records auth events. Best-effort; implementations must not fail the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Service orchestrates the identity provider and the user directory.
type Service struct {
	provider idp.Provider
	users    UserRepo
	groups   GroupRepo
	sessions SessionIssuer
	audit    AuditLogger
	ids      func() string
}

// New returns a Service with the given dependencies. audit may be nil.
func New(provider idp.Provider, users UserRepo, groups GroupRepo, sessions SessionIssuer, audit AuditLogger) *Service {
	return &Service{
		provider: provider,
		users:    users,
		groups:   groups,
		sessions: sessions,
		audit:    audit,
		ids:      newID,
	}
}

func (s *Service) auditEvent(ctx context.Context, userID, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, action, resource, metadata)
	}
}
