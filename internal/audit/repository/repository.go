package repository

import (
	"context"

	"community-platform/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListRecent returns audit logs newest first, paginated by limit and offset.
	ListRecent(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error)
}
