package repository

import (
	"context"

	"community-platform/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error)
	// Create persists the user. Returns domain.ErrClerkIDTaken when a row with the
	// same clerk id already exists; creation is at-most-once per clerk id.
	Create(ctx context.Context, u *domain.User) error
}
