package repository

import (
	"context"

	"community-platform/backend/internal/group/domain"
)

// Repository defines read-only access to groups and channels for routing.
// This service never mutates groups or channels.
type Repository interface {
	// FirstGroupByUser returns the user's earliest-created group, or nil if the user has none.
	FirstGroupByUser(ctx context.Context, userID string) (*domain.Group, error)
	// FirstChannelByGroup returns the group's earliest-created channel, or nil if the group has none.
	FirstChannelByGroup(ctx context.Context, groupID string) (*domain.Channel, error)
}
