package repository

import (
	"context"
	"database/sql"
	"errors"

	"community-platform/backend/internal/group/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a group repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FirstGroupByUser returns the user's earliest-created group, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FirstGroupByUser(ctx context.Context, userID string) (*domain.Group, error) {
	var g domain.Group
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM groups WHERE user_id = $1 ORDER BY created_at ASC LIMIT 1`,
		userID,
	).Scan(&g.ID, &g.UserID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// FirstChannelByGroup returns the group's earliest-created channel, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FirstChannelByGroup(ctx context.Context, groupID string) (*domain.Channel, error) {
	var c domain.Channel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, created_at FROM channels WHERE group_id = $1 ORDER BY created_at ASC LIMIT 1`,
		groupID,
	).Scan(&c.ID, &c.GroupID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
