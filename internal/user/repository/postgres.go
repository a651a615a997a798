package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"community-platform/backend/internal/user/domain"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, clerk_id, firstname, lastname, image, created_at FROM users WHERE id = $1`, id)
}

// GetByClerkID returns the user with the given external identity id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, clerk_id, firstname, lastname, image, created_at FROM users WHERE clerk_id = $1`, clerkID)
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
// A unique violation on clerk_id is reported as domain.ErrClerkIDTaken.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, clerk_id, firstname, lastname, image, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.ClerkID, u.Firstname, u.Lastname, u.Image, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrClerkIDTaken
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) get(ctx context.Context, query, arg string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.ClerkID, &u.Firstname, &u.Lastname, &u.Image, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
