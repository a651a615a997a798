package domain

import (
	"errors"
	"time"
)

// ErrClerkIDTaken is returned when a user with the same external identity id already exists.
// The clerk_id column carries a unique constraint, so concurrent provisioning attempts for
// the same identity yield exactly one row.
var ErrClerkIDTaken = errors.New("user with this clerk id already exists")

// User is the local user record. It exists if and only if registration completed with the
// identity provider; ClerkID is the sole join key to the provider's identity and is
// immutable after creation.
type User struct {
	ID        string
	ClerkID   string
	Firstname string
	Lastname  string
	Image     string
	CreatedAt time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.ClerkID == "" {
		return errors.New("clerk id is required")
	}
	return nil
}
