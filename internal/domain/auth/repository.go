// Package auth provides authentication and authorization domain logic.
package auth

import (
	"context"
	"time"

	"gelateria/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByVerificationToken retrieves user by hashed verification token,
	// provided the token has not expired by now.
	GetByVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	// GetByResetToken retrieves user by hashed reset token,
	// provided the token has not expired by now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	// Update updates user data.
	Update(ctx context.Context, user *User) error

	// List retrieves users with filtering.
	List(ctx context.Context, filter UserFilter) ([]User, int, error)

	// ExistsByEmail checks if email is taken (case-insensitive).
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByRole checks if any user carries the role.
	ExistsByRole(ctx context.Context, role Role) (bool, error)
}

// UserFilter for listing users.
type UserFilter struct {
	Search string
	Role   Role
	Page   int
	Limit  int
}
