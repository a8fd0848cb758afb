package user

import (
	"context"
	"time"
)

// Repository is the user directory the front-end signs users in against
type Repository interface {
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// TouchLogin records the last successful sign-in time
	TouchLogin(ctx context.Context, email string, at time.Time) error
}
