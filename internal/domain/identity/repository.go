package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByIDs returns the users that exist among ids.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}

// RefreshTokenStore keeps issued refresh tokens until they expire or are
// revoked. Implementations must honor ttl.
type RefreshTokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	// Revoke deletes the token and reports whether it was present.
	Revoke(ctx context.Context, token string) (bool, error)
}
