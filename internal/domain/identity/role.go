package identity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Role tags what a user may do.
type Role string

const (
	RoleCustomer      Role = "customer"
	RolePublisher     Role = "publisher"
	RoleAdministrator Role = "administrator"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RolePublisher, RoleAdministrator:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller of an application operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// NewActor builds an Actor from raw token claims.
func NewActor(userID string, role string) (Actor, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Actor{}, shared.NewDomainError("UNAUTHORIZED", "Invalid user ID in token")
	}
	r := Role(role)
	if !r.IsValid() {
		return Actor{}, shared.NewDomainError("UNAUTHORIZED", "Unknown role in token")
	}
	return Actor{UserID: id, Role: r}, nil
}

// Require fails with FORBIDDEN unless the actor has one of roles.
func (a Actor) Require(action string, roles ...Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return shared.NewDomainError("FORBIDDEN", fmt.Sprintf("Role %s may not %s", a.Role, action))
}

// Is reports whether the actor has the given role.
func (a Actor) Is(role Role) bool {
	return a.Role == role
}
