package ports

import (
	"context"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// UserRepository persists users and the user-role association.
// Users are returned with their Roles loaded.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns users in insertion order starting at offset.
	List(ctx context.Context, offset, limit int) ([]*domain.User, int64, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	// Delete removes the user and its role associations.
	Delete(ctx context.Context, id string) error

	// AttachRole inserts the (user, role) pair. An existing pair is not an error.
	AttachRole(ctx context.Context, userID, roleID string) error
	// DetachRole removes the pair and reports whether it existed.
	DetachRole(ctx context.Context, userID, roleID string) (bool, error)
}
