package ports

import (
	"context"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// RoleRepository persists roles and the role-permission association.
// Roles are returned with their permission names loaded.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	FindByLabel(ctx context.Context, label string) (*domain.Role, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Role, int64, error)
	Create(ctx context.Context, role *domain.Role) (*domain.Role, error)
	Update(ctx context.Context, id string, changes domain.RoleChanges) (*domain.Role, error)
	// Delete removes the role and every association that references it.
	Delete(ctx context.Context, id string) error

	// AttachPermission inserts the (role, permission) pair. An existing pair
	// is not an error.
	AttachPermission(ctx context.Context, roleID, permissionID string) error
	// DetachPermission removes the pair and reports whether it existed.
	DetachPermission(ctx context.Context, roleID, permissionID string) (bool, error)
	// PermissionNames returns the names of the permissions granted to any
	// of the given roles. Duplicates may be present.
	PermissionNames(ctx context.Context, roleIDs []string) ([]string, error)
}

// PermissionRepository reads the permission catalogue.
type PermissionRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Permission, error)
	FindByName(ctx context.Context, name string) (*domain.Permission, error)
	List(ctx context.Context) ([]*domain.Permission, error)
	// Ensure creates the permission if no permission with that name exists
	// and returns the stored one.
	Ensure(ctx context.Context, p domain.Permission) (*domain.Permission, error)
}
