package ports

import (
	"context"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// CreateRoleInput carries the fields of a new role.
type CreateRoleInput struct {
	Name  string
	Label string
}

// UpdateRoleInput carries a partial role update.
type UpdateRoleInput struct {
	Name  *string
	Label *string
}

// RoleService is the use-case surface for roles and their permissions.
type RoleService interface {
	List(ctx context.Context, p *domain.Principal, page int) (domain.Page[*domain.Role], error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.Role, error)
	GetByName(ctx context.Context, p *domain.Principal, name string) (*domain.Role, error)
	Create(ctx context.Context, p *domain.Principal, in CreateRoleInput) (*domain.Role, error)
	Update(ctx context.Context, p *domain.Principal, id string, in UpdateRoleInput) (*domain.Role, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
	GrantPermission(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error)
	RevokePermission(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error)

	// AuthorizeUpdate runs the update policy for the role without updating it.
	AuthorizeUpdate(ctx context.Context, p *domain.Principal, id string) error
}
