package service

import (
	"context"
	"fmt"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// PermissionResolver computes the effective permission set of a user from
// the roles currently assigned to it.
type PermissionResolver struct {
	roles ports.RoleRepository
}

func NewPermissionResolver(roles ports.RoleRepository) *PermissionResolver {
	return &PermissionResolver{roles: roles}
}

// Resolve returns the deduplicated union of the permission names granted to
// every role of user. Only role IDs are consulted.
func (r *PermissionResolver) Resolve(ctx context.Context, user *domain.User) (domain.PermissionSet, error) {
	if user == nil || len(user.Roles) == 0 {
		return domain.NewPermissionSet(), nil
	}

	names, err := r.roles.PermissionNames(ctx, user.RoleIDs())
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}
	return domain.NewPermissionSet(names...), nil
}

// Principal builds the request principal for user.
func (r *PermissionResolver) Principal(ctx context.Context, user *domain.User) (*domain.Principal, error) {
	perms, err := r.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	return &domain.Principal{User: user, Permissions: perms}, nil
}
