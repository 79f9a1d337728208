package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// Policy is the RBAC gate evaluated before every viewing or mutating action.
// All denials are reported as domain.ErrForbidden so callers cannot tell
// which rule fired.
type Policy struct {
	roles ports.RoleRepository
}

func NewPolicy(roles ports.RoleRepository) *Policy {
	return &Policy{roles: roles}
}

// IsAllowed reports whether p may exercise permission. A superadmin is
// always allowed.
func (pol *Policy) IsAllowed(p *domain.Principal, permission string) bool {
	if p == nil || p.User == nil {
		return false
	}
	if p.IsSuperAdmin() {
		return true
	}
	return p.Permissions.Has(permission)
}

// Authorize is IsAllowed as an error.
func (pol *Policy) Authorize(p *domain.Principal, permission string) error {
	if !pol.IsAllowed(p, permission) {
		return domain.ErrForbidden
	}
	return nil
}

// AuthorizeRoleUpdate denies any update of the superadmin role, then
// requires manage_roles.
func (pol *Policy) AuthorizeRoleUpdate(ctx context.Context, p *domain.Principal, roleID string) error {
	if err := pol.guardSuperAdminRole(ctx, roleID); err != nil {
		return err
	}
	return pol.Authorize(p, domain.PermManageRoles)
}

// AuthorizeRoleDelete denies any deletion of the superadmin role, then
// requires manage_roles.
func (pol *Policy) AuthorizeRoleDelete(ctx context.Context, p *domain.Principal, roleID string) error {
	if err := pol.guardSuperAdminRole(ctx, roleID); err != nil {
		return err
	}
	return pol.Authorize(p, domain.PermManageRoles)
}

// AuthorizeRoleGrant denies granting the superadmin role through the
// generic grant action, then requires manage_roles.
func (pol *Policy) AuthorizeRoleGrant(p *domain.Principal, roleName string) error {
	if roleName == domain.SuperAdminRole {
		return domain.ErrForbidden
	}
	return pol.Authorize(p, domain.PermManageRoles)
}

// AuthorizeUserDelete denies deleting a superadmin account, then requires
// delete_user. A nil target skips the protection.
func (pol *Policy) AuthorizeUserDelete(p *domain.Principal, target *domain.User) error {
	if target != nil && target.IsSuperAdmin() {
		return domain.ErrForbidden
	}
	return pol.Authorize(p, domain.PermDeleteUser)
}

// AuthorizeUserUpdate lets only a superadmin edit a superadmin account.
// Every other target requires update_user. A nil target skips the
// protection.
func (pol *Policy) AuthorizeUserUpdate(p *domain.Principal, target *domain.User) error {
	if target != nil && target.IsSuperAdmin() {
		if p.IsSuperAdmin() {
			return nil
		}
		return domain.ErrForbidden
	}
	return pol.Authorize(p, domain.PermUpdateUser)
}

func (pol *Policy) guardSuperAdminRole(ctx context.Context, roleID string) error {
	super, err := pol.roles.FindByName(ctx, domain.SuperAdminRole)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil
		}
		return fmt.Errorf("load superadmin role: %w", err)
	}
	if super.ID == roleID {
		return domain.ErrForbidden
	}
	return nil
}
