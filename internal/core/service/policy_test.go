package service

import (
	"context"
	"errors"
	"testing"

	"github.com/99minutos/identity-api/internal/core/domain"
)

func TestPolicy_IsAllowed(t *testing.T) {
	pol := NewPolicy(nil)
	super := &domain.Principal{
		User:        &domain.User{ID: "s", Roles: []domain.RoleRef{{ID: "r0", Name: domain.SuperAdminRole}}},
		Permissions: domain.NewPermissionSet(),
	}
	reader := &domain.Principal{
		User:        &domain.User{ID: "r"},
		Permissions: domain.NewPermissionSet(domain.PermListUsers),
	}

	tests := []struct {
		name string
		p    *domain.Principal
		perm string
		want bool
	}{
		{"nil principal", nil, domain.PermListUsers, false},
		{"superadmin without grants", super, domain.PermManagePermissions, true},
		{"held permission", reader, domain.PermListUsers, true},
		{"missing permission", reader, domain.PermDeleteUser, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pol.IsAllowed(tt.p, tt.perm); got != tt.want {
				t.Fatalf("IsAllowed(%s) = %v, want %v", tt.perm, got, tt.want)
			}
		})
	}
}

func TestPolicy_SuperAdminRoleIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.superAdmin(t)

	role, err := f.store.Roles().FindByName(ctx, domain.SuperAdminRole)
	if err != nil {
		t.Fatalf("load superadmin role: %v", err)
	}
	if err := f.policy.AuthorizeRoleUpdate(ctx, super, role.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected update to be forbidden, got %v", err)
	}
	if err := f.policy.AuthorizeRoleDelete(ctx, super, role.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected delete to be forbidden, got %v", err)
	}

	other := f.newRole(t, "editor")
	if err := f.policy.AuthorizeRoleUpdate(ctx, super, other.ID); err != nil {
		t.Fatalf("expected superadmin to update other roles, got %v", err)
	}
}

func TestPolicy_RoleGrant(t *testing.T) {
	pol := NewPolicy(nil)
	manager := &domain.Principal{User: &domain.User{ID: "m"}, Permissions: domain.NewPermissionSet(domain.PermManageRoles)}
	super := &domain.Principal{User: &domain.User{ID: "s", Roles: []domain.RoleRef{{Name: domain.SuperAdminRole}}}}

	if err := pol.AuthorizeRoleGrant(manager, "editor"); err != nil {
		t.Fatalf("expected grant allowed, got %v", err)
	}
	if err := pol.AuthorizeRoleGrant(super, domain.SuperAdminRole); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected superadmin grant to be forbidden even for superadmin, got %v", err)
	}
}

func TestPolicy_UserProtection(t *testing.T) {
	pol := NewPolicy(nil)
	target := &domain.User{ID: "t", Roles: []domain.RoleRef{{Name: domain.SuperAdminRole}}}
	plain := &domain.User{ID: "p"}
	admin := &domain.Principal{
		User:        &domain.User{ID: "a"},
		Permissions: domain.NewPermissionSet(domain.PermUpdateUser, domain.PermDeleteUser),
	}
	super := &domain.Principal{User: &domain.User{ID: "s", Roles: []domain.RoleRef{{Name: domain.SuperAdminRole}}}}

	if err := pol.AuthorizeUserUpdate(admin, target); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected admin edit of superadmin forbidden, got %v", err)
	}
	if err := pol.AuthorizeUserUpdate(super, target); err != nil {
		t.Fatalf("expected superadmin edit of superadmin allowed, got %v", err)
	}
	if err := pol.AuthorizeUserUpdate(admin, plain); err != nil {
		t.Fatalf("expected admin edit of plain user allowed, got %v", err)
	}
	if err := pol.AuthorizeUserDelete(super, target); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected superadmin delete forbidden, got %v", err)
	}
	if err := pol.AuthorizeUserDelete(admin, nil); err != nil {
		t.Fatalf("expected nil target to fall back to permission check, got %v", err)
	}
}
