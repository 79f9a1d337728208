package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// RoleGrant is the resolved pair touched by a role grant or revoke.
type RoleGrant struct {
	User *domain.User
	Role *domain.Role
}

// PermissionGrant is the resolved pair touched by a permission grant or revoke.
type PermissionGrant struct {
	Role       *domain.Role
	Permission *domain.Permission
}

// AssignmentService implements the grant/revoke transitions on the
// user-role and role-permission associations. Lookups are resolved first;
// the mutation itself is a single store operation.
type AssignmentService struct {
	users       ports.UserRepository
	roles       ports.RoleRepository
	permissions ports.PermissionRepository
	log         zerolog.Logger
}

func NewAssignmentService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	permissions ports.PermissionRepository,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{users: users, roles: roles, permissions: permissions, log: log}
}

// GrantPermissionToRole adds permission to role. Granting twice is a no-op.
func (s *AssignmentService) GrantPermissionToRole(ctx context.Context, role, permission domain.Lookup) (*PermissionGrant, error) {
	g, err := s.resolvePermissionGrant(ctx, role, permission)
	if err != nil {
		return nil, err
	}
	if err := s.roles.AttachPermission(ctx, g.Role.ID, g.Permission.ID); err != nil {
		return nil, fmt.Errorf("grant permission %s to role %s: %w", g.Permission.Name, g.Role.Name, err)
	}

	s.log.Info().Str("role", g.Role.Name).Str("permission", g.Permission.Name).Msg("permission granted")
	return g, nil
}

// RevokePermissionFromRole removes permission from role. Revoking a
// permission the role does not hold fails with ErrPermissionNotAssignedToRole.
func (s *AssignmentService) RevokePermissionFromRole(ctx context.Context, role, permission domain.Lookup) (*PermissionGrant, error) {
	g, err := s.resolvePermissionGrant(ctx, role, permission)
	if err != nil {
		return nil, err
	}
	removed, err := s.roles.DetachPermission(ctx, g.Role.ID, g.Permission.ID)
	if err != nil {
		return nil, fmt.Errorf("revoke permission %s from role %s: %w", g.Permission.Name, g.Role.Name, err)
	}
	if !removed {
		return nil, &domain.NotAssignedError{Permission: g.Permission.Name, Role: g.Role.Name}
	}

	s.log.Info().Str("role", g.Role.Name).Str("permission", g.Permission.Name).Msg("permission revoked")
	return g, nil
}

// GrantRoleToUser adds role to the user. Granting twice is a no-op.
func (s *AssignmentService) GrantRoleToUser(ctx context.Context, userID string, role domain.Lookup) (*RoleGrant, error) {
	g, err := s.resolveRoleGrant(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.AttachRole(ctx, g.User.ID, g.Role.ID); err != nil {
		return nil, fmt.Errorf("grant role %s to user %s: %w", g.Role.Name, g.User.ID, err)
	}

	s.log.Info().Str("user_id", g.User.ID).Str("role", g.Role.Name).Msg("role granted")
	return g, nil
}

// RevokeRoleFromUser removes role from the user. Revoking a role the user
// does not hold succeeds silently.
func (s *AssignmentService) RevokeRoleFromUser(ctx context.Context, userID string, role domain.Lookup) (*RoleGrant, error) {
	g, err := s.resolveRoleGrant(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	removed, err := s.users.DetachRole(ctx, g.User.ID, g.Role.ID)
	if err != nil {
		return nil, fmt.Errorf("revoke role %s from user %s: %w", g.Role.Name, g.User.ID, err)
	}

	s.log.Info().Str("user_id", g.User.ID).Str("role", g.Role.Name).Bool("was_assigned", removed).Msg("role revoked")
	return g, nil
}

func (s *AssignmentService) resolveRoleGrant(ctx context.Context, userID string, role domain.Lookup) (*RoleGrant, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	r, err := s.resolveRole(ctx, role)
	if err != nil {
		return nil, err
	}
	return &RoleGrant{User: user, Role: r}, nil
}

func (s *AssignmentService) resolvePermissionGrant(ctx context.Context, role, permission domain.Lookup) (*PermissionGrant, error) {
	r, err := s.resolveRole(ctx, role)
	if err != nil {
		return nil, err
	}
	p, err := s.resolvePermission(ctx, permission)
	if err != nil {
		return nil, err
	}
	return &PermissionGrant{Role: r, Permission: p}, nil
}

func (s *AssignmentService) resolveRole(ctx context.Context, l domain.Lookup) (*domain.Role, error) {
	if l.IsID() {
		return s.roles.FindByID(ctx, l.Value())
	}
	return s.roles.FindByName(ctx, l.Value())
}

func (s *AssignmentService) resolvePermission(ctx context.Context, l domain.Lookup) (*domain.Permission, error) {
	if l.IsID() {
		return s.permissions.FindByID(ctx, l.Value())
	}
	return s.permissions.FindByName(ctx, l.Value())
}
