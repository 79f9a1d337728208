package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

type RoleService struct {
	repo        ports.RoleRepository
	policy      *Policy
	assignments *AssignmentService
	logger      zerolog.Logger
}

func NewRoleService(repo ports.RoleRepository, policy *Policy, assignments *AssignmentService, logger zerolog.Logger) *RoleService {
	return &RoleService{repo: repo, policy: policy, assignments: assignments, logger: logger}
}

func (s *RoleService) List(ctx context.Context, p *domain.Principal, page int) (domain.Page[*domain.Role], error) {
	if err := s.policy.Authorize(p, domain.PermListRoles); err != nil {
		return domain.Page[*domain.Role]{}, err
	}
	if page < 1 {
		page = 1
	}

	roles, total, err := s.repo.List(ctx, domain.Offset(page, domain.PageSize), domain.PageSize)
	if err != nil {
		return domain.Page[*domain.Role]{}, fmt.Errorf("list roles: %w", err)
	}
	return domain.Page[*domain.Role]{Items: roles, Total: total, Page: page, PerPage: domain.PageSize}, nil
}

func (s *RoleService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Role, error) {
	if err := s.policy.Authorize(p, domain.PermShowRole); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *RoleService) GetByName(ctx context.Context, p *domain.Principal, name string) (*domain.Role, error) {
	if err := s.policy.Authorize(p, domain.PermShowRole); err != nil {
		return nil, err
	}
	return s.repo.FindByName(ctx, name)
}

// Create adds a role with no permissions. Name and label must both be unused.
func (s *RoleService) Create(ctx context.Context, p *domain.Principal, in ports.CreateRoleInput) (*domain.Role, error) {
	if err := s.policy.Authorize(p, domain.PermManageRoles); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, &in.Name, &in.Label, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Role{
		Name:        in.Name,
		Label:       in.Label,
		Permissions: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("role", in.Name).Msg("failed to create role")
		return nil, err
	}

	s.logger.Info().Str("role_id", created.ID).Str("role", created.Name).Str("by", p.ID()).Msg("role created")
	return created, nil
}

// Update renames or relabels a role. The superadmin role is immutable.
func (s *RoleService) Update(ctx context.Context, p *domain.Principal, id string, in ports.UpdateRoleInput) (*domain.Role, error) {
	if err := s.policy.AuthorizeRoleUpdate(ctx, p, id); err != nil {
		return nil, err
	}
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var name, label *string
	if in.Name != nil && *in.Name != role.Name {
		name = in.Name
	}
	if in.Label != nil && *in.Label != role.Label {
		label = in.Label
	}
	if err := s.ensureUnique(ctx, name, label, role.ID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, role.ID, domain.RoleChanges{Name: in.Name, Label: in.Label})
	if err != nil {
		s.logger.Error().Err(err).Str("role_id", id).Msg("failed to update role")
		return nil, err
	}

	s.logger.Info().Str("role_id", id).Str("by", p.ID()).Msg("role updated")
	return updated, nil
}

// Delete removes a role and detaches it from every user. The superadmin
// role can not be deleted.
func (s *RoleService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	if err := s.policy.AuthorizeRoleDelete(ctx, p, id); err != nil {
		return err
	}
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, role.ID); err != nil {
		s.logger.Error().Err(err).Str("role_id", id).Msg("failed to delete role")
		return err
	}

	s.logger.Info().Str("role_id", id).Str("role", role.Name).Str("by", p.ID()).Msg("role deleted")
	return nil
}

// GrantPermission adds the named permission to the role and returns the
// role as stored afterwards.
func (s *RoleService) GrantPermission(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error) {
	if err := s.policy.Authorize(p, domain.PermManagePermissions); err != nil {
		return nil, err
	}
	g, err := s.assignments.GrantPermissionToRole(ctx, domain.ByID(roleID), domain.ByName(permission))
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, g.Role.ID)
}

// RevokePermission removes the named permission from the role. The role
// must currently hold it.
func (s *RoleService) RevokePermission(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error) {
	if err := s.policy.Authorize(p, domain.PermManagePermissions); err != nil {
		return nil, err
	}
	g, err := s.assignments.RevokePermissionFromRole(ctx, domain.ByID(roleID), domain.ByName(permission))
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, g.Role.ID)
}

// AuthorizeUpdate runs the update policy for the role behind id.
func (s *RoleService) AuthorizeUpdate(ctx context.Context, p *domain.Principal, id string) error {
	return s.policy.AuthorizeRoleUpdate(ctx, p, id)
}

// ensureUnique checks the non-nil name and label against every role other
// than ownerID.
func (s *RoleService) ensureUnique(ctx context.Context, name, label *string, ownerID string) error {
	fields := map[string]string{}

	if name != nil {
		taken, err := s.taken(ctx, s.repo.FindByName, *name, ownerID)
		if err != nil {
			return fmt.Errorf("check role name: %w", err)
		}
		if taken {
			fields["name"] = "The name has already been taken."
		}
	}
	if label != nil {
		taken, err := s.taken(ctx, s.repo.FindByLabel, *label, ownerID)
		if err != nil {
			return fmt.Errorf("check role label: %w", err)
		}
		if taken {
			fields["label"] = "The label has already been taken."
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *RoleService) taken(
	ctx context.Context,
	find func(context.Context, string) (*domain.Role, error),
	value, ownerID string,
) (bool, error) {
	existing, err := find(ctx, value)
	if errors.Is(err, domain.ErrRoleNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != ownerID, nil
}
