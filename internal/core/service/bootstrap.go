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

// SuperAdminAccount describes the account seeded with the superadmin role.
type SuperAdminAccount struct {
	Name     string
	Email    string
	Password string
}

// Bootstrapper seeds the permission catalogue, the superadmin role and the
// first superadmin account. Running it again is a no-op.
type Bootstrapper struct {
	users       ports.UserRepository
	roles       ports.RoleRepository
	permissions ports.PermissionRepository
	logger      zerolog.Logger
}

func NewBootstrapper(users ports.UserRepository, roles ports.RoleRepository, permissions ports.PermissionRepository, logger zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{users: users, roles: roles, permissions: permissions, logger: logger}
}

func (b *Bootstrapper) Run(ctx context.Context, account SuperAdminAccount) error {
	for _, p := range domain.DefaultPermissions {
		if _, err := b.permissions.Ensure(ctx, p); err != nil {
			return fmt.Errorf("seed permission %s: %w", p.Name, err)
		}
	}

	role, err := b.ensureSuperAdminRole(ctx)
	if err != nil {
		return err
	}

	if account.Email == "" {
		b.logger.Warn().Msg("no superadmin account configured, skipping")
		return nil
	}

	user, err := b.users.FindByEmail(ctx, account.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = b.createAccount(ctx, account)
	}
	if err != nil {
		return fmt.Errorf("seed superadmin account: %w", err)
	}

	if err := b.users.AttachRole(ctx, user.ID, role.ID); err != nil {
		return fmt.Errorf("grant superadmin role: %w", err)
	}

	b.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("superadmin ready")
	return nil
}

func (b *Bootstrapper) ensureSuperAdminRole(ctx context.Context) (*domain.Role, error) {
	role, err := b.roles.FindByName(ctx, domain.SuperAdminRole)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, fmt.Errorf("load superadmin role: %w", err)
	}

	now := time.Now().UTC()
	role, err = b.roles.Create(ctx, &domain.Role{
		Name:        domain.SuperAdminRole,
		Label:       domain.SuperAdminLabel,
		Permissions: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create superadmin role: %w", err)
	}

	b.logger.Info().Str("role_id", role.ID).Msg("superadmin role created")
	return role, nil
}

func (b *Bootstrapper) createAccount(ctx context.Context, account SuperAdminAccount) (*domain.User, error) {
	hash, err := hashPassword(account.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return b.users.Create(ctx, &domain.User{
		Name:         account.Name,
		Email:        account.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
