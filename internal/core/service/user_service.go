package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

type UserService struct {
	repo        ports.UserRepository
	policy      *Policy
	assignments *AssignmentService
	logger      zerolog.Logger
}

func NewUserService(repo ports.UserRepository, policy *Policy, assignments *AssignmentService, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, policy: policy, assignments: assignments, logger: logger}
}

// List returns one page of users in insertion order.
func (s *UserService) List(ctx context.Context, p *domain.Principal, page int) (domain.Page[*domain.User], error) {
	if err := s.policy.Authorize(p, domain.PermListUsers); err != nil {
		return domain.Page[*domain.User]{}, err
	}
	if page < 1 {
		page = 1
	}

	users, total, err := s.repo.List(ctx, domain.Offset(page, domain.PageSize), domain.PageSize)
	if err != nil {
		return domain.Page[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return domain.Page[*domain.User]{Items: users, Total: total, Page: page, PerPage: domain.PageSize}, nil
}

func (s *UserService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.User, error) {
	if err := s.policy.Authorize(p, domain.PermShowUser); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, p *domain.Principal, email string) (*domain.User, error) {
	if err := s.policy.Authorize(p, domain.PermShowUser); err != nil {
		return nil, err
	}
	return s.repo.FindByEmail(ctx, email)
}

// Create registers a new account. The email must not be taken.
func (s *UserService) Create(ctx context.Context, p *domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	if err := s.policy.Authorize(p, domain.PermCreateUser); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		NationalID:   in.NationalID,
		Address:      in.Address,
		Country:      in.Country,
		Phone:        in.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("email", in.Email).Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("by", p.ID()).Msg("user created")
	return created, nil
}

// Update applies a partial update. Only a superadmin may edit a superadmin
// account.
func (s *UserService) Update(ctx context.Context, p *domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	target, err := s.authorizeUpdate(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.UserNotFound(id)
	}

	if in.Email != nil && *in.Email != target.Email {
		if err := s.ensureEmailFree(ctx, *in.Email, target.ID); err != nil {
			return nil, err
		}
	}

	changes := domain.UserChanges{
		Name:        in.Name,
		Email:       in.Email,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		NationalID:  in.NationalID,
		Address:     in.Address,
		Country:     in.Country,
		Phone:       in.Phone,
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}

	updated, err := s.repo.Update(ctx, target.ID, changes)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Str("by", p.ID()).Msg("user updated")
	return updated, nil
}

// Delete removes an account. A superadmin account can never be deleted.
func (s *UserService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	target, lookupErr := s.repo.FindByID(ctx, id)
	if lookupErr != nil && !errors.Is(lookupErr, domain.ErrUserNotFound) {
		return lookupErr
	}
	if err := s.policy.AuthorizeUserDelete(p, target); err != nil {
		return err
	}
	if lookupErr != nil {
		return lookupErr
	}

	if err := s.repo.Delete(ctx, target.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return err
	}

	s.logger.Info().Str("user_id", id).Str("by", p.ID()).Msg("user deleted")
	return nil
}

// GrantRole assigns the named role to the user. The superadmin role can
// not be granted this way.
func (s *UserService) GrantRole(ctx context.Context, p *domain.Principal, userID, role string) (*domain.User, error) {
	if err := s.policy.AuthorizeRoleGrant(p, role); err != nil {
		return nil, err
	}
	g, err := s.assignments.GrantRoleToUser(ctx, userID, domain.ByName(role))
	if err != nil {
		return nil, err
	}
	return g.User, nil
}

// RevokeRole removes the named role from the user.
func (s *UserService) RevokeRole(ctx context.Context, p *domain.Principal, userID, role string) (*domain.User, error) {
	if err := s.AuthorizeRevokeRole(p); err != nil {
		return nil, err
	}
	g, err := s.assignments.RevokeRoleFromUser(ctx, userID, domain.ByName(role))
	if err != nil {
		return nil, err
	}
	return g.User, nil
}

// AuthorizeUpdate applies the update rules to the account behind id. An
// unknown id is judged as an ordinary account.
func (s *UserService) AuthorizeUpdate(ctx context.Context, p *domain.Principal, id string) error {
	_, err := s.authorizeUpdate(ctx, p, id)
	return err
}

// AuthorizeGrantRole denies granting role before any lookup happens.
func (s *UserService) AuthorizeGrantRole(p *domain.Principal, role string) error {
	return s.policy.AuthorizeRoleGrant(p, role)
}

func (s *UserService) AuthorizeRevokeRole(p *domain.Principal) error {
	return s.policy.Authorize(p, domain.PermManageRoles)
}

// authorizeUpdate returns the target, or nil when it does not exist.
func (s *UserService) authorizeUpdate(ctx context.Context, p *domain.Principal, id string) (*domain.User, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		target = nil
	}
	if err := s.policy.AuthorizeUserUpdate(p, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.ID != ownerID:
		return domain.NewValidationError("email", "The email has already been taken.")
	}
	return nil
}

// passwordCost is the bcrypt work factor for stored password hashes.
var passwordCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
