package ports

import (
	"context"
	"time"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// CreateUserInput carries the fields of a new account. Password is plain
// text; the service hashes it.
type CreateUserInput struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth time.Time
	Gender      string
	NationalID  string
	Address     string
	Country     string
	Phone       string
}

// UpdateUserInput carries a partial update. Nil fields are left untouched.
type UpdateUserInput struct {
	Name        *string
	Email       *string
	Password    *string
	DateOfBirth *time.Time
	Gender      *string
	NationalID  *string
	Address     *string
	Country     *string
	Phone       *string
}

// UserService is the use-case surface for users. Every call is authorized
// against the given principal before it touches the store.
type UserService interface {
	List(ctx context.Context, p *domain.Principal, page int) (domain.Page[*domain.User], error)
	Get(ctx context.Context, p *domain.Principal, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, p *domain.Principal, email string) (*domain.User, error)
	Create(ctx context.Context, p *domain.Principal, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, p *domain.Principal, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, p *domain.Principal, id string) error
	GrantRole(ctx context.Context, p *domain.Principal, userID, role string) (*domain.User, error)
	RevokeRole(ctx context.Context, p *domain.Principal, userID, role string) (*domain.User, error)

	// The Authorize* methods run the policy for an action without
	// performing it, so a caller can deny before reading the payload.
	AuthorizeUpdate(ctx context.Context, p *domain.Principal, id string) error
	AuthorizeGrantRole(p *domain.Principal, role string) error
	AuthorizeRevokeRole(p *domain.Principal) error
}
