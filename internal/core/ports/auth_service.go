package ports

import (
	"context"
	"time"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// Session is what a verified access token resolves to.
type Session struct {
	Principal *domain.Principal
	TokenID   string
	ExpiresAt time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, session *Session) error
	// Authenticate verifies a raw bearer token and builds the request principal.
	Authenticate(ctx context.Context, token string) (*Session, error)
}
