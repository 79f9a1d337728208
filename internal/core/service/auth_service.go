package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// AuthService issues and verifies bearer tokens.
type AuthService struct {
	users     ports.UserRepository
	resolver  *PermissionResolver
	tokens    ports.TokenStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	resolver *PermissionResolver,
	tokens ports.TokenStore,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		resolver:  resolver,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login checks the credentials and issues a signed token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL).UTC()
	token, err := s.generateToken(user, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, session *ports.Session) error {
	if session == nil || session.TokenID == "" {
		return domain.ErrUnauthenticated
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.tokens.Revoke(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.logger.Info().Str("user_id", session.Principal.ID()).Msg("user logged out")
	return nil
}

// Authenticate verifies token, rejects revoked ones and resolves the
// caller's current roles and permissions.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*ports.Session, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := claims.GetSubject()
	if err != nil || userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	tokenID, _ := claims["jti"].(string)
	if tokenID == "" {
		return nil, domain.ErrUnauthenticated
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, domain.ErrUnauthenticated
	}

	revoked, err := s.tokens.IsRevoked(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("check token: %w", err)
	}
	if revoked {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	principal, err := s.resolver.Principal(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ports.Session{Principal: principal, TokenID: tokenID, ExpiresAt: exp.Time}, nil
}

func (s *AuthService) generateToken(user *domain.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"jti":   uuid.NewString(),
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
