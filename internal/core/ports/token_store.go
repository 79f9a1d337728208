package ports

import (
	"context"
	"time"
)

// TokenStore remembers revoked access tokens until they would have expired.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
