package memory

import (
	"context"
	"sync"
	"time"
)

// TokenStore is an in-process token denylist for deployments without Redis.
type TokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{revoked: make(map[string]time.Time), now: time.Now}
}

func (t *TokenStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[tokenID] = t.now().Add(ttl)
	return nil
}

func (t *TokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, ok := t.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !t.now().Before(until) {
		delete(t.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
