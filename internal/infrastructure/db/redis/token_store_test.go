package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client), mr
}

func TestTokenStore_RevokeAndCheck(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "abc")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatalf("expected fresh token not to be revoked")
	}

	if err := store.Revoke(ctx, "abc", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, "abc")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatalf("expected token to be revoked")
	}
}

func TestTokenStore_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "abc", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if ttl := mr.TTL("revoked:abc"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "abc")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatalf("expected revocation to expire")
	}
}

func TestTokenStore_NonPositiveTTLIsNoop(t *testing.T) {
	store, mr := newTestStore(t)

	if err := store.Revoke(context.Background(), "abc", 0); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if mr.Exists("revoked:abc") {
		t.Fatalf("expected no key for zero ttl")
	}
}

func TestTokenStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	if _, err := store.IsRevoked(context.Background(), "abc"); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}
