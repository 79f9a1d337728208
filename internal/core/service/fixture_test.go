package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/infrastructure/db/memory"
)

func TestMain(m *testing.M) {
	passwordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// fixture wires every service against one in-memory store.
type fixture struct {
	store    *memory.Store
	tokens   *memory.TokenStore
	resolver *PermissionResolver
	policy   *Policy
	assign   *AssignmentService
	users    *UserService
	roles    *RoleService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	tokens := memory.NewTokenStore()

	f := &fixture{store: store, tokens: tokens}
	f.resolver = NewPermissionResolver(store.Roles())
	f.policy = NewPolicy(store.Roles())
	f.assign = NewAssignmentService(store.Users(), store.Roles(), store.Permissions(), log)
	f.users = NewUserService(store.Users(), f.policy, f.assign, log)
	f.roles = NewRoleService(store.Roles(), f.policy, f.assign, log)
	f.auth = NewAuthService(store.Users(), f.resolver, tokens, "test-secret", time.Hour, log)

	err := NewBootstrapper(store.Users(), store.Roles(), store.Permissions(), log).Run(context.Background(), SuperAdminAccount{
		Name:     "Root",
		Email:    "root@example.com",
		Password: "rootpass1",
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return f
}

func (f *fixture) principalFor(t *testing.T, u *domain.User) *domain.Principal {
	t.Helper()
	fresh, err := f.store.Users().FindByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	p, err := f.resolver.Principal(context.Background(), fresh)
	if err != nil {
		t.Fatalf("resolve principal: %v", err)
	}
	return p
}

func (f *fixture) superAdmin(t *testing.T) *domain.Principal {
	t.Helper()
	u, err := f.store.Users().FindByEmail(context.Background(), "root@example.com")
	if err != nil {
		t.Fatalf("load superadmin: %v", err)
	}
	return f.principalFor(t, u)
}

// newUser stores a user directly, bypassing authorization.
func (f *fixture) newUser(t *testing.T, email string) *domain.User {
	t.Helper()
	hash, _ := hashPassword("password1")
	u, err := f.store.Users().Create(context.Background(), &domain.User{
		Name:         email,
		Email:        email,
		PasswordHash: hash,
		DateOfBirth:  time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// newRole stores a role holding perms, bypassing authorization.
func (f *fixture) newRole(t *testing.T, name string, perms ...string) *domain.Role {
	t.Helper()
	ctx := context.Background()
	r, err := f.store.Roles().Create(ctx, &domain.Role{Name: name, Label: name})
	if err != nil {
		t.Fatalf("create role %s: %v", name, err)
	}
	for _, perm := range perms {
		if _, err := f.assign.GrantPermissionToRole(ctx, domain.ByID(r.ID), domain.ByName(perm)); err != nil {
			t.Fatalf("grant %s to %s: %v", perm, name, err)
		}
	}
	return r
}

// actor creates a user holding a fresh role with perms and returns its principal.
func (f *fixture) actor(t *testing.T, email string, perms ...string) *domain.Principal {
	t.Helper()
	u := f.newUser(t, email)
	r := f.newRole(t, "role-"+email, perms...)
	if err := f.store.Users().AttachRole(context.Background(), u.ID, r.ID); err != nil {
		t.Fatalf("attach role: %v", err)
	}
	return f.principalFor(t, u)
}
