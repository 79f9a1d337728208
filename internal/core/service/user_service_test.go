package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

func newUserInput(email string) ports.CreateUserInput {
	return ports.CreateUserInput{
		Name:        "Jane Doe",
		Email:       email,
		Password:    "s3cretpass",
		DateOfBirth: time.Date(1992, 3, 4, 0, 0, 0, 0, time.UTC),
		Gender:      "F",
		NationalID:  "ABC123",
		Address:     "Av. Reforma 1",
		Country:     "MX",
		Phone:       "5550000000",
	}
}

func strPtr(s string) *string { return &s }

func TestUserService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.actor(t, "creator@example.com", domain.PermCreateUser)

	u, err := f.users.Create(ctx, creator, newUserInput("jane@example.com"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.ID == "" || u.Email != "jane@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(u.Roles) != 0 {
		t.Fatalf("expected new user without roles, got %+v", u.Roles)
	}
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	creator := f.actor(t, "creator@example.com", domain.PermCreateUser)

	if _, err := f.users.Create(ctx, creator, newUserInput("jane@example.com")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.users.Create(ctx, creator, newUserInput("jane@example.com"))
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["email"] == "" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestUserService_CreateForbidden(t *testing.T) {
	f := newFixture(t)
	reader := f.actor(t, "reader@example.com", domain.PermListUsers)

	if _, err := f.users.Create(context.Background(), reader, newUserInput("x@example.com")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.store.Users().FindByEmail(context.Background(), "x@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected no user stored, got %v", err)
	}
}

func TestUserService_ListPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lister := f.actor(t, "lister@example.com", domain.PermListUsers)
	for i := 0; i < 12; i++ {
		f.newUser(t, fmt.Sprintf("u%02d@example.com", i))
	}

	first, err := f.users.List(ctx, lister, 1)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	// root + lister + 12
	if first.Total != 14 || len(first.Items) != domain.PageSize || first.TotalPages() != 2 {
		t.Fatalf("unexpected first page: total=%d items=%d pages=%d", first.Total, len(first.Items), first.TotalPages())
	}
	if first.Items[0].Email != "root@example.com" {
		t.Fatalf("expected insertion order, first is %s", first.Items[0].Email)
	}

	second, _ := f.users.List(ctx, lister, 2)
	if len(second.Items) != 4 {
		t.Fatalf("expected 4 users on page 2, got %d", len(second.Items))
	}

	if _, err := f.users.List(ctx, nil, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected anonymous list to be forbidden, got %v", err)
	}
}

func TestUserService_GetAndGetByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := f.actor(t, "viewer@example.com", domain.PermShowUser)
	target := f.newUser(t, "target@example.com")

	got, err := f.users.Get(ctx, viewer, target.ID)
	if err != nil || got.Email != "target@example.com" {
		t.Fatalf("Get: %+v, %v", got, err)
	}
	got, err = f.users.GetByEmail(ctx, viewer, "target@example.com")
	if err != nil || got.ID != target.ID {
		t.Fatalf("GetByEmail: %+v, %v", got, err)
	}

	_, err = f.users.Get(ctx, viewer, "missing")
	if !errors.Is(err, domain.ErrUserNotFound) || err.Error() != "The user missing does not exist" {
		t.Fatalf("expected not found message, got %v", err)
	}
}

func TestUserService_UpdatePartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	editor := f.actor(t, "editor@example.com", domain.PermUpdateUser)
	target := f.newUser(t, "target@example.com")

	updated, err := f.users.Update(ctx, editor, target.ID, ports.UpdateUserInput{
		Name:     strPtr("Renamed"),
		Password: strPtr("newpassword"),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Renamed" || updated.Email != "target@example.com" {
		t.Fatalf("unexpected user: %+v", updated)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newpassword")) != nil {
		t.Fatalf("expected password to be rehashed")
	}
}

func TestUserService_UpdateEmailTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	editor := f.actor(t, "editor@example.com", domain.PermUpdateUser)
	target := f.newUser(t, "target@example.com")

	_, err := f.users.Update(ctx, editor, target.ID, ports.UpdateUserInput{Email: strPtr("editor@example.com")})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := f.users.Update(ctx, editor, target.ID, ports.UpdateUserInput{Email: strPtr("target@example.com")}); err != nil {
		t.Fatalf("expected keeping own email to pass, got %v", err)
	}
}

func TestUserService_UpdateSuperAdminProtection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.superAdmin(t)
	editor := f.actor(t, "editor@example.com", domain.PermUpdateUser)

	if _, err := f.users.Update(ctx, editor, super.User.ID, ports.UpdateUserInput{Name: strPtr("x")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.users.Update(ctx, super, super.User.ID, ports.UpdateUserInput{Name: strPtr("Root 2")}); err != nil {
		t.Fatalf("expected superadmin self edit to succeed, got %v", err)
	}
}

func TestUserService_UpdateMissingChecksPermissionFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	editor := f.actor(t, "editor@example.com", domain.PermUpdateUser)
	reader := f.actor(t, "reader@example.com", domain.PermShowUser)

	if _, err := f.users.Update(ctx, reader, "missing", ports.UpdateUserInput{}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.users.Update(ctx, editor, "missing", ports.UpdateUserInput{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deleter := f.actor(t, "deleter@example.com", domain.PermDeleteUser)
	target := f.newUser(t, "target@example.com")

	if err := f.users.Delete(ctx, deleter, target.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := f.store.Users().FindByID(ctx, target.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if err := f.users.Delete(ctx, deleter, target.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestUserService_DeleteSuperAdminForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.superAdmin(t)

	if err := f.users.Delete(ctx, super, super.User.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_GrantAndRevokeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manager := f.actor(t, "manager@example.com", domain.PermManageRoles)
	target := f.newUser(t, "target@example.com")
	f.newRole(t, "editor", domain.PermShowUser)

	u, err := f.users.GrantRole(ctx, manager, target.ID, "editor")
	if err != nil {
		t.Fatalf("GrantRole returned error: %v", err)
	}
	if u.ID != target.ID {
		t.Fatalf("expected granted user back, got %+v", u)
	}
	p := f.principalFor(t, target)
	if !p.Permissions.Has(domain.PermShowUser) {
		t.Fatalf("expected show_user after grant, got %v", p.Permissions.Names())
	}

	if _, err := f.users.RevokeRole(ctx, manager, target.ID, "editor"); err != nil {
		t.Fatalf("RevokeRole returned error: %v", err)
	}
	if _, err := f.users.RevokeRole(ctx, manager, target.ID, "editor"); err != nil {
		t.Fatalf("repeat RevokeRole should be silent, got %v", err)
	}
	p = f.principalFor(t, target)
	if len(p.Permissions) != 0 {
		t.Fatalf("expected no permissions after revoke, got %v", p.Permissions.Names())
	}
}

func TestUserService_GrantSuperAdminForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.superAdmin(t)
	target := f.newUser(t, "target@example.com")

	if _, err := f.users.GrantRole(ctx, super, target.ID, domain.SuperAdminRole); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	reloaded, _ := f.store.Users().FindByID(ctx, target.ID)
	if reloaded.IsSuperAdmin() {
		t.Fatalf("expected target not promoted")
	}
}

func TestUserService_AuthorizeWithoutActing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.superAdmin(t)
	editor := f.actor(t, "editor@example.com", domain.PermUpdateUser)
	manager := f.actor(t, "manager@example.com", domain.PermManageRoles)
	target := f.newUser(t, "target@example.com")

	if err := f.users.AuthorizeUpdate(ctx, editor, super.User.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on superadmin target, got %v", err)
	}
	if err := f.users.AuthorizeUpdate(ctx, editor, target.ID); err != nil {
		t.Fatalf("expected editor allowed, got %v", err)
	}
	if err := f.users.AuthorizeUpdate(ctx, editor, "missing"); err != nil {
		t.Fatalf("expected unknown id judged as ordinary account, got %v", err)
	}
	if err := f.users.AuthorizeUpdate(ctx, manager, target.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden without update_user, got %v", err)
	}

	if err := f.users.AuthorizeGrantRole(manager, domain.SuperAdminRole); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected superadmin grant denied, got %v", err)
	}
	if err := f.users.AuthorizeGrantRole(editor, "creator"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected grant denied without manage_roles, got %v", err)
	}
	if err := f.users.AuthorizeRevokeRole(manager); err != nil {
		t.Fatalf("expected revoke allowed, got %v", err)
	}

	got, err := f.store.Users().FindByID(ctx, target.ID)
	if err != nil || got.Name != target.Name {
		t.Fatalf("authorization must not change the target: %+v %v", got, err)
	}
}
