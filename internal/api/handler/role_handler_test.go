package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

type stubRoleService struct {
	listFn             func(ctx context.Context, p *domain.Principal, page int) (domain.Page[*domain.Role], error)
	getFn              func(ctx context.Context, p *domain.Principal, id string) (*domain.Role, error)
	getByNameFn        func(ctx context.Context, p *domain.Principal, name string) (*domain.Role, error)
	createFn           func(ctx context.Context, p *domain.Principal, in ports.CreateRoleInput) (*domain.Role, error)
	updateFn           func(ctx context.Context, p *domain.Principal, id string, in ports.UpdateRoleInput) (*domain.Role, error)
	deleteFn           func(ctx context.Context, p *domain.Principal, id string) error
	grantPermissionFn  func(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error)
	revokePermissionFn func(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error)
	authorizeUpdateFn  func(ctx context.Context, p *domain.Principal, id string) error
}

func (s *stubRoleService) List(ctx context.Context, p *domain.Principal, page int) (domain.Page[*domain.Role], error) {
	return s.listFn(ctx, p, page)
}

func (s *stubRoleService) Get(ctx context.Context, p *domain.Principal, id string) (*domain.Role, error) {
	return s.getFn(ctx, p, id)
}

func (s *stubRoleService) GetByName(ctx context.Context, p *domain.Principal, name string) (*domain.Role, error) {
	return s.getByNameFn(ctx, p, name)
}

func (s *stubRoleService) Create(ctx context.Context, p *domain.Principal, in ports.CreateRoleInput) (*domain.Role, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubRoleService) Update(ctx context.Context, p *domain.Principal, id string, in ports.UpdateRoleInput) (*domain.Role, error) {
	return s.updateFn(ctx, p, id, in)
}

func (s *stubRoleService) Delete(ctx context.Context, p *domain.Principal, id string) error {
	return s.deleteFn(ctx, p, id)
}

func (s *stubRoleService) GrantPermission(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error) {
	return s.grantPermissionFn(ctx, p, roleID, permission)
}

func (s *stubRoleService) RevokePermission(ctx context.Context, p *domain.Principal, roleID, permission string) (*domain.Role, error) {
	return s.revokePermissionFn(ctx, p, roleID, permission)
}

func (s *stubRoleService) AuthorizeUpdate(ctx context.Context, p *domain.Principal, id string) error {
	if s.authorizeUpdateFn == nil {
		return nil
	}
	return s.authorizeUpdateFn(ctx, p, id)
}

func TestRoleHandler_Create(t *testing.T) {
	h := NewRoleHandler(&stubRoleService{createFn: func(_ context.Context, _ *domain.Principal, in ports.CreateRoleInput) (*domain.Role, error) {
		return &domain.Role{ID: "r1", Name: in.Name, Label: in.Label}, nil
	}})

	c, rec := newContext(http.MethodPost, "/roles", `{"name":"editor","label":"Editor"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Successfully created the role editor with the label Editor" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRoleHandler_CreateRequiresLabel(t *testing.T) {
	h := NewRoleHandler(&stubRoleService{})

	c, _ := newContext(http.MethodPost, "/roles", `{"name":"editor"}`)
	err := h.Create(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["label"] != "The label field is required." {
		t.Fatalf("expected label error, got %v", err)
	}
}

func TestRoleHandler_UpdatePassesOnlyGivenFields(t *testing.T) {
	h := NewRoleHandler(&stubRoleService{updateFn: func(_ context.Context, _ *domain.Principal, id string, in ports.UpdateRoleInput) (*domain.Role, error) {
		if in.Name != nil {
			t.Fatalf("name should be untouched")
		}
		if in.Label == nil || *in.Label != "Chief Editor" {
			t.Fatalf("label not forwarded")
		}
		return &domain.Role{ID: id, Name: "editor", Label: *in.Label}, nil
	}})

	c, rec := newContext(http.MethodPut, "/roles/r1", `{"label":"Chief Editor"}`)
	c.SetParamNames("id")
	c.SetParamValues("r1")
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg := decodeMessage(t, rec); msg != "Successfully updated the role Chief Editor" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRoleHandler_GetByNameDeduplicatesPermissions(t *testing.T) {
	h := NewRoleHandler(&stubRoleService{getByNameFn: func(_ context.Context, _ *domain.Principal, name string) (*domain.Role, error) {
		return &domain.Role{ID: "r1", Name: name, Label: "Editor", Permissions: []string{"show_user", "list_users", "show_user"}}, nil
	}})

	c, rec := newContext(http.MethodGet, "/roles/byName/editor", "")
	c.SetParamNames("name")
	c.SetParamValues("editor")
	if err := h.GetByName(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res roleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Permissions) != 2 || res.Permissions[0] != "show_user" || res.Permissions[1] != "list_users" {
		t.Fatalf("unexpected permissions %v", res.Permissions)
	}
}

func TestRoleHandler_DeleteForbidden(t *testing.T) {
	h := NewRoleHandler(&stubRoleService{deleteFn: func(context.Context, *domain.Principal, string) error {
		return domain.ErrForbidden
	}})

	c, _ := newContext(http.MethodDelete, "/roles/r1", "")
	c.SetParamNames("id")
	c.SetParamValues("r1")
	if err := h.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRoleHandler_GrantAndRevokePermission(t *testing.T) {
	role := &domain.Role{ID: "r1", Name: "editor"}
	h := NewRoleHandler(&stubRoleService{
		grantPermissionFn: func(_ context.Context, _ *domain.Principal, roleID, permission string) (*domain.Role, error) {
			if roleID != "r1" || permission != "show_user" {
				t.Fatalf("unexpected grant %s/%s", roleID, permission)
			}
			return role, nil
		},
		revokePermissionFn: func(_ context.Context, _ *domain.Principal, _, permission string) (*domain.Role, error) {
			return nil, &domain.NotAssignedError{Permission: permission, Role: role.Name}
		},
	})

	c, rec := newContext(http.MethodPost, "/roles/r1/grantPermission", `{"permission":"show_user"}`)
	c.SetParamNames("id")
	c.SetParamValues("r1")
	if err := h.GrantPermission(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg := decodeMessage(t, rec); msg != "Successfully granted the permission show_user to the role editor" {
		t.Fatalf("unexpected message %q", msg)
	}

	c, _ = newContext(http.MethodPost, "/roles/r1/revokePermission", `{"permission":"delete_user"}`)
	c.SetParamNames("id")
	c.SetParamValues("r1")
	if err := h.RevokePermission(c); !errors.Is(err, domain.ErrPermissionNotAssignedToRole) {
		t.Fatalf("expected ErrPermissionNotAssignedToRole, got %v", err)
	}
}

func TestRoleHandler_UpdateDenialBeatsInvalidBody(t *testing.T) {
	h := NewRoleHandler(&stubRoleService{authorizeUpdateFn: func(context.Context, *domain.Principal, string) error {
		return domain.ErrForbidden
	}})

	c, _ := newContext(http.MethodPut, "/roles/r1", `{"name":"`+strings.Repeat("a", 101)+`"}`)
	c.SetParamNames("id")
	c.SetParamValues("r1")
	if err := h.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
