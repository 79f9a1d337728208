package handler

import (
	"time"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// --- Request → Service input ---

// toCreateUserInput expects a request that already passed validation.
func toCreateUserInput(req createUserRequest) ports.CreateUserInput {
	dob, _ := time.Parse(domain.DateLayout, req.DateOfBirth)
	return ports.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: dob,
		Gender:      req.Gender,
		NationalID:  req.NationalID,
		Address:     req.Address,
		Country:     req.Country,
		Phone:       req.Phone,
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Gender:     req.Gender,
		NationalID: req.NationalID,
		Address:    req.Address,
		Country:    req.Country,
		Phone:      req.Phone,
	}
	if req.DateOfBirth != nil {
		if dob, err := time.Parse(domain.DateLayout, *req.DateOfBirth); err == nil {
			in.DateOfBirth = &dob
		}
	}
	return in
}

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User, now time.Time) userResponse {
	var dob string
	if !u.DateOfBirth.IsZero() {
		dob = u.DateOfBirth.UTC().Format(domain.DateLayout)
	}
	return userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Age:         u.Age(now),
		DateOfBirth: dob,
		Gender:      u.Gender,
		NationalID:  u.NationalID,
		Address:     u.Address,
		Country:     u.Country,
		Phone:       u.Phone,
		Roles:       u.RoleNames(),
	}
}

func toRoleResponse(r *domain.Role) roleResponse {
	perms := domain.NewPermissionSet(r.Permissions...)
	names := make([]string, 0, len(perms))
	for _, p := range r.Permissions {
		if _, ok := perms[p]; ok {
			names = append(names, p)
			delete(perms, p)
		}
	}
	return roleResponse{ID: r.ID, Name: r.Name, Label: r.Label, Permissions: names}
}

func toPageMeta[T any](p domain.Page[T]) pageMeta {
	return pageMeta{Total: p.Total, Page: p.Page, PerPage: p.PerPage, TotalPages: p.TotalPages()}
}

func toUserListResponse(p domain.Page[*domain.User], now time.Time) userListResponse {
	data := make([]userResponse, 0, len(p.Items))
	for _, u := range p.Items {
		data = append(data, toUserResponse(u, now))
	}
	return userListResponse{Data: data, Meta: toPageMeta(p)}
}

func toRoleListResponse(p domain.Page[*domain.Role]) roleListResponse {
	data := make([]roleResponse, 0, len(p.Items))
	for _, r := range p.Items {
		data = append(data, toRoleResponse(r))
	}
	return roleListResponse{Data: data, Meta: toPageMeta(p)}
}
