package memory

import (
	"context"
	"slices"
	"time"

	"github.com/99minutos/identity-api/internal/core/domain"
)

type RoleRepository struct {
	s *Store
}

func (r *RoleRepository) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, domain.RoleNotFound(id)
	}
	return r.s.loadRole(role), nil
}

func (r *RoleRepository) FindByName(_ context.Context, name string) (*domain.Role, error) {
	return r.findBy(name, func(role *domain.Role) bool { return role.Name == name })
}

func (r *RoleRepository) FindByLabel(_ context.Context, label string) (*domain.Role, error) {
	return r.findBy(label, func(role *domain.Role) bool { return role.Label == label })
}

func (r *RoleRepository) findBy(key string, match func(*domain.Role) bool) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range r.s.roleOrder {
		if role := r.s.roles[id]; match(role) {
			return r.s.loadRole(role), nil
		}
	}
	return nil, domain.RoleNotFound(key)
}

func (r *RoleRepository) List(_ context.Context, offset, limit int) ([]*domain.Role, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := page(r.s.roleOrder, offset, limit)
	out := make([]*domain.Role, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.loadRole(r.s.roles[id]))
	}
	return out, int64(len(r.s.roleOrder)), nil
}

func (r *RoleRepository) Create(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.roles {
		if other.Name == role.Name || other.Label == role.Label {
			return nil, domain.ErrRoleNotCreated
		}
	}

	stored := *role
	stored.ID = newID()
	stored.Permissions = nil
	r.s.roles[stored.ID] = &stored
	r.s.roleOrder = append(r.s.roleOrder, stored.ID)
	return r.s.loadRole(&stored), nil
}

func (r *RoleRepository) Update(_ context.Context, id string, changes domain.RoleChanges) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	role, ok := r.s.roles[id]
	if !ok {
		return nil, domain.RoleNotFound(id)
	}

	updated := *role
	changes.Apply(&updated)
	for _, other := range r.s.roles {
		if other.ID != id && (other.Name == updated.Name || other.Label == updated.Label) {
			return nil, domain.ErrRoleNotUpdated
		}
	}
	updated.UpdatedAt = time.Now().UTC()
	r.s.roles[id] = &updated
	return r.s.loadRole(&updated), nil
}

func (r *RoleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[id]; !ok {
		return domain.RoleNotFound(id)
	}
	delete(r.s.roles, id)
	delete(r.s.rolePermissions, id)
	r.s.roleOrder, _ = removeID(r.s.roleOrder, id)
	for uid, rids := range r.s.userRoles {
		r.s.userRoles[uid], _ = removeID(rids, id)
	}
	return nil
}

func (r *RoleRepository) AttachPermission(_ context.Context, roleID, permissionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.roles[roleID]; !ok {
		return domain.RoleNotFound(roleID)
	}
	if _, ok := r.s.permissions[permissionID]; !ok {
		return domain.PermissionNotFound(permissionID)
	}
	if !slices.Contains(r.s.rolePermissions[roleID], permissionID) {
		r.s.rolePermissions[roleID] = append(r.s.rolePermissions[roleID], permissionID)
	}
	return nil
}

func (r *RoleRepository) DetachPermission(_ context.Context, roleID, permissionID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed bool
	r.s.rolePermissions[roleID], removed = removeID(r.s.rolePermissions[roleID], permissionID)
	return removed, nil
}

func (r *RoleRepository) PermissionNames(_ context.Context, roleIDs []string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var names []string
	for _, rid := range roleIDs {
		for _, pid := range r.s.rolePermissions[rid] {
			if p, ok := r.s.permissions[pid]; ok {
				names = append(names, p.Name)
			}
		}
	}
	return names, nil
}
