package memory

import (
	"context"

	"github.com/99minutos/identity-api/internal/core/domain"
)

type PermissionRepository struct {
	s *Store
}

func (r *PermissionRepository) FindByID(_ context.Context, id string) (*domain.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.permissions[id]
	if !ok {
		return nil, domain.PermissionNotFound(id)
	}
	out := *p
	return &out, nil
}

func (r *PermissionRepository) FindByName(_ context.Context, name string) (*domain.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p := r.s.permissionByName(name); p != nil {
		out := *p
		return &out, nil
	}
	return nil, domain.PermissionNotFound(name)
}

func (r *PermissionRepository) List(_ context.Context) ([]*domain.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Permission, 0, len(r.s.permissionOrder))
	for _, id := range r.s.permissionOrder {
		p := *r.s.permissions[id]
		out = append(out, &p)
	}
	return out, nil
}

func (r *PermissionRepository) Ensure(_ context.Context, p domain.Permission) (*domain.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing := r.s.permissionByName(p.Name); existing != nil {
		out := *existing
		return &out, nil
	}

	p.ID = newID()
	r.s.permissions[p.ID] = &p
	r.s.permissionOrder = append(r.s.permissionOrder, p.ID)
	out := p
	return &out, nil
}

func (s *Store) permissionByName(name string) *domain.Permission {
	for _, id := range s.permissionOrder {
		if p := s.permissions[id]; p.Name == name {
			return p
		}
	}
	return nil
}
