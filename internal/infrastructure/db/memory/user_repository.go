package memory

import (
	"context"
	"slices"
	"time"

	"github.com/99minutos/identity-api/internal/core/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.UserNotFound(id)
	}
	return r.s.loadUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, id := range r.s.userOrder {
		if u := r.s.users[id]; u.Email == email {
			return r.s.loadUser(u), nil
		}
	}
	return nil, domain.UserNotFound(email)
}

func (r *UserRepository) List(_ context.Context, offset, limit int) ([]*domain.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := page(r.s.userOrder, offset, limit)
	out := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.loadUser(r.s.users[id]))
	}
	return out, int64(len(r.s.userOrder)), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserNotCreated
		}
	}

	stored := *user
	stored.ID = newID()
	stored.Roles = nil
	r.s.users[stored.ID] = &stored
	r.s.userOrder = append(r.s.userOrder, stored.ID)
	return r.s.loadUser(&stored), nil
}

func (r *UserRepository) Update(_ context.Context, id string, changes domain.UserChanges) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.UserNotFound(id)
	}
	if changes.Email != nil {
		for _, other := range r.s.users {
			if other.ID != id && other.Email == *changes.Email {
				return nil, domain.ErrUserNotUpdated
			}
		}
	}

	updated := *u
	changes.Apply(&updated)
	updated.UpdatedAt = time.Now().UTC()
	r.s.users[id] = &updated
	return r.s.loadUser(&updated), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.UserNotFound(id)
	}
	delete(r.s.users, id)
	delete(r.s.userRoles, id)
	r.s.userOrder, _ = removeID(r.s.userOrder, id)
	return nil
}

func (r *UserRepository) AttachRole(_ context.Context, userID, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return domain.UserNotFound(userID)
	}
	if _, ok := r.s.roles[roleID]; !ok {
		return domain.RoleNotFound(roleID)
	}
	if !slices.Contains(r.s.userRoles[userID], roleID) {
		r.s.userRoles[userID] = append(r.s.userRoles[userID], roleID)
	}
	return nil
}

func (r *UserRepository) DetachRole(_ context.Context, userID, roleID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed bool
	r.s.userRoles[userID], removed = removeID(r.s.userRoles[userID], roleID)
	return removed, nil
}
