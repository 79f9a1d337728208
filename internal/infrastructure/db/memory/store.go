// Package memory is a process-local implementation of the repository ports.
// It backs STORE=memory and the service and router tests.
package memory

import (
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// Store holds every collection behind a single lock so that association
// updates are atomic with respect to reads.
type Store struct {
	mu sync.RWMutex

	users     map[string]*domain.User
	userOrder []string

	roles     map[string]*domain.Role
	roleOrder []string

	permissions     map[string]*domain.Permission
	permissionOrder []string

	userRoles       map[string][]string
	rolePermissions map[string][]string
}

func NewStore() *Store {
	return &Store{
		users:           make(map[string]*domain.User),
		roles:           make(map[string]*domain.Role),
		permissions:     make(map[string]*domain.Permission),
		userRoles:       make(map[string][]string),
		rolePermissions: make(map[string][]string),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Roles returns the role repository view of the store.
func (s *Store) Roles() *RoleRepository { return &RoleRepository{s: s} }

// Permissions returns the permission repository view of the store.
func (s *Store) Permissions() *PermissionRepository { return &PermissionRepository{s: s} }

func newID() string {
	return primitive.NewObjectID().Hex()
}

// page slices order by offset and limit.
func page(order []string, offset, limit int) []string {
	if offset >= len(order) {
		return nil
	}
	end := len(order)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return order[offset:end]
}

func removeID(ids []string, id string) ([]string, bool) {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids, false
	}
	return slices.Delete(ids, i, i+1), true
}

// loadUser copies u and fills its role refs. Callers hold the lock.
func (s *Store) loadUser(u *domain.User) *domain.User {
	out := *u
	out.Roles = make([]domain.RoleRef, 0, len(s.userRoles[u.ID]))
	for _, rid := range s.userRoles[u.ID] {
		if r, ok := s.roles[rid]; ok {
			out.Roles = append(out.Roles, domain.RoleRef{ID: r.ID, Name: r.Name})
		}
	}
	return &out
}

// loadRole copies r and fills its permission names. Callers hold the lock.
func (s *Store) loadRole(r *domain.Role) *domain.Role {
	out := *r
	out.Permissions = make([]string, 0, len(s.rolePermissions[r.ID]))
	for _, pid := range s.rolePermissions[r.ID] {
		if p, ok := s.permissions[pid]; ok {
			out.Permissions = append(out.Permissions, p.Name)
		}
	}
	return &out
}
