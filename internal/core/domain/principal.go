package domain

import "sort"

// PermissionSet is a deduplicated set of permission names.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from names, dropping duplicates.
func NewPermissionSet(names ...string) PermissionSet {
	s := make(PermissionSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in lexical order.
func (s PermissionSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Principal is the authenticated user making a request, together with the
// permission set resolved for it when the request started.
type Principal struct {
	User        *User
	Permissions PermissionSet
}

// ID returns the principal's user ID.
func (p *Principal) ID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

// IsSuperAdmin reports whether the principal holds the superadmin role.
func (p *Principal) IsSuperAdmin() bool {
	return p != nil && p.User != nil && p.User.IsSuperAdmin()
}
