package domain

import "time"

// SuperAdminRole is the name of the reserved role created once at bootstrap.
// Its holder bypasses every permission check and the role itself can never
// be renamed or deleted.
const SuperAdminRole = "superadmin"

// SuperAdminLabel is the label the reserved role is seeded with.
const SuperAdminLabel = "Super Admin"

// Role groups permissions. Permissions holds permission names, deduplicated.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleChanges carries a partial role update. Nil fields are left untouched.
type RoleChanges struct {
	Name  *string
	Label *string
}

// Apply copies every non-nil change onto r.
func (c RoleChanges) Apply(r *Role) {
	if c.Name != nil {
		r.Name = *c.Name
	}
	if c.Label != nil {
		r.Label = *c.Label
	}
}

// Permission is a named capability checked against a principal's resolved set.
type Permission struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Permission names checked by the API.
const (
	PermCreateUser        = "create_user"
	PermListUsers         = "list_users"
	PermShowUser          = "show_user"
	PermUpdateUser        = "update_user"
	PermDeleteUser        = "delete_user"
	PermListRoles         = "list_roles"
	PermShowRole          = "show_role"
	PermManageRoles       = "manage_roles"
	PermManagePermissions = "manage_permissions"
)

// DefaultPermissions is the catalogue seeded at bootstrap.
var DefaultPermissions = []Permission{
	{Name: PermCreateUser, Label: "Create user"},
	{Name: PermListUsers, Label: "List users"},
	{Name: PermShowUser, Label: "Show user details"},
	{Name: PermUpdateUser, Label: "Update user"},
	{Name: PermDeleteUser, Label: "Delete user"},
	{Name: PermListRoles, Label: "List roles"},
	{Name: PermShowRole, Label: "Show role details"},
	{Name: PermManageRoles, Label: "Manage roles"},
	{Name: PermManagePermissions, Label: "Manage permissions"},
}
