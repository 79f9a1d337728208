package domain

import "time"

// DateLayout is the wire and storage format of a user's date of birth.
const DateLayout = "2006-01-02"

// RoleRef is the slice of a Role a User carries around: enough to test
// membership by name and to resolve permissions by ID.
type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User models an account managed by the API. Roles is loaded eagerly with
// the user and is never mutated in place; grants and revokes go through the
// store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Gender       string    `json:"gender"`
	NationalID   string    `json:"national_id"`
	Address      string    `json:"address"`
	Country      string    `json:"country"`
	Phone        string    `json:"phone"`
	Roles        []RoleRef `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Age returns the number of full years between the date of birth and now.
func (u *User) Age(now time.Time) int {
	if u.DateOfBirth.IsZero() {
		return 0
	}
	dob := u.DateOfBirth.UTC()
	now = now.UTC()
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// HasRole reports whether the user currently holds the role with that name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the user holds the reserved superadmin role.
func (u *User) IsSuperAdmin() bool {
	return u.HasRole(SuperAdminRole)
}

// RoleIDs returns the IDs of the roles assigned to the user.
func (u *User) RoleIDs() []string {
	ids := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		ids = append(ids, r.ID)
	}
	return ids
}

// RoleNames returns the names of the roles assigned to the user.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// UserChanges carries a partial update. Nil fields are left untouched.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	DateOfBirth  *time.Time
	Gender       *string
	NationalID   *string
	Address      *string
	Country      *string
	Phone        *string
}

// Apply copies every non-nil change onto u.
func (c UserChanges) Apply(u *User) {
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.DateOfBirth != nil {
		u.DateOfBirth = *c.DateOfBirth
	}
	if c.Gender != nil {
		u.Gender = *c.Gender
	}
	if c.NationalID != nil {
		u.NationalID = *c.NationalID
	}
	if c.Address != nil {
		u.Address = *c.Address
	}
	if c.Country != nil {
		u.Country = *c.Country
	}
	if c.Phone != nil {
		u.Phone = *c.Phone
	}
}
