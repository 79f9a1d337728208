package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Lookup misses.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")
)

// Assignment state failures.
var ErrPermissionNotAssignedToRole = errors.New("permission not assigned to role")

// Store write failures.
var (
	ErrUserNotCreated = errors.New("user not created")
	ErrUserNotUpdated = errors.New("user not updated")
	ErrUserNotDeleted = errors.New("user not deleted")
	ErrRoleNotCreated = errors.New("role not created")
	ErrRoleNotUpdated = errors.New("role not updated")
	ErrRoleNotDeleted = errors.New("role not deleted")
)

// Authentication and authorization.
var (
	ErrForbidden          = errors.New("action unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// NotFoundError names the identifier that missed. It unwraps to one of the
// lookup sentinels above.
type NotFoundError struct {
	Entity string
	Key    string
	Err    error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("The %s %s does not exist", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// UserNotFound builds the NotFoundError for a user key (id or email).
func UserNotFound(key string) error {
	return &NotFoundError{Entity: "user", Key: key, Err: ErrUserNotFound}
}

// RoleNotFound builds the NotFoundError for a role key (id or name).
func RoleNotFound(key string) error {
	return &NotFoundError{Entity: "role", Key: key, Err: ErrRoleNotFound}
}

// PermissionNotFound builds the NotFoundError for a permission key.
func PermissionNotFound(key string) error {
	return &NotFoundError{Entity: "permission", Key: key, Err: ErrPermissionNotFound}
}

// NotAssignedError reports a revoke of a permission the role does not hold.
type NotAssignedError struct {
	Permission string
	Role       string
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("The permission %s is not assigned to the role %s", e.Permission, e.Role)
}

func (e *NotAssignedError) Unwrap() error { return ErrPermissionNotAssignedToRole }

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError holding a single field message.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}
