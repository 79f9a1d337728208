package domain

import (
	"errors"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := RoleNotFound("editor")
	if err.Error() != "The role editor does not exist" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected errors.Is ErrRoleNotFound")
	}
	if errors.Is(err, ErrUserNotFound) {
		t.Fatalf("role miss must not match ErrUserNotFound")
	}
}

func TestNotAssignedError(t *testing.T) {
	err := error(&NotAssignedError{Permission: "show_user", Role: "editor"})
	if !errors.Is(err, ErrPermissionNotAssignedToRole) {
		t.Fatalf("expected errors.Is ErrPermissionNotAssignedToRole")
	}
	if err.Error() != "The permission show_user is not assigned to the role editor" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"name":  "The name field is required.",
		"email": "The email has already been taken.",
	}}
	want := "The email has already been taken.; The name field is required."
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
