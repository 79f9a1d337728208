package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "Route not found"},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"validation", domain.NewValidationError("email", "The email has already been taken."), http.StatusUnprocessableEntity, "The email has already been taken."},
		{"user not found", domain.UserNotFound("u1"), http.StatusNotFound, "The user u1 does not exist"},
		{"not assigned", &domain.NotAssignedError{Permission: "show_user", Role: "editor"}, http.StatusNotFound, "The permission show_user is not assigned to the role editor"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "This action is unauthorized."},
		{"wrapped forbidden", fmt.Errorf("delete role: %w", domain.ErrForbidden), http.StatusForbidden, "This action is unauthorized."},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"write failure", fmt.Errorf("%w: duplicate key", domain.ErrRoleNotCreated), http.StatusInternalServerError, "The role could not be created"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tt.err, c)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var res errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if res.Error != tt.wantError {
				t.Fatalf("expected %q, got %q", tt.wantError, res.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/users", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(&domain.ValidationError{Fields: map[string]string{
		"name":  "The name field is required.",
		"email": "The email must be a valid email address.",
	}}, c)

	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Fields) != 2 || res.Fields["name"] == "" {
		t.Fatalf("unexpected fields %v", res.Fields)
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusForbidden || rec.Body.Len() != 0 {
		t.Fatalf("expected bare 403, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestErrorResponse_Envelope(t *testing.T) {
	// handler.errorResponse documents this exact shape
	const want = `{"error":"The given data was invalid.","fields":{"email":"The email field is required."}}`
	got, err := json.Marshal(errorResponse{
		Error:  "The given data was invalid.",
		Fields: map[string]string{"email": "The email field is required."},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
