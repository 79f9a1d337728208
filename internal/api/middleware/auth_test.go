package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

type stubAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*ports.Session, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*ports.Session, error) {
	return s.authenticateFn(ctx, token)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	session := &ports.Session{
		Principal: &domain.Principal{User: &domain.User{ID: "u1"}},
		TokenID:   "jti-1",
	}
	stub := &stubAuthenticator{authenticateFn: func(_ context.Context, token string) (*ports.Session, error) {
		if token != "good" {
			t.Fatalf("unexpected token %q", token)
		}
		return session, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(stub)(func(c echo.Context) error {
		called = true
		if SessionFrom(c) != session {
			t.Fatalf("session not set")
		}
		if PrincipalFrom(c).ID() != "u1" {
			t.Fatalf("principal not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsBadHeaders(t *testing.T) {
	stub := &stubAuthenticator{authenticateFn: func(context.Context, string) (*ports.Session, error) {
		t.Fatalf("authenticator should not be called")
		return nil, nil
	}}

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Token abc",
		"empty token":  "Bearer ",
	} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth(stub)(func(c echo.Context) error {
			t.Fatalf("%s: should not reach next", name)
			return nil
		})
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestAuthMiddleware_PropagatesAuthenticatorError(t *testing.T) {
	e := echo.New()
	stub := &stubAuthenticator{authenticateFn: func(context.Context, string) (*ports.Session, error) {
		return nil, domain.ErrUnauthenticated
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	c := e.NewContext(req, httptest.NewRecorder())

	err := Auth(stub)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
