package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// sessionKey is the echo context key the Auth middleware stores the session under.
const sessionKey = "session"

// SetSession attaches an authenticated session to the request context.
func SetSession(c echo.Context, s *ports.Session) {
	c.Set(sessionKey, s)
}

// SessionFrom returns the session set by Auth, or nil on public routes.
func SessionFrom(c echo.Context) *ports.Session {
	s, _ := c.Get(sessionKey).(*ports.Session)
	return s
}

// PrincipalFrom returns the authenticated principal, or nil.
func PrincipalFrom(c echo.Context) *domain.Principal {
	if s := SessionFrom(c); s != nil {
		return s.Principal
	}
	return nil
}
