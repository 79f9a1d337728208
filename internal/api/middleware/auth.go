package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/ports"
)

// Authenticator turns a raw bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*ports.Session, error)
}

// Auth validates the bearer token and injects the session into context.
func Auth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			session, err := auth.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			SetSession(c, session)
			return next(c)
		}
	}
}
