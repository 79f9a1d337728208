package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/core/domain"
)

// Gate decides whether a principal holds a permission.
type Gate interface {
	Authorize(p *domain.Principal, permission string) error
}

// RequirePermission rejects the request unless the principal set by Auth
// holds permission. Superadmins always pass.
func RequirePermission(gate Gate, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := gate.Authorize(PrincipalFrom(c), permission); err != nil {
				return err
			}
			return next(c)
		}
	}
}
