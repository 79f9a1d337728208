package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/api/middleware"
	"github.com/99minutos/identity-api/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Auth middleware.
// Its presence proves the middleware ran.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}

// bindAndValidate decodes the JSON body into req and runs the struct rules.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// bindAuthorizeValidate binds the body, then runs authorize before any
// payload error is reported. A denied caller gets the denial even for an
// unreadable body.
func bindAuthorizeValidate(c echo.Context, req any, authorize func() error) error {
	bindErr := c.Bind(req)
	if err := authorize(); err != nil {
		return err
	}
	if bindErr != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// pageParam reads ?page=N, falling back to the first page.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
