package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/api/metrics"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// UserHandler handles HTTP requests for user accounts and their roles.
type UserHandler struct {
	service ports.UserService
	now     func() time.Time
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service, now: time.Now}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number (1-based)"
// @Success      200   {object}  userListResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, pageParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserListResponse(page, h.now()))
}

// Get handles GET /users/:id.
//
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	u, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u, h.now()))
}

// GetByEmail handles GET /users/byEmail/:email.
//
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email  path      string  true  "User email"
// @Success      200    {object}  userResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /users/byEmail/{email} [get]
func (h *UserHandler) GetByEmail(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	u, err := h.service.GetByEmail(c.Request().Context(), p, c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u, h.now()))
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	u, err := h.service.Create(c.Request().Context(), p, toCreateUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Successfully created the user %s", u.Name),
	})
}

// Update handles PUT /users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	var req updateUserRequest
	if err := bindAuthorizeValidate(c, &req, func() error {
		return h.service.AuthorizeUpdate(ctx, p, c.Param("id"))
	}); err != nil {
		return err
	}

	u, err := h.service.Update(ctx, p, c.Param("id"), toUpdateUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully updated the user %s", u.Name),
	})
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GrantRole handles POST /users/:id/grantRole.
//
// @Summary      Grant a role to a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      roleAssignmentRequest  true  "Role name"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/grantRole [post]
func (h *UserHandler) GrantRole(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req roleAssignmentRequest
	if err := bindAuthorizeValidate(c, &req, func() error {
		return h.service.AuthorizeGrantRole(p, req.Role)
	}); err != nil {
		return err
	}

	u, err := h.service.GrantRole(c.Request().Context(), p, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	metrics.AssignmentsTotal.WithLabelValues("role_user", "grant").Inc()

	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully granted the role %s to the user %s", req.Role, u.Name),
	})
}

// RevokeRole handles POST /users/:id/revokeRole.
//
// @Summary      Revoke a role from a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User ID"
// @Param        body  body      roleAssignmentRequest  true  "Role name"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id}/revokeRole [post]
func (h *UserHandler) RevokeRole(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req roleAssignmentRequest
	if err := bindAuthorizeValidate(c, &req, func() error {
		return h.service.AuthorizeRevokeRole(p)
	}); err != nil {
		return err
	}

	u, err := h.service.RevokeRole(c.Request().Context(), p, c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	metrics.AssignmentsTotal.WithLabelValues("role_user", "revoke").Inc()

	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully revoked the role %s from the user %s", req.Role, u.Name),
	})
}
