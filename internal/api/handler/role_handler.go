package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-api/internal/api/metrics"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// RoleHandler handles HTTP requests for roles and their permissions.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List handles GET /roles.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number (1-based)"
// @Success      200   {object}  roleListResponse
// @Failure      403   {object}  errorResponse
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, pageParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleListResponse(page))
}

// Get handles GET /roles/:id.
//
// @Summary      Get a role by ID
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  roleResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	role, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// GetByName handles GET /roles/byName/:name.
//
// @Summary      Get a role by name
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Role name"
// @Success      200   {object}  roleResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /roles/byName/{name} [get]
func (h *RoleHandler) GetByName(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	role, err := h.service.GetByName(c.Request().Context(), p, c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(role))
}

// Create handles POST /roles.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role details"
// @Success      201   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req createRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.service.Create(c.Request().Context(), p, ports.CreateRoleInput{Name: req.Name, Label: req.Label})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Successfully created the role %s with the label %s", role.Name, role.Label),
	})
}

// Update handles PUT /roles/:id.
//
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Role ID"
// @Param        body  body      updateRoleRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /roles/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	var req updateRoleRequest
	if err := bindAuthorizeValidate(c, &req, func() error {
		return h.service.AuthorizeUpdate(ctx, p, c.Param("id"))
	}); err != nil {
		return err
	}

	role, err := h.service.Update(ctx, p, c.Param("id"), ports.UpdateRoleInput{Name: req.Name, Label: req.Label})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully updated the role %s", role.Label),
	})
}

// Delete handles DELETE /roles/:id.
//
// @Summary      Delete a role
// @Tags         roles
// @Security     BearerAuth
// @Param        id  path  string  true  "Role ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GrantPermission handles POST /roles/:id/grantPermission.
//
// @Summary      Grant a permission to a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "Role ID"
// @Param        body  body      permissionAssignmentRequest  true  "Permission name"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /roles/{id}/grantPermission [post]
func (h *RoleHandler) GrantPermission(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req permissionAssignmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.service.GrantPermission(c.Request().Context(), p, c.Param("id"), req.Permission)
	if err != nil {
		return err
	}
	metrics.AssignmentsTotal.WithLabelValues("permission_role", "grant").Inc()

	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully granted the permission %s to the role %s", req.Permission, role.Name),
	})
}

// RevokePermission handles POST /roles/:id/revokePermission.
//
// @Summary      Revoke a permission from a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                       true  "Role ID"
// @Param        body  body      permissionAssignmentRequest  true  "Permission name"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /roles/{id}/revokePermission [post]
func (h *RoleHandler) RevokePermission(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req permissionAssignmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.service.RevokePermission(c.Request().Context(), p, c.Param("id"), req.Permission)
	if err != nil {
		return err
	}
	metrics.AssignmentsTotal.WithLabelValues("permission_role", "revoke").Inc()

	return c.JSON(http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully revoked the permission %s from the role %s", req.Permission, role.Name),
	})
}
