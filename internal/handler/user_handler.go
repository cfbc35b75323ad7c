package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users service.UserService
	auth  gin.HandlerFunc
	audit middleware.AuditRecorder
}

// UserQuery holds the list filters of GET /users
type UserQuery struct {
	Role   string `form:"role" binding:"omitempty,oneof=requester dept_head procurement admin"`
	Active *bool  `form:"active"`
}

func NewUserHandler(users service.UserService, auth gin.HandlerFunc, audit middleware.AuditRecorder) *UserHandler {
	useJSONFieldNames()
	return &UserHandler{users: users, auth: auth, audit: audit}
}

// RegisterRoutes binds the admin user endpoints to the /api group
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/users", h.auth, middleware.RequireRole(model.RoleAdmin))
	{
		group.GET("", h.ListUsers)
		group.GET("/:id", h.GetUser)
		group.PUT("/:id", middleware.Audit(h.audit, model.ActionUpdateUser, model.EntityUser), h.UpdateUser)
		group.DELETE("/:id", middleware.Audit(h.audit, model.ActionDeleteUser, model.EntityUser), h.DeactivateUser)
	}
}

// ListUsers returns users page by page
// @Summary      List users
// @Description  Admin only. Supports role and active filters.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "Role filter"
// @Param        active  query     bool    false  "Active filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 10)"
// @Success      200     {object}  response.Response{data=object{users=[]service.UserResponse,pagination=pagination.Meta}}
// @Failure      403     {object}  response.Response
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var query UserQuery
	if !bindQuery(c, &query) {
		return
	}
	p := pagination.Parse(c)

	users, total, err := h.users.ListUsers(c.Request.Context(), actor,
		repository.UserFilter{Role: query.Role, Active: query.Active}, p.Page, p.Limit)
	if err != nil {
		response.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"users":      users,
		"pagination": pagination.NewMeta(p, total),
	}))
}

// GetUser returns one user
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=object{user=service.UserResponse}}
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"user": user}))
}

// UpdateUser changes name, role, department or active flag
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "User ID"
// @Param        payload  body      service.AdminUpdateUserRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=object{user=service.UserResponse}}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.AdminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.AdminUpdateUser(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"user": user}))
}

// DeactivateUser disables an account; the record is kept
// @Summary      Deactivate user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=object{user=service.UserResponse}}
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id} [delete]
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.Deactivate(c.Request.Context(), actor, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"message": "User deactivated successfully",
		"user":    user,
	}))
}
