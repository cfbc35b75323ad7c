package handler

import (
	"net/http"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requests service.RequestService
	auth     gin.HandlerFunc
	audit    middleware.AuditRecorder
}

func NewRequestHandler(requests service.RequestService, auth gin.HandlerFunc, audit middleware.AuditRecorder) *RequestHandler {
	useJSONFieldNames()
	return &RequestHandler{requests: requests, auth: auth, audit: audit}
}

// RegisterRoutes binds the request endpoints to the /api group
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviewers := middleware.RequireRole(model.RoleDeptHead, model.RoleAdmin)

	group := router.Group("/requests", h.auth)
	{
		group.POST("", middleware.Audit(h.audit, model.ActionCreateRequest, model.EntityRequest), h.CreateRequest)
		group.GET("", h.ListRequests)
		group.GET("/:id", h.GetRequest)
		group.POST("/:id/approve", reviewers, middleware.Audit(h.audit, model.ActionApproveRequest, model.EntityRequest), h.ApproveRequest)
		group.POST("/:id/reject", reviewers, middleware.Audit(h.audit, model.ActionRejectRequest, model.EntityRequest), h.RejectRequest)
	}
}

// CreateRequest submits a new procurement request
// @Summary      Create request
// @Description  Creates a pending request in the caller's department
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRequestInput  true  "Request"
// @Success      201      {object}  response.Response{data=object{request=service.RequestResponse}}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var input service.CreateRequestInput
	if !bindJSON(c, &input) {
		return
	}

	req, err := h.requests.CreateRequest(c.Request.Context(), actor, input)
	if err != nil {
		response.Abort(c, err)
		return
	}

	data := gin.H{"request": req}
	middleware.SetResult(c, data)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, data))
}

// ListRequests returns the requests visible to the caller
// @Summary      List requests
// @Description  Requesters see their own, department heads their department, procurement and admins everything
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Status filter"
// @Param        department  query     string  false  "Department filter (procurement and admin only)"
// @Param        priority    query     string  false  "Priority filter"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 10)"
// @Success      200         {object}  response.Response{data=object{requests=[]service.RequestResponse,pagination=pagination.Meta}}
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var query service.RequestQuery
	if !bindQuery(c, &query) {
		return
	}
	p := pagination.Parse(c)

	requests, total, err := h.requests.ListRequests(c.Request.Context(), actor, query, p.Page, p.Limit)
	if err != nil {
		response.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"requests":   requests,
		"pagination": pagination.NewMeta(p, total),
	}))
}

// GetRequest returns one request
// @Summary      Get request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=object{request=service.RequestResponse}}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, err := h.requests.GetRequest(c.Request.Context(), actor, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"request": req}))
}

// ApproveRequest approves a pending request
// @Summary      Approve request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=object{request=service.RequestResponse}}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, err := h.requests.ApproveRequest(c.Request.Context(), actor, id)
	if err != nil {
		response.Abort(c, err)
		return
	}

	data := gin.H{"request": req}
	middleware.SetResult(c, data)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}

// RejectRequest rejects a pending request
// @Summary      Reject request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true   "Request ID"
// @Param        payload  body      service.RejectRequestInput  false  "Rejection reason"
// @Success      200      {object}  response.Response{data=object{request=service.RequestResponse}}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input service.RejectRequestInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &input) {
		return
	}

	req, err := h.requests.RejectRequest(c.Request.Context(), actor, id, input)
	if err != nil {
		response.Abort(c, err)
		return
	}

	data := gin.H{"request": req}
	middleware.SetResult(c, data)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}
