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
	"github.com/google/uuid"
)

type AuditHandler struct {
	auditService service.AuditService
	auth         gin.HandlerFunc
}

func NewAuditHandler(auditService service.AuditService, auth gin.HandlerFunc) *AuditHandler {
	useJSONFieldNames()
	return &AuditHandler{auditService: auditService, auth: auth}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs", h.auth, middleware.RequireRole(model.RoleAdmin))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs returns audit records newest first
// @Summary      Get audit logs
// @Description  Admin only. Filter by action, entity or acting user.
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action       query     string  false  "Action"
// @Param        entity_type  query     string  false  "Entity type"
// @Param        entity_id    query     string  false  "Entity ID"
// @Param        user_id      query     string  false  "Acting user ID"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 10)"
// @Success      200          {object}  response.Response{data=object{logs=[]model.AuditLog,pagination=pagination.Meta}}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var query service.AuditQuery
	if !bindQuery(c, &query) {
		return
	}
	p := pagination.Parse(c)

	filter := repository.AuditFilter{
		Action:     query.Action,
		EntityType: query.EntityType,
		EntityID:   query.EntityID,
	}
	if query.UserID != "" {
		// already validated by the uuid binding rule
		userID := uuid.MustParse(query.UserID)
		filter.UserID = &userID
	}

	logs, total, err := h.auditService.ListAuditLogs(c.Request.Context(), actor, filter, p.Page, p.Limit)
	if err != nil {
		response.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"logs":       logs,
		"pagination": pagination.NewMeta(p, total),
	}))
}
