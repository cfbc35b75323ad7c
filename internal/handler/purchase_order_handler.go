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

type PurchaseOrderHandler struct {
	orders service.PurchaseOrderService
	auth   gin.HandlerFunc
	audit  middleware.AuditRecorder
}

func NewPurchaseOrderHandler(orders service.PurchaseOrderService, auth gin.HandlerFunc, audit middleware.AuditRecorder) *PurchaseOrderHandler {
	useJSONFieldNames()
	return &PurchaseOrderHandler{orders: orders, auth: auth, audit: audit}
}

// RegisterRoutes binds the purchase order endpoints to the /api group
func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	procurement := middleware.RequireRole(model.RoleProcurement, model.RoleAdmin)

	router.POST("/requests/:id/create-po", h.auth, procurement,
		middleware.Audit(h.audit, model.ActionCreatePurchaseOrder, model.EntityPurchaseOrder), h.CreatePurchaseOrder)

	group := router.Group("/po", h.auth, procurement)
	{
		group.GET("", h.ListPurchaseOrders)
		group.GET("/:id", h.GetPurchaseOrder)
		group.POST("/:id/mark-delivered", middleware.Audit(h.audit, model.ActionMarkDelivered, model.EntityPurchaseOrder), h.MarkDelivered)
	}
}

// CreatePurchaseOrder issues a purchase order against an approved request
// @Summary      Create purchase order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                            true  "Request ID"
// @Param        payload  body      service.CreatePurchaseOrderInput  true  "Supplier and items"
// @Success      201      {object}  response.Response{data=object{purchase_order=service.PurchaseOrderResponse}}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/requests/{id}/create-po [post]
func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c)
	if !ok {
		return
	}
	var input service.CreatePurchaseOrderInput
	if !bindJSON(c, &input) {
		return
	}

	po, err := h.orders.CreatePurchaseOrder(c.Request.Context(), actor, requestID, input)
	if err != nil {
		response.Abort(c, err)
		return
	}

	data := gin.H{"purchase_order": po}
	middleware.SetResult(c, data)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, data))
}

// ListPurchaseOrders returns purchase orders newest first
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 10)"
// @Success      200     {object}  response.Response{data=object{purchase_orders=[]service.PurchaseOrderResponse,pagination=pagination.Meta}}
// @Failure      403     {object}  response.Response
// @Router       /api/po [get]
func (h *PurchaseOrderHandler) ListPurchaseOrders(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var query service.PurchaseOrderQuery
	if !bindQuery(c, &query) {
		return
	}
	p := pagination.Parse(c)

	orders, total, err := h.orders.ListPurchaseOrders(c.Request.Context(), actor, query, p.Page, p.Limit)
	if err != nil {
		response.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"purchase_orders": orders,
		"pagination":      pagination.NewMeta(p, total),
	}))
}

// GetPurchaseOrder returns one purchase order
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=object{purchase_order=service.PurchaseOrderResponse}}
// @Failure      404  {object}  response.Response
// @Router       /api/po/{id} [get]
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	po, err := h.orders.GetPurchaseOrder(c.Request.Context(), actor, id)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"purchase_order": po}))
}

// MarkDelivered records delivery of a purchase order and completes its request
// @Summary      Mark delivered
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=object{purchase_order=service.PurchaseOrderResponse}}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/po/{id}/mark-delivered [post]
func (h *PurchaseOrderHandler) MarkDelivered(c *gin.Context) {
	actor, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	po, err := h.orders.MarkDelivered(c.Request.Context(), actor, id)
	if err != nil {
		response.Abort(c, err)
		return
	}

	data := gin.H{"purchase_order": po}
	middleware.SetResult(c, data)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}
