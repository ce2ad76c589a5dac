package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/middleware"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/service"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/pagination"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/response"
)

type PurchaseOrderHandler struct {
	orderService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(orderService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(access.RoleManager, access.RoleGeneralManager, access.RoleAdmin)

	orders := router.Group("/purchase-orders", staff)
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/send", h.SendOrder)
		orders.POST("/:id/approve", h.ApproveOrder)
		orders.POST("/:id/receive", h.ReceiveOrder)
	}
}

// CreateOrder handles POST /purchase-orders
// @Summary      Create a purchase order
// @Description  Creates a DRAFT order with a generated PO-YYYY-NNNN number
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrderDTO  true  "Order Payload"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /purchase-orders [post]
func (h *PurchaseOrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.CreateOrderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders handles GET /purchase-orders
// @Summary      List purchase orders visible to the caller
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        status       query  string  false  "Filter by status"
// @Param        supplier_id  query  string  false  "Filter by supplier"
// @Param        search       query  string  false  "Search order number/notes"
// @Param        page         query  int     false  "Page number"
// @Param        limit        query  int     false  "Page size"
// @Success      200  {object}  response.Response
// @Router       /purchase-orders [get]
func (h *PurchaseOrderHandler) ListOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	orders, total, err := h.orderService.List(c.Request.Context(), actor, service.ListOrdersQuery{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
		Search:     c.Query("search"),
		Page:       params.Page,
		Limit:      params.Limit,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
		"pages":  params.Pages(total),
	}))
}

// GetOrder handles GET /purchase-orders/:id
// @Summary      Get a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      404  {object}  response.Response
// @Router       /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrder handles PUT /purchase-orders/:id
// @Summary      Edit a draft order
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Order ID"
// @Param        payload  body      service.UpdateOrderDTO  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) UpdateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.UpdateOrderDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeleteOrder handles DELETE /purchase-orders/:id
// @Summary      Delete a draft order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) DeleteOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"message": "purchase order deleted"}))
}

// SendOrder handles POST /purchase-orders/:id/send
// @Summary      Place a draft order with the supplier
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      400  {object}  response.Response
// @Router       /purchase-orders/{id}/send [post]
func (h *PurchaseOrderHandler) SendOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	order, err := h.orderService.Send(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ApproveOrder handles POST /purchase-orders/:id/approve
// @Summary      Approve a purchase order
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      403  {object}  response.Response
// @Router       /purchase-orders/{id}/approve [post]
func (h *PurchaseOrderHandler) ApproveOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	order, err := h.orderService.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// ReceiveOrder handles POST /purchase-orders/:id/receive
// @Summary      Receive a purchase order delivery
// @Description  Marks the order RECEIVED, increments item stock and records inbound movements
// @Tags         purchase-orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=service.OrderResponse}
// @Failure      400  {object}  response.Response
// @Router       /purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) ReceiveOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	order, err := h.orderService.Receive(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}
