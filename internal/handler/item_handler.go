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

type ItemHandler struct {
	itemService service.ItemService
}

func NewItemHandler(itemService service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(access.RoleManager, access.RoleGeneralManager, access.RoleAdmin)

	items := router.Group("/items")
	{
		// Reads are open to every authenticated role so employees can browse
		// the catalog when composing a request.
		items.GET("", middleware.RequireAnyRole(), h.ListItems)
		items.GET("/low-stock", staff, h.ListLowStock)
		items.GET("/:id", middleware.RequireAnyRole(), h.GetItem)
		items.GET("/:id/movements", staff, h.ListMovements)

		items.POST("", staff, h.CreateItem)
		items.PUT("/:id", staff, h.UpdateItem)
		items.DELETE("/:id", staff, h.DeleteItem)
		items.POST("/:id/adjust-stock", staff, h.AdjustStock)
	}
}

// CreateItem handles POST /items
// @Summary      Create a catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateItemDTO  true  "Item Payload"
// @Success      201      {object}  response.Response{data=service.ItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /items [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.CreateItemDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// ListItems handles GET /items
// @Summary      List catalog items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        category_id  query  string  false  "Filter by category"
// @Param        supplier_id  query  string  false  "Filter by supplier"
// @Param        search       query  string  false  "Search name/reference"
// @Param        active       query  bool    false  "Only active items"
// @Param        page         query  int     false  "Page number"
// @Param        limit        query  int     false  "Page size"
// @Success      200  {object}  response.Response
// @Router       /items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	params := pagination.Parse(c)
	items, total, err := h.itemService.List(c.Request.Context(), service.ListItemsQuery{
		CategoryID: c.Query("category_id"),
		SupplierID: c.Query("supplier_id"),
		Search:     c.Query("search"),
		ActiveOnly: c.Query("active") == "true",
		Page:       params.Page,
		Limit:      params.Limit,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
		"pages": params.Pages(total),
	}))
}

// ListLowStock handles GET /items/low-stock
// @Summary      List items at or below their minimum stock
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ItemResponse}
// @Router       /items/low-stock [get]
func (h *ItemHandler) ListLowStock(c *gin.Context) {
	items, err := h.itemService.ListLowStock(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// GetItem handles GET /items/:id
// @Summary      Get a catalog item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response{data=service.ItemResponse}
// @Failure      404  {object}  response.Response
// @Router       /items/{id} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	item, err := h.itemService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// UpdateItem handles PUT /items/:id
// @Summary      Update a catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Item ID"
// @Param        payload  body      service.UpdateItemDTO  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.ItemResponse}
// @Failure      404      {object}  response.Response
// @Router       /items/{id} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.UpdateItemDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteItem handles DELETE /items/:id
// @Summary      Deactivate a catalog item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"message": "item deactivated"}))
}

// AdjustStock handles POST /items/:id/adjust-stock
// @Summary      Apply a signed stock adjustment
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Item ID"
// @Param        payload  body      service.AdjustStockDTO  true  "Adjustment Payload"
// @Success      200      {object}  response.Response{data=service.ItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /items/{id}/adjust-stock [post]
func (h *ItemHandler) AdjustStock(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req service.AdjustStockDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.itemService.AdjustStock(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ListMovements handles GET /items/:id/movements
// @Summary      List stock movements for an item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   string  true   "Item ID"
// @Param        page   query  int     false  "Page number"
// @Param        limit  query  int     false  "Page size"
// @Success      200  {object}  response.Response
// @Router       /items/{id}/movements [get]
func (h *ItemHandler) ListMovements(c *gin.Context) {
	params := pagination.Parse(c)
	movements, total, err := h.itemService.ListMovements(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
		"pages":     params.Pages(total),
	}))
}
