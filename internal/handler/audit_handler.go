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

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs", middleware.RequireRole(access.RoleAdmin), h.ListAuditLogs)
}

// ListAuditLogs handles GET /audit-logs
// @Summary      List audit log entries
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        action   query  string  false  "Filter by action"
// @Param        entity   query  string  false  "Filter by entity"
// @Param        user_id  query  string  false  "Filter by acting user"
// @Param        page     query  int     false  "Page number"
// @Param        limit    query  int     false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	entries, total, err := h.auditService.List(c.Request.Context(), service.ListAuditQuery{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
		UserID: c.Query("user_id"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"audit_logs": entries,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
		"pages":      params.Pages(total),
	}))
}
