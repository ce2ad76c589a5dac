package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/middleware"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/service"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/response"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	reportService    service.ReportService
}

func NewDashboardHandler(dashboardService service.DashboardService, reportService service.ReportService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, reportService: reportService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(access.RoleManager, access.RoleGeneralManager, access.RoleAdmin)

	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("/stats", staff, h.Stats)
		dashboard.GET("/employee", middleware.RequireAnyRole(), h.Employee)
		dashboard.GET("/manager", staff, h.Manager)
		dashboard.GET("/system", middleware.RequireRole(access.RoleGeneralManager, access.RoleAdmin), h.System)
	}

	reports := router.Group("/reports", staff)
	{
		reports.GET("/spending", h.SpendingReport)
	}
}

// Stats handles GET /dashboard/stats
// @Summary      Month-over-month request and spending statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.DashboardStats}
// @Failure      403  {object}  response.Response
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// Employee handles GET /dashboard/employee
// @Summary      Personal request overview
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.EmployeeDashboard}
// @Router       /dashboard/employee [get]
func (h *DashboardHandler) Employee(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Employee(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// Manager handles GET /dashboard/manager
// @Summary      Department overview with pending approvals
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ManagerDashboard}
// @Failure      403  {object}  response.Response
// @Router       /dashboard/manager [get]
func (h *DashboardHandler) Manager(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Manager(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// System handles GET /dashboard/system
// @Summary      System-wide totals
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.SystemDashboard}
// @Failure      403  {object}  response.Response
// @Router       /dashboard/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.System(c.Request.Context(), actor)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// SpendingReport handles GET /reports/spending
// @Summary      Spending report for a period
// @Description  Aggregates approved request and placed order spending with category/department/supplier/month breakdowns
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        period  query  string  false  "week | month | quarter | year (default month)"
// @Success      200  {object}  response.Response{data=service.SpendingReport}
// @Failure      400  {object}  response.Response
// @Router       /reports/spending [get]
func (h *DashboardHandler) SpendingReport(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	report, err := h.reportService.Spending(c.Request.Context(), actor, c.Query("period"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
