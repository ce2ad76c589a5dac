package service

import (
	"context"
	"time"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type StatDelta struct {
	Current  int64   `json:"current"`
	Previous int64   `json:"previous"`
	Delta    float64 `json:"delta_pct"`
}

type DashboardStats struct {
	PendingRequests  StatDelta `json:"pending_requests"`
	ApprovedRequests StatDelta `json:"approved_requests"`
	RejectedRequests StatDelta `json:"rejected_requests"`
	MonthlySpending  float64   `json:"monthly_spending"`
	PreviousSpending float64   `json:"previous_spending"`
	SpendingDelta    float64   `json:"spending_delta_pct"`
}

type EmployeeDashboard struct {
	TotalRequests    int64   `json:"total_requests"`
	PendingRequests  int64   `json:"pending_requests"`
	ApprovedRequests int64   `json:"approved_requests"`
	RejectedRequests int64   `json:"rejected_requests"`
	MonthlySpending  float64 `json:"monthly_spending"`
}

type ManagerDashboard struct {
	PendingApprovals   int64   `json:"pending_approvals"`
	DepartmentRequests int64   `json:"department_requests"`
	PendingRequests    int64   `json:"pending_requests"`
	MonthlySpending    float64 `json:"monthly_spending"`
	LowStockItems      int64   `json:"low_stock_items"`
}

type SystemDashboard struct {
	TotalUsers      int64   `json:"total_users"`
	ActiveUsers     int64   `json:"active_users"`
	Departments     int64   `json:"departments"`
	TotalRequests   int64   `json:"total_requests"`
	TotalOrders     int64   `json:"total_orders"`
	LowStockItems   int64   `json:"low_stock_items"`
	MonthlySpending float64 `json:"monthly_spending"`
}

// DashboardService aggregates scoped counts for the dashboard views.
type DashboardService interface {
	Stats(ctx context.Context, actor Actor) (DashboardStats, error)
	Employee(ctx context.Context, actor Actor) (EmployeeDashboard, error)
	Manager(ctx context.Context, actor Actor) (ManagerDashboard, error)
	System(ctx context.Context, actor Actor) (SystemDashboard, error)
}

type dashboardService struct {
	dashboards repository.DashboardRepository
}

func NewDashboardService(dashboards repository.DashboardRepository) DashboardService {
	return &dashboardService{dashboards: dashboards}
}

func monthWindows(now time.Time) (curStart, curEnd, prevStart, prevEnd time.Time) {
	curStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	curEnd = now
	prevStart = curStart.AddDate(0, -1, 0)
	prevEnd = curStart.Add(-time.Nanosecond)
	return
}

func deltaPct(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

var spendingStatuses = []string{model.RequestStatusApproved, model.RequestStatusCompleted}

func (s *dashboardService) statusDelta(ctx context.Context, scope access.Scope, status string, now time.Time) (StatDelta, error) {
	curStart, curEnd, prevStart, prevEnd := monthWindows(now)

	current, err := s.dashboards.CountRequestsByStatus(ctx, scope, status, curStart, curEnd)
	if err != nil {
		return StatDelta{}, err
	}
	previous, err := s.dashboards.CountRequestsByStatus(ctx, scope, status, prevStart, prevEnd)
	if err != nil {
		return StatDelta{}, err
	}
	return StatDelta{
		Current:  current,
		Previous: previous,
		Delta:    deltaPct(float64(current), float64(previous)),
	}, nil
}

// Stats is the month-over-month overview for decision-capable roles.
func (s *dashboardService) Stats(ctx context.Context, actor Actor) (DashboardStats, error) {
	if !actor.Role.CanDecide() {
		return DashboardStats{}, apperror.Forbidden("dashboard statistics require a manager or admin role")
	}

	now := time.Now()
	scope := actor.Scope()
	curStart, curEnd, prevStart, prevEnd := monthWindows(now)

	var stats DashboardStats
	var err error
	if stats.PendingRequests, err = s.statusDelta(ctx, scope, model.RequestStatusPending, now); err != nil {
		return DashboardStats{}, apperror.Internal(err, "failed to compute dashboard statistics")
	}
	if stats.ApprovedRequests, err = s.statusDelta(ctx, scope, model.RequestStatusApproved, now); err != nil {
		return DashboardStats{}, apperror.Internal(err, "failed to compute dashboard statistics")
	}
	if stats.RejectedRequests, err = s.statusDelta(ctx, scope, model.RequestStatusRejected, now); err != nil {
		return DashboardStats{}, apperror.Internal(err, "failed to compute dashboard statistics")
	}

	current, err := s.dashboards.SumRequestAmounts(ctx, scope, spendingStatuses, curStart, curEnd)
	if err != nil {
		return DashboardStats{}, apperror.Internal(err, "failed to compute dashboard statistics")
	}
	previous, err := s.dashboards.SumRequestAmounts(ctx, scope, spendingStatuses, prevStart, prevEnd)
	if err != nil {
		return DashboardStats{}, apperror.Internal(err, "failed to compute dashboard statistics")
	}

	stats.MonthlySpending = current
	stats.PreviousSpending = previous
	stats.SpendingDelta = deltaPct(current, previous)
	return stats, nil
}

// Employee always reports on the caller's own rows, whatever their role.
func (s *dashboardService) Employee(ctx context.Context, actor Actor) (EmployeeDashboard, error) {
	scope := access.Scope{Kind: access.KindPersonal, UserID: actor.ID}
	now := time.Now()
	curStart, curEnd, _, _ := monthWindows(now)

	var dash EmployeeDashboard
	var err error
	if dash.TotalRequests, err = s.dashboards.CountRequestsByStatus(ctx, scope, "", time.Time{}, time.Time{}); err != nil {
		return EmployeeDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.PendingRequests, err = s.dashboards.CountRequestsByStatus(ctx, scope, model.RequestStatusPending, time.Time{}, time.Time{}); err != nil {
		return EmployeeDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.ApprovedRequests, err = s.dashboards.CountRequestsByStatus(ctx, scope, model.RequestStatusApproved, time.Time{}, time.Time{}); err != nil {
		return EmployeeDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.RejectedRequests, err = s.dashboards.CountRequestsByStatus(ctx, scope, model.RequestStatusRejected, time.Time{}, time.Time{}); err != nil {
		return EmployeeDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.MonthlySpending, err = s.dashboards.SumRequestAmounts(ctx, scope, spendingStatuses, curStart, curEnd); err != nil {
		return EmployeeDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	return dash, nil
}

func (s *dashboardService) Manager(ctx context.Context, actor Actor) (ManagerDashboard, error) {
	if !actor.Role.CanDecide() {
		return ManagerDashboard{}, apperror.Forbidden("manager dashboard requires a manager or admin role")
	}

	scope := actor.Scope()
	now := time.Now()
	curStart, curEnd, _, _ := monthWindows(now)

	var dash ManagerDashboard
	var err error
	if dash.PendingApprovals, err = s.dashboards.CountPendingApprovalsFor(ctx, actor.ID); err != nil {
		return ManagerDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.DepartmentRequests, err = s.dashboards.CountRequestsByStatus(ctx, scope, "", time.Time{}, time.Time{}); err != nil {
		return ManagerDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.PendingRequests, err = s.dashboards.CountRequestsByStatus(ctx, scope, model.RequestStatusPending, time.Time{}, time.Time{}); err != nil {
		return ManagerDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.MonthlySpending, err = s.dashboards.SumRequestAmounts(ctx, scope, spendingStatuses, curStart, curEnd); err != nil {
		return ManagerDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.LowStockItems, err = s.dashboards.CountLowStockItems(ctx); err != nil {
		return ManagerDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	return dash, nil
}

func (s *dashboardService) System(ctx context.Context, actor Actor) (SystemDashboard, error) {
	if actor.Role != access.RoleAdmin && actor.Role != access.RoleGeneralManager {
		return SystemDashboard{}, apperror.Forbidden("system dashboard requires an admin or general manager role")
	}

	scope := access.Scope{Kind: access.KindAll}
	now := time.Now()
	curStart, curEnd, _, _ := monthWindows(now)

	var dash SystemDashboard
	var err error
	if dash.TotalUsers, err = s.dashboards.CountUsers(ctx, ""); err != nil {
		return SystemDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.ActiveUsers, err = s.dashboards.CountUsers(ctx, model.UserStatusActive); err != nil {
		return SystemDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.Departments, err = s.dashboards.CountDepartments(ctx); err != nil {
		return SystemDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.TotalRequests, err = s.dashboards.CountRequestsByStatus(ctx, scope, "", time.Time{}, time.Time{}); err != nil {
		return SystemDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.TotalOrders, err = s.dashboards.CountOrdersByStatus(ctx, scope, "", time.Time{}, time.Time{}); err != nil {
		return SystemDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.LowStockItems, err = s.dashboards.CountLowStockItems(ctx); err != nil {
		return SystemDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	if dash.MonthlySpending, err = s.dashboards.SumRequestAmounts(ctx, scope, spendingStatuses, curStart, curEnd); err != nil {
		return SystemDashboard{}, apperror.Internal(err, "failed to compute dashboard")
	}
	return dash, nil
}
