package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

// DashboardRepository serves the scoped counts and sums backing the
// dashboard endpoints. Every query applies the caller's scope first.
type DashboardRepository interface {
	CountRequestsByStatus(ctx context.Context, scope access.Scope, status string, start, end time.Time) (int64, error)
	SumRequestAmounts(ctx context.Context, scope access.Scope, statuses []string, start, end time.Time) (float64, error)
	CountOrdersByStatus(ctx context.Context, scope access.Scope, status string, start, end time.Time) (int64, error)
	SumOrderAmounts(ctx context.Context, scope access.Scope, statuses []string, start, end time.Time) (float64, error)
	CountPendingApprovalsFor(ctx context.Context, approverID uuid.UUID) (int64, error)
	CountLowStockItems(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context, status string) (int64, error)
	CountDepartments(ctx context.Context) (int64, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func inWindow(q *gorm.DB, column string, start, end time.Time) *gorm.DB {
	if !start.IsZero() {
		q = q.Where(column+" >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where(column+" <= ?", end)
	}
	return q
}

func (r *dashboardRepository) CountRequestsByStatus(ctx context.Context, scope access.Scope, status string, start, end time.Time) (int64, error) {
	query := scope.ApplyRequests(GetDB(ctx, r.db).Model(&model.Request{}))
	if status != "" {
		query = query.Where("requests.status = ?", status)
	}
	query = inWindow(query, "requests.created_at", start, end)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *dashboardRepository) SumRequestAmounts(ctx context.Context, scope access.Scope, statuses []string, start, end time.Time) (float64, error) {
	query := scope.ApplyRequests(GetDB(ctx, r.db).Model(&model.Request{}))
	if len(statuses) > 0 {
		query = query.Where("requests.status IN ?", statuses)
	}
	query = inWindow(query, "requests.created_at", start, end)

	var total float64
	err := query.Select("COALESCE(SUM(requests.total_amount), 0)").Scan(&total).Error
	return total, err
}

func (r *dashboardRepository) CountOrdersByStatus(ctx context.Context, scope access.Scope, status string, start, end time.Time) (int64, error) {
	query := scope.ApplyPurchaseOrders(GetDB(ctx, r.db).Model(&model.PurchaseOrder{}))
	if status != "" {
		query = query.Where("purchase_orders.status = ?", status)
	}
	query = inWindow(query, "purchase_orders.created_at", start, end)

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *dashboardRepository) SumOrderAmounts(ctx context.Context, scope access.Scope, statuses []string, start, end time.Time) (float64, error) {
	query := scope.ApplyPurchaseOrders(GetDB(ctx, r.db).Model(&model.PurchaseOrder{}))
	if len(statuses) > 0 {
		query = query.Where("purchase_orders.status IN ?", statuses)
	}
	query = inWindow(query, "purchase_orders.created_at", start, end)

	var total float64
	err := query.Select("COALESCE(SUM(purchase_orders.total_amount), 0)").Scan(&total).Error
	return total, err
}

func (r *dashboardRepository) CountPendingApprovalsFor(ctx context.Context, approverID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Approval{}).
		Joins("JOIN requests ON requests.id = approvals.request_id").
		Where("approvals.approver_id = ? AND approvals.status = ?", approverID, model.ApprovalPending).
		Where("requests.status IN ?", []string{model.RequestStatusPending, model.RequestStatusInProgress}).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountLowStockItems(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Item{}).
		Where("current_stock <= min_stock AND is_active = true").
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountUsers(ctx context.Context, status string) (int64, error) {
	query := GetDB(ctx, r.db).Model(&model.User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *dashboardRepository) CountDepartments(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Department{}).Count(&count).Error
	return count, err
}
