package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

// OrderFilter narrows purchase-order list queries.
type OrderFilter struct {
	Status     string
	SupplierID string
	Search     string
	Page       int
	Limit      int
}

// PurchaseOrderRepository defines data access for purchase orders.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *model.PurchaseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, scope access.Scope, filter OrderFilter) ([]model.PurchaseOrder, int64, error)
	Update(ctx context.Context, order *model.PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateLineReceived writes the received quantity on one order line.
	// Save on the parent only upserts association rows, it never updates
	// existing ones, so line columns need a targeted update.
	UpdateLineReceived(ctx context.Context, lineID uuid.UUID, quantity int) error
	// NextOrderNumber allocates the next PO-YYYY-NNNN under a pg advisory
	// lock so concurrent creation cannot produce duplicates.
	NextOrderNumber(ctx context.Context) (string, error)
	ListSpendingBetween(ctx context.Context, scope access.Scope, start, end time.Time) ([]model.PurchaseOrder, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *purchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := GetDB(ctx, r.db).
		Preload("Supplier").
		Preload("CreatedBy").
		Preload("Items").
		Preload("Items.Item").
		Preload("Items.Item.Category").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, scope access.Scope, filter OrderFilter) ([]model.PurchaseOrder, int64, error) {
	base := scope.ApplyPurchaseOrders(GetDB(ctx, r.db).Model(&model.PurchaseOrder{}))

	if filter.Status != "" && filter.Status != "ALL" {
		base = base.Where("purchase_orders.status = ?", filter.Status)
	}
	if filter.SupplierID != "" {
		base = base.Where("purchase_orders.supplier_id = ?", filter.SupplierID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("purchase_orders.order_number ILIKE ? OR purchase_orders.notes ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.PurchaseOrder
	err := base.
		Preload("Supplier").
		Preload("CreatedBy").
		Preload("Items").
		Preload("Items.Item").
		Order("purchase_orders.order_date DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *purchaseOrderRepository) Update(ctx context.Context, order *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *purchaseOrderRepository) UpdateLineReceived(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return GetDB(ctx, r.db).Model(&model.OrderItem{}).
		Where("id = ?", lineID).
		Update("received_quantity", quantity).Error
}

func (r *purchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("purchase_order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.PurchaseOrder{}, "id = ?", id).Error
}

func (r *purchaseOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	db := GetDB(ctx, r.db)
	prefix := fmt.Sprintf("PO-%d-", time.Now().Year())

	// Advisory lock prevents concurrent duplicate order numbers
	if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error; err != nil {
		return "", err
	}

	var count int64
	if err := db.Model(&model.PurchaseOrder{}).
		Where("order_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

func (r *purchaseOrderRepository) ListSpendingBetween(ctx context.Context, scope access.Scope, start, end time.Time) ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := scope.ApplyPurchaseOrders(GetDB(ctx, r.db).Model(&model.PurchaseOrder{})).
		Where("purchase_orders.status IN ?", []string{model.OrderStatusSent, model.OrderStatusConfirmed, model.OrderStatusReceived}).
		Where("purchase_orders.created_at >= ? AND purchase_orders.created_at <= ?", start, end).
		Preload("Supplier").
		Preload("CreatedBy").
		Preload("Items").
		Preload("Items.Item").
		Preload("Items.Item.Category").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
