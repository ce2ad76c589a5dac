package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

// ItemFilter narrows catalog list queries.
type ItemFilter struct {
	CategoryID string
	SupplierID string
	Search     string
	ActiveOnly bool
	Page       int
	Limit      int
}

// ItemRepository defines data access for catalog items and stock movements.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	// GetForUpdate locks the item row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]model.Item, int64, error)
	ListLowStock(ctx context.Context) ([]model.Item, error)
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	Update(ctx context.Context, item *model.Item) error
	UpdateStock(ctx context.Context, id uuid.UUID, newStock int) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *itemRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := GetDB(ctx, r.db).
		Preload("Category").
		Preload("Supplier").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, filter ItemFilter) ([]model.Item, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Item{})
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SupplierID != "" {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR reference ILIKE ?", pattern, pattern)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Item
	err := query.
		Preload("Category").
		Preload("Supplier").
		Order("name ASC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) ListLowStock(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := GetDB(ctx, r.db).
		Where("current_stock <= min_stock AND is_active = true").
		Preload("Category").
		Preload("Supplier").
		Order("current_stock ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Item{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *itemRepository) UpdateStock(ctx context.Context, id uuid.UUID, newStock int) error {
	return GetDB(ctx, r.db).Model(&model.Item{}).Where("id = ?", id).
		Update("current_stock", newStock).Error
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Item{}, "id = ?", id).Error
}

func (r *itemRepository) CreateMovement(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *itemRepository) ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.StockMovement{}).Where("item_id = ?", itemID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []model.StockMovement
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}
