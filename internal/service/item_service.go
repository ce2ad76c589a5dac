package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/event"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type CreateItemDTO struct {
	Reference    string  `json:"reference" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Unit         string  `json:"unit" binding:"required"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	MinStock     int     `json:"min_stock"`
	CurrentStock int     `json:"current_stock"`
	CategoryID   string  `json:"category_id" binding:"required"`
	SupplierID   string  `json:"supplier_id" binding:"required"`
}

type UpdateItemDTO struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Unit        *string  `json:"unit"`
	Price       *float64 `json:"price"`
	MinStock    *int     `json:"min_stock"`
	CategoryID  *string  `json:"category_id"`
	SupplierID  *string  `json:"supplier_id"`
	IsActive    *bool    `json:"is_active"`
}

type AdjustStockDTO struct {
	// Quantity is the signed adjustment delta; negative values consume stock.
	Quantity int    `json:"quantity" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

type ListItemsQuery struct {
	CategoryID string
	SupplierID string
	Search     string
	ActiveOnly bool
	Page       int
	Limit      int
}

type ItemResponse struct {
	ID           string  `json:"id"`
	Reference    string  `json:"reference"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Unit         string  `json:"unit"`
	Price        float64 `json:"price"`
	MinStock     int     `json:"min_stock"`
	CurrentStock int     `json:"current_stock"`
	LowStock     bool    `json:"low_stock"`
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	SupplierID   string  `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	IsActive     bool    `json:"is_active"`
}

type StockMovementResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
	Reference string `json:"reference,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ItemService manages the supply catalog and stock levels.
type ItemService interface {
	Create(ctx context.Context, actor Actor, req CreateItemDTO) (ItemResponse, error)
	List(ctx context.Context, query ListItemsQuery) ([]ItemResponse, int64, error)
	Get(ctx context.Context, id string) (ItemResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateItemDTO) (ItemResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	ListLowStock(ctx context.Context) ([]ItemResponse, error)
	AdjustStock(ctx context.Context, actor Actor, id string, req AdjustStockDTO) (ItemResponse, error)
	ListMovements(ctx context.Context, id string, page, limit int) ([]StockMovementResponse, int64, error)
}

type itemService struct {
	items     repository.ItemRepository
	txManager repository.TransactionManager
	emitter   *event.Emitter
}

func NewItemService(items repository.ItemRepository, txManager repository.TransactionManager, emitter *event.Emitter) ItemService {
	return &itemService{items: items, txManager: txManager, emitter: emitter}
}

func (s *itemService) Create(ctx context.Context, actor Actor, req CreateItemDTO) (ItemResponse, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return ItemResponse{}, apperror.Validation("invalid category id")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return ItemResponse{}, apperror.Validation("invalid supplier id")
	}
	if req.Price <= 0 {
		return ItemResponse{}, apperror.Validation("price must be greater than zero")
	}
	if req.MinStock < 0 || req.CurrentStock < 0 {
		return ItemResponse{}, apperror.Validation("stock levels cannot be negative")
	}

	item := model.Item{
		Reference:    req.Reference,
		Name:         req.Name,
		Description:  req.Description,
		Unit:         req.Unit,
		Price:        req.Price,
		MinStock:     req.MinStock,
		CurrentStock: req.CurrentStock,
		CategoryID:   categoryID,
		SupplierID:   supplierID,
		IsActive:     true,
	}

	if err := s.items.Create(ctx, &item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ItemResponse{}, apperror.Conflict("an item with reference %s already exists", req.Reference)
		}
		return ItemResponse{}, apperror.Internal(err, "failed to create item")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionCreateItem,
		Entity:   model.EntityItem,
		EntityID: item.ID.String(),
		Details:  map[string]interface{}{"reference": item.Reference, "name": item.Name},
	})

	created, err := s.items.GetByID(ctx, item.ID)
	if err != nil {
		return ItemResponse{}, apperror.Internal(err, "failed to reload item")
	}
	return toItemResponse(*created), nil
}

func (s *itemService) List(ctx context.Context, query ListItemsQuery) ([]ItemResponse, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	items, total, err := s.items.List(ctx, repository.ItemFilter{
		CategoryID: query.CategoryID,
		SupplierID: query.SupplierID,
		Search:     query.Search,
		ActiveOnly: query.ActiveOnly,
		Page:       query.Page,
		Limit:      query.Limit,
	})
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch items")
	}

	result := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, toItemResponse(item))
	}
	return result, total, nil
}

func (s *itemService) Get(ctx context.Context, id string) (ItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return ItemResponse{}, apperror.Validation("invalid item id")
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ItemResponse{}, apperror.NotFound("item not found")
		}
		return ItemResponse{}, apperror.Internal(err, "failed to fetch item")
	}
	return toItemResponse(*item), nil
}

func (s *itemService) Update(ctx context.Context, actor Actor, id string, req UpdateItemDTO) (ItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return ItemResponse{}, apperror.Validation("invalid item id")
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ItemResponse{}, apperror.NotFound("item not found")
		}
		return ItemResponse{}, apperror.Internal(err, "failed to fetch item")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return ItemResponse{}, apperror.Validation("name cannot be empty")
		}
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return ItemResponse{}, apperror.Validation("price must be greater than zero")
		}
		item.Price = *req.Price
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return ItemResponse{}, apperror.Validation("min_stock cannot be negative")
		}
		item.MinStock = *req.MinStock
	}
	if req.CategoryID != nil {
		categoryID, parseErr := uuid.Parse(*req.CategoryID)
		if parseErr != nil {
			return ItemResponse{}, apperror.Validation("invalid category id")
		}
		item.CategoryID = categoryID
		item.Category = nil
	}
	if req.SupplierID != nil {
		supplierID, parseErr := uuid.Parse(*req.SupplierID)
		if parseErr != nil {
			return ItemResponse{}, apperror.Validation("invalid supplier id")
		}
		item.SupplierID = supplierID
		item.Supplier = nil
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.items.Update(ctx, item); err != nil {
		return ItemResponse{}, apperror.Internal(err, "failed to update item")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionUpdateItem,
		Entity:   model.EntityItem,
		EntityID: item.ID.String(),
		Details:  map[string]interface{}{"reference": item.Reference},
	})

	updated, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return ItemResponse{}, apperror.Internal(err, "failed to reload item")
	}
	return toItemResponse(*updated), nil
}

func (s *itemService) Delete(ctx context.Context, actor Actor, id string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid item id")
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("item not found")
		}
		return apperror.Internal(err, "failed to fetch item")
	}

	// Items referenced by history are deactivated, never hard-deleted.
	item.IsActive = false
	if err := s.items.Update(ctx, item); err != nil {
		return apperror.Internal(err, "failed to deactivate item")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionDeleteItem,
		Entity:   model.EntityItem,
		EntityID: item.ID.String(),
		Details:  map[string]interface{}{"reference": item.Reference},
	})
	return nil
}

func (s *itemService) ListLowStock(ctx context.Context) ([]ItemResponse, error) {
	items, err := s.items.ListLowStock(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to fetch low stock items")
	}
	result := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, toItemResponse(item))
	}
	return result, nil
}

// AdjustStock applies a signed stock correction under a row lock and records
// the movement. Stock can never go negative.
func (s *itemService) AdjustStock(ctx context.Context, actor Actor, id string, req AdjustStockDTO) (ItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return ItemResponse{}, apperror.Validation("invalid item id")
	}
	if req.Quantity == 0 {
		return ItemResponse{}, apperror.Validation("quantity cannot be zero")
	}
	if req.Reason == "" {
		return ItemResponse{}, apperror.Validation("reason is required")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, lockErr := s.items.GetForUpdate(txCtx, itemID)
		if lockErr != nil {
			if errors.Is(lockErr, gorm.ErrRecordNotFound) {
				return apperror.NotFound("item not found")
			}
			return fmt.Errorf("failed to lock item: %w", lockErr)
		}

		newStock := item.CurrentStock + req.Quantity
		if newStock < 0 {
			return apperror.Validation("adjustment would drive stock below zero (current %d)", item.CurrentStock)
		}
		if stockErr := s.items.UpdateStock(txCtx, itemID, newStock); stockErr != nil {
			return fmt.Errorf("failed to update stock: %w", stockErr)
		}

		movementType := model.MovementAdjustment
		userID := actor.ID
		return s.items.CreateMovement(txCtx, &model.StockMovement{
			ItemID:   itemID,
			Type:     movementType,
			Quantity: req.Quantity,
			Reason:   req.Reason,
			UserID:   &userID,
		})
	})
	if err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			return ItemResponse{}, err
		}
		return ItemResponse{}, apperror.Internal(err, "failed to adjust stock")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionAdjustStock,
		Entity:   model.EntityItem,
		EntityID: itemID.String(),
		Details:  map[string]interface{}{"quantity": req.Quantity, "reason": req.Reason},
	})

	updated, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return ItemResponse{}, apperror.Internal(err, "failed to reload item")
	}
	return toItemResponse(*updated), nil
}

func (s *itemService) ListMovements(ctx context.Context, id string, page, limit int) ([]StockMovementResponse, int64, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, 0, apperror.Validation("invalid item id")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	movements, total, err := s.items.ListMovements(ctx, itemID, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch stock movements")
	}

	result := make([]StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		result = append(result, StockMovementResponse{
			ID:        m.ID.String(),
			Type:      m.Type,
			Quantity:  m.Quantity,
			Reason:    m.Reason,
			Reference: m.Reference,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}

func toItemResponse(item model.Item) ItemResponse {
	resp := ItemResponse{
		ID:           item.ID.String(),
		Reference:    item.Reference,
		Name:         item.Name,
		Description:  item.Description,
		Unit:         item.Unit,
		Price:        item.Price,
		MinStock:     item.MinStock,
		CurrentStock: item.CurrentStock,
		LowStock:     item.CurrentStock <= item.MinStock,
		CategoryID:   item.CategoryID.String(),
		SupplierID:   item.SupplierID.String(),
		IsActive:     item.IsActive,
	}
	if item.Category != nil {
		resp.CategoryName = item.Category.Name
	}
	if item.Supplier != nil {
		resp.SupplierName = item.Supplier.Name
	}
	return resp
}
