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

type OrderItemPayload struct {
	ItemID    string  `json:"item_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

type CreateOrderDTO struct {
	SupplierID   string             `json:"supplier_id" binding:"required"`
	ExpectedDate *time.Time         `json:"expected_date"`
	Notes        string             `json:"notes"`
	Items        []OrderItemPayload `json:"items" binding:"required"`
}

type UpdateOrderDTO struct {
	ExpectedDate *time.Time          `json:"expected_date"`
	Notes        *string             `json:"notes"`
	Items        *[]OrderItemPayload `json:"items"`
}

type ListOrdersQuery struct {
	Status     string
	SupplierID string
	Search     string
	Page       int
	Limit      int
}

type OrderItemResponse struct {
	ID               string  `json:"id"`
	ItemID           string  `json:"item_id"`
	ItemName         string  `json:"item_name"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unit_price"`
	TotalPrice       float64 `json:"total_price"`
	ReceivedQuantity int     `json:"received_quantity"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	SupplierID    string              `json:"supplier_id"`
	SupplierName  string              `json:"supplier_name"`
	CreatedByID   string              `json:"created_by_id"`
	CreatedByName string              `json:"created_by_name"`
	OrderDate     string              `json:"order_date"`
	ExpectedDate  *string             `json:"expected_date"`
	ReceivedDate  *string             `json:"received_date"`
	Status        string              `json:"status"`
	TotalAmount   float64             `json:"total_amount"`
	Notes         string              `json:"notes,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
}

// PurchaseOrderService manages the purchase order lifecycle:
// DRAFT -> SENT/APPROVED -> ORDERED -> RECEIVED, with stock intake on receipt.
type PurchaseOrderService interface {
	Create(ctx context.Context, actor Actor, req CreateOrderDTO) (OrderResponse, error)
	List(ctx context.Context, actor Actor, query ListOrdersQuery) ([]OrderResponse, int64, error)
	Get(ctx context.Context, actor Actor, id string) (OrderResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateOrderDTO) (OrderResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Send(ctx context.Context, actor Actor, id string) (OrderResponse, error)
	Approve(ctx context.Context, actor Actor, id string) (OrderResponse, error)
	Receive(ctx context.Context, actor Actor, id string) (OrderResponse, error)
}

type purchaseOrderService struct {
	orders    repository.PurchaseOrderRepository
	items     repository.ItemRepository
	suppliers repository.SupplierRepository
	txManager repository.TransactionManager
	emitter   *event.Emitter
}

func NewPurchaseOrderService(
	orders repository.PurchaseOrderRepository,
	items repository.ItemRepository,
	suppliers repository.SupplierRepository,
	txManager repository.TransactionManager,
	emitter *event.Emitter,
) PurchaseOrderService {
	return &purchaseOrderService{
		orders:    orders,
		items:     items,
		suppliers: suppliers,
		txManager: txManager,
		emitter:   emitter,
	}
}

func buildOrderItems(payloads []OrderItemPayload) ([]model.OrderItem, float64, error) {
	items := make([]model.OrderItem, 0, len(payloads))
	total := 0.0
	for i, p := range payloads {
		if p.ItemID == "" || p.Quantity <= 0 || p.UnitPrice <= 0 {
			return nil, 0, apperror.Validation("item %d is missing required fields (item_id, quantity, or unit_price)", i+1)
		}
		itemID, err := uuid.Parse(p.ItemID)
		if err != nil {
			return nil, 0, apperror.Validation("item %d has an invalid item_id", i+1)
		}
		lineTotal := float64(p.Quantity) * p.UnitPrice
		total += lineTotal
		items = append(items, model.OrderItem{
			ItemID:     itemID,
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: lineTotal,
		})
	}
	return items, total, nil
}

func (s *purchaseOrderService) Create(ctx context.Context, actor Actor, req CreateOrderDTO) (OrderResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return OrderResponse{}, apperror.Validation("invalid supplier id")
	}
	if len(req.Items) == 0 {
		return OrderResponse{}, apperror.Validation("at least one item is required")
	}

	if _, err := s.suppliers.GetByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, apperror.NotFound("supplier not found")
		}
		return OrderResponse{}, apperror.Internal(err, "failed to fetch supplier")
	}

	orderItems, totalAmount, err := buildOrderItems(req.Items)
	if err != nil {
		return OrderResponse{}, err
	}

	order := model.PurchaseOrder{
		SupplierID:   supplierID,
		CreatedByID:  actor.ID,
		OrderDate:    time.Now(),
		ExpectedDate: req.ExpectedDate,
		Status:       model.OrderStatusDraft,
		TotalAmount:  totalAmount,
		Notes:        req.Notes,
		Items:        orderItems,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := s.orders.NextOrderNumber(txCtx)
		if numErr != nil {
			return fmt.Errorf("failed to allocate order number: %w", numErr)
		}
		order.OrderNumber = number
		return s.orders.Create(txCtx, &order)
	})
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to create purchase order")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionCreateOrder,
		Entity:   model.EntityPurchaseOrder,
		EntityID: order.ID.String(),
		Details: map[string]interface{}{
			"order_number": order.OrderNumber,
			"total_amount": order.TotalAmount,
		},
	})

	created, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to reload purchase order")
	}
	return toOrderResponse(*created), nil
}

func (s *purchaseOrderService) List(ctx context.Context, actor Actor, query ListOrdersQuery) ([]OrderResponse, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	orders, total, err := s.orders.List(ctx, actor.Scope(), repository.OrderFilter{
		Status:     query.Status,
		SupplierID: query.SupplierID,
		Search:     query.Search,
		Page:       query.Page,
		Limit:      query.Limit,
	})
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch purchase orders")
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	return result, total, nil
}

func (s *purchaseOrderService) Get(ctx context.Context, actor Actor, id string) (OrderResponse, error) {
	order, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return OrderResponse{}, err
	}
	return toOrderResponse(*order), nil
}

func (s *purchaseOrderService) loadScoped(ctx context.Context, actor Actor, id string) (*model.PurchaseOrder, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid purchase order id")
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("purchase order not found")
		}
		return nil, apperror.Internal(err, "failed to fetch purchase order")
	}

	department := ""
	if order.CreatedBy != nil {
		department = order.CreatedBy.Department
	}
	if !actor.Scope().Allows(order.CreatedByID, department) {
		return nil, apperror.Forbidden("you do not have access to this purchase order")
	}
	return order, nil
}

func (s *purchaseOrderService) Update(ctx context.Context, actor Actor, id string, req UpdateOrderDTO) (OrderResponse, error) {
	order, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return OrderResponse{}, err
	}
	if order.Status != model.OrderStatusDraft {
		return OrderResponse{}, apperror.AlreadyFinalized("only draft orders can be edited")
	}

	if req.ExpectedDate != nil {
		order.ExpectedDate = req.ExpectedDate
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if req.Items != nil {
		if len(*req.Items) == 0 {
			return OrderResponse{}, apperror.Validation("at least one item is required")
		}
		orderItems, totalAmount, buildErr := buildOrderItems(*req.Items)
		if buildErr != nil {
			return OrderResponse{}, buildErr
		}
		for i := range orderItems {
			orderItems[i].PurchaseOrderID = order.ID
		}
		order.Items = orderItems
		order.TotalAmount = totalAmount
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Items != nil {
			// Replacing lines: drop the order with its items and recreate it
			// under the same id and order number.
			if delErr := s.orders.Delete(txCtx, order.ID); delErr != nil {
				return fmt.Errorf("failed to replace order items: %w", delErr)
			}
			return s.orders.Create(txCtx, order)
		}
		return s.orders.Update(txCtx, order)
	})
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to update purchase order")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionUpdateOrder,
		Entity:   model.EntityPurchaseOrder,
		EntityID: order.ID.String(),
		Details:  map[string]interface{}{"order_number": order.OrderNumber},
	})

	updated, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to reload purchase order")
	}
	return toOrderResponse(*updated), nil
}

func (s *purchaseOrderService) Delete(ctx context.Context, actor Actor, id string) error {
	order, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return err
	}
	if order.Status != model.OrderStatusDraft {
		return apperror.AlreadyFinalized("only draft orders can be deleted")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.orders.Delete(txCtx, order.ID)
	})
	if err != nil {
		return apperror.Internal(err, "failed to delete purchase order")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionDeleteOrder,
		Entity:   model.EntityPurchaseOrder,
		EntityID: order.ID.String(),
		Details:  map[string]interface{}{"order_number": order.OrderNumber},
	})
	return nil
}

// Send marks a draft order as placed with the supplier.
func (s *purchaseOrderService) Send(ctx context.Context, actor Actor, id string) (OrderResponse, error) {
	return s.transition(ctx, actor, id, model.OrderStatusOrdered, model.ActionSendOrder,
		model.OrderStatusDraft)
}

// Approve signs off on a draft or sent order.
func (s *purchaseOrderService) Approve(ctx context.Context, actor Actor, id string) (OrderResponse, error) {
	if !actor.Role.CanDecide() {
		return OrderResponse{}, apperror.Forbidden("only managers and admins can approve purchase orders")
	}
	return s.transition(ctx, actor, id, model.OrderStatusApproved, model.ActionApproveOrder,
		model.OrderStatusDraft, model.OrderStatusSent)
}

func (s *purchaseOrderService) transition(ctx context.Context, actor Actor, id string, target, action string, from ...string) (OrderResponse, error) {
	order, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return OrderResponse{}, err
	}

	allowed := false
	for _, f := range from {
		if order.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return OrderResponse{}, apperror.AlreadyFinalized("order %s cannot move from %s to %s",
			order.OrderNumber, order.Status, target)
	}

	order.Status = target
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.orders.Update(txCtx, order)
	})
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to update purchase order")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   action,
		Entity:   model.EntityPurchaseOrder,
		EntityID: order.ID.String(),
		Details: map[string]interface{}{
			"order_number": order.OrderNumber,
			"status":       target,
		},
	})

	updated, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to reload purchase order")
	}
	return toOrderResponse(*updated), nil
}

// Receive books the delivery: every line is received in full, item stock is
// incremented under row locks and an inbound movement is written per line.
func (s *purchaseOrderService) Receive(ctx context.Context, actor Actor, id string) (OrderResponse, error) {
	order, err := s.loadScoped(ctx, actor, id)
	if err != nil {
		return OrderResponse{}, err
	}
	if order.Status != model.OrderStatusOrdered && order.Status != model.OrderStatusApproved {
		return OrderResponse{}, apperror.AlreadyFinalized("order %s cannot be received while %s",
			order.OrderNumber, order.Status)
	}

	now := time.Now()
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range order.Items {
			line := &order.Items[i]

			item, lockErr := s.items.GetForUpdate(txCtx, line.ItemID)
			if lockErr != nil {
				return fmt.Errorf("failed to lock item %s: %w", line.ItemID, lockErr)
			}
			if stockErr := s.items.UpdateStock(txCtx, item.ID, item.CurrentStock+line.Quantity); stockErr != nil {
				return fmt.Errorf("failed to update stock for item %s: %w", line.ItemID, stockErr)
			}

			userID := actor.ID
			movement := model.StockMovement{
				ItemID:    line.ItemID,
				Type:      model.MovementInbound,
				Quantity:  line.Quantity,
				Reason:    "purchase order received",
				Reference: order.OrderNumber,
				UserID:    &userID,
			}
			if mvErr := s.items.CreateMovement(txCtx, &movement); mvErr != nil {
				return fmt.Errorf("failed to record stock movement: %w", mvErr)
			}
			if recvErr := s.orders.UpdateLineReceived(txCtx, line.ID, line.Quantity); recvErr != nil {
				return fmt.Errorf("failed to record received quantity for line %s: %w", line.ID, recvErr)
			}
		}

		order.Status = model.OrderStatusReceived
		order.ReceivedDate = &now
		return s.orders.Update(txCtx, order)
	})
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to receive purchase order")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionReceiveOrder,
		Entity:   model.EntityPurchaseOrder,
		EntityID: order.ID.String(),
		Details: map[string]interface{}{
			"order_number": order.OrderNumber,
			"received_at":  now.Format(time.RFC3339),
		},
		Notifications: []event.Notification{{
			UserID:    order.CreatedByID,
			Type:      model.NotifyOrderReceived,
			Title:     "Purchase order received",
			Message:   fmt.Sprintf("Order %s has been received and stock updated", order.OrderNumber),
			Category:  model.EntityPurchaseOrder,
			RelatedID: order.ID.String(),
		}},
	})

	updated, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return OrderResponse{}, apperror.Internal(err, "failed to reload purchase order")
	}
	return toOrderResponse(*updated), nil
}

func toOrderResponse(o model.PurchaseOrder) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID.String(),
		OrderNumber: o.OrderNumber,
		SupplierID:  o.SupplierID.String(),
		CreatedByID: o.CreatedByID.String(),
		OrderDate:   o.OrderDate.Format(time.RFC3339),
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
	if o.Supplier != nil {
		resp.SupplierName = o.Supplier.Name
	}
	if o.CreatedBy != nil {
		resp.CreatedByName = o.CreatedBy.Name
	}
	if o.ExpectedDate != nil {
		d := o.ExpectedDate.Format(time.RFC3339)
		resp.ExpectedDate = &d
	}
	if o.ReceivedDate != nil {
		d := o.ReceivedDate.Format(time.RFC3339)
		resp.ReceivedDate = &d
	}

	resp.Items = make([]OrderItemResponse, 0, len(o.Items))
	for _, line := range o.Items {
		lr := OrderItemResponse{
			ID:               line.ID.String(),
			ItemID:           line.ItemID.String(),
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			TotalPrice:       line.TotalPrice,
			ReceivedQuantity: line.ReceivedQuantity,
		}
		if line.Item != nil {
			lr.ItemName = line.Item.Name
		}
		resp.Items = append(resp.Items, lr)
	}
	return resp
}
