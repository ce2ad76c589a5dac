package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/event"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
)

// fakeStore is a shared in-memory backing store for the repository fakes so
// service tests run without a database.
type fakeStore struct {
	requests      map[uuid.UUID]*model.Request
	approvals     []*model.Approval
	users         map[uuid.UUID]*model.User
	orders        map[uuid.UUID]*model.PurchaseOrder
	catalog       map[uuid.UUID]*model.Item
	suppliers     map[uuid.UUID]*model.Supplier
	movements     []model.StockMovement
	audits        []model.AuditLog
	notifications []model.Notification
}

func newItemID() string { return uuid.NewString() }

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:  map[uuid.UUID]*model.Request{},
		users:     map[uuid.UUID]*model.User{},
		orders:    map[uuid.UUID]*model.PurchaseOrder{},
		catalog:   map[uuid.UUID]*model.Item{},
		suppliers: map[uuid.UUID]*model.Supplier{},
	}
}

func (s *fakeStore) addUser(name, role, department string) *model.User {
	user := &model.User{
		ID:         uuid.New(),
		Name:       name,
		Email:      name + "@example.com",
		Role:       role,
		Department: department,
		Status:     model.UserStatusActive,
		CreatedAt:  time.Now(),
	}
	s.users[user.ID] = user
	return user
}

func (s *fakeStore) addSupplier(name string) *model.Supplier {
	supplier := &model.Supplier{ID: uuid.New(), Name: name}
	s.suppliers[supplier.ID] = supplier
	return supplier
}

func (s *fakeStore) addCatalogItem(name string, price float64, stock int) *model.Item {
	item := &model.Item{
		ID:           uuid.New(),
		Reference:    "REF-" + name,
		Name:         name,
		Unit:         "piece",
		Price:        price,
		CurrentStock: stock,
		IsActive:     true,
	}
	s.catalog[item.ID] = item
	return item
}

func (s *fakeStore) approvalsFor(requestID uuid.UUID) []model.Approval {
	var result []model.Approval
	for _, a := range s.approvals {
		if a.RequestID == requestID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Level < result[j].Level })
	return result
}

// --- TransactionManager ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- RequestRepository ---

type fakeRequestRepo struct {
	store *fakeStore
}

func (r *fakeRequestRepo) Create(_ context.Context, request *model.Request) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	for i := range request.Items {
		if request.Items[i].ID == uuid.Nil {
			request.Items[i].ID = uuid.New()
		}
		request.Items[i].RequestID = request.ID
	}
	stored := *request
	r.store.requests[request.ID] = &stored
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Request, error) {
	stored, ok := r.store.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	result := *stored
	result.Approvals = r.store.approvalsFor(id)
	if requester, ok := r.store.users[stored.RequesterID]; ok {
		result.Requester = requester
	}
	return &result, nil
}

func (r *fakeRequestRepo) List(_ context.Context, scope access.Scope, filter repository.RequestFilter) ([]model.Request, int64, error) {
	var result []model.Request
	for _, stored := range r.store.requests {
		if !scope.Allows(stored.RequesterID, stored.Department) {
			continue
		}
		if filter.Status != "" && stored.Status != filter.Status {
			continue
		}
		result = append(result, *stored)
	}
	return result, int64(len(result)), nil
}

func (r *fakeRequestRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	stored, ok := r.store.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := fields["status"].(string); ok {
		stored.Status = status
	}
	if title, ok := fields["title"].(string); ok {
		stored.Title = title
	}
	if description, ok := fields["description"].(string); ok {
		stored.Description = description
	}
	if priority, ok := fields["priority"].(string); ok {
		stored.Priority = priority
	}
	if total, ok := fields["total_amount"].(float64); ok {
		stored.TotalAmount = total
	}
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRequestRepo) ReplaceItems(_ context.Context, id uuid.UUID, items []model.RequestItem) error {
	stored, ok := r.store.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].RequestID = id
	}
	stored.Items = items
	return nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.requests, id)
	kept := r.store.approvals[:0]
	for _, a := range r.store.approvals {
		if a.RequestID != id {
			kept = append(kept, a)
		}
	}
	r.store.approvals = kept
	return nil
}

func (r *fakeRequestRepo) ListApprovedBetween(_ context.Context, scope access.Scope, start, end time.Time) ([]model.Request, error) {
	var result []model.Request
	for _, stored := range r.store.requests {
		if stored.Status != model.RequestStatusApproved && stored.Status != model.RequestStatusCompleted {
			continue
		}
		if !scope.Allows(stored.RequesterID, stored.Department) {
			continue
		}
		if stored.CreatedAt.Before(start) || stored.CreatedAt.After(end) {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

// --- ApprovalRepository ---

type fakeApprovalRepo struct {
	store *fakeStore
}

func (r *fakeApprovalRepo) Create(_ context.Context, approval *model.Approval) error {
	if approval.ID == uuid.Nil {
		approval.ID = uuid.New()
	}
	approval.CreatedAt = time.Now()
	approval.UpdatedAt = approval.CreatedAt
	stored := *approval
	r.store.approvals = append(r.store.approvals, &stored)
	return nil
}

func (r *fakeApprovalRepo) Update(_ context.Context, approval *model.Approval) error {
	for _, stored := range r.store.approvals {
		if stored.ID == approval.ID {
			stored.Status = approval.Status
			stored.Comments = approval.Comments
			stored.UpdatedAt = time.Now()
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeApprovalRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Approval, error) {
	return r.store.approvalsFor(requestID), nil
}

func (r *fakeApprovalRepo) Claim(_ context.Context, requestID, approverID uuid.UUID, level int) (*model.Approval, error) {
	for _, stored := range r.store.approvals {
		if stored.RequestID == requestID && stored.ApproverID == approverID && stored.Level == level {
			stored.Status = model.ApprovalPending
			result := *stored
			return &result, nil
		}
	}
	approval := &model.Approval{
		ID:         uuid.New(),
		RequestID:  requestID,
		ApproverID: approverID,
		Level:      level,
		Status:     model.ApprovalPending,
	}
	r.store.approvals = append(r.store.approvals, approval)
	result := *approval
	return &result, nil
}

// --- UserRepository ---

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.store.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	user, ok := r.store.users[parsed]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, role, department string, page, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, user := range r.store.users {
		if role != "" && user.Role != role {
			continue
		}
		if department != "" && user.Department != department {
			continue
		}
		result = append(result, *user)
	}
	return result, int64(len(result)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.store.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	delete(r.store.users, parsed)
	return nil
}

func (r *fakeUserRepo) FirstActiveByRole(_ context.Context, role string) (*model.User, error) {
	var earliest *model.User
	for _, user := range r.store.users {
		if user.Role != role || user.Status != model.UserStatusActive {
			continue
		}
		if earliest == nil || user.CreatedAt.Before(earliest.CreatedAt) {
			earliest = user
		}
	}
	if earliest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return earliest, nil
}

func (r *fakeUserRepo) CreateRefreshToken(_ context.Context, _ *model.RefreshToken) error { return nil }

func (r *fakeUserRepo) GetRefreshToken(_ context.Context, _ string) (*model.RefreshToken, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) DeleteRefreshToken(_ context.Context, _ string) error { return nil }

func (r *fakeUserRepo) DeleteRefreshTokensForUser(_ context.Context, _ string) error { return nil }

// --- PurchaseOrderRepository ---

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.PurchaseOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].PurchaseOrderID = order.ID
	}
	stored := *order
	stored.Items = append([]model.OrderItem(nil), order.Items...)
	r.store.orders[order.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	stored, ok := r.store.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	result := *stored
	result.Items = append([]model.OrderItem(nil), stored.Items...)
	if creator, ok := r.store.users[stored.CreatedByID]; ok {
		result.CreatedBy = creator
	}
	if supplier, ok := r.store.suppliers[stored.SupplierID]; ok {
		result.Supplier = supplier
	}
	for i := range result.Items {
		if item, ok := r.store.catalog[result.Items[i].ItemID]; ok {
			result.Items[i].Item = item
		}
	}
	return &result, nil
}

func (r *fakeOrderRepo) List(_ context.Context, scope access.Scope, filter repository.OrderFilter) ([]model.PurchaseOrder, int64, error) {
	var result []model.PurchaseOrder
	for _, stored := range r.store.orders {
		department := ""
		if creator, ok := r.store.users[stored.CreatedByID]; ok {
			department = creator.Department
		}
		if !scope.Allows(stored.CreatedByID, department) {
			continue
		}
		if filter.Status != "" && stored.Status != filter.Status {
			continue
		}
		result = append(result, *stored)
	}
	return result, int64(len(result)), nil
}

// Update writes parent columns only. Existing line rows are deliberately
// left alone, same as a Save on the real repository: association upserts
// never update rows that already exist.
func (r *fakeOrderRepo) Update(_ context.Context, order *model.PurchaseOrder) error {
	stored, ok := r.store.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = order.Status
	stored.Notes = order.Notes
	stored.ExpectedDate = order.ExpectedDate
	stored.ReceivedDate = order.ReceivedDate
	stored.TotalAmount = order.TotalAmount
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeOrderRepo) UpdateLineReceived(_ context.Context, lineID uuid.UUID, quantity int) error {
	for _, stored := range r.store.orders {
		for i := range stored.Items {
			if stored.Items[i].ID == lineID {
				stored.Items[i].ReceivedQuantity = quantity
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.orders, id)
	return nil
}

func (r *fakeOrderRepo) NextOrderNumber(_ context.Context) (string, error) {
	return fmt.Sprintf("PO-%d-%04d", time.Now().Year(), len(r.store.orders)+1), nil
}

func (r *fakeOrderRepo) ListSpendingBetween(_ context.Context, scope access.Scope, start, end time.Time) ([]model.PurchaseOrder, error) {
	var result []model.PurchaseOrder
	for _, stored := range r.store.orders {
		if stored.CreatedAt.Before(start) || stored.CreatedAt.After(end) {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

// --- ItemRepository ---

type fakeItemRepo struct {
	store *fakeStore
}

func (r *fakeItemRepo) Create(_ context.Context, item *model.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.store.catalog[item.ID] = item
	return nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	item, ok := r.store.catalog[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeItemRepo) List(_ context.Context, filter repository.ItemFilter) ([]model.Item, int64, error) {
	var result []model.Item
	for _, item := range r.store.catalog {
		if filter.ActiveOnly && !item.IsActive {
			continue
		}
		result = append(result, *item)
	}
	return result, int64(len(result)), nil
}

func (r *fakeItemRepo) ListLowStock(_ context.Context) ([]model.Item, error) {
	var result []model.Item
	for _, item := range r.store.catalog {
		if item.IsActive && item.CurrentStock <= item.MinStock {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (r *fakeItemRepo) CountByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := r.store.catalog[id]; ok {
			count++
		}
	}
	return count, nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *model.Item) error {
	r.store.catalog[item.ID] = item
	return nil
}

func (r *fakeItemRepo) UpdateStock(_ context.Context, id uuid.UUID, newStock int) error {
	item, ok := r.store.catalog[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.CurrentStock = newStock
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.catalog, id)
	return nil
}

func (r *fakeItemRepo) CreateMovement(_ context.Context, movement *model.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	r.store.movements = append(r.store.movements, *movement)
	return nil
}

func (r *fakeItemRepo) ListMovements(_ context.Context, itemID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var result []model.StockMovement
	for _, m := range r.store.movements {
		if m.ItemID == itemID {
			result = append(result, m)
		}
	}
	return result, int64(len(result)), nil
}

// --- SupplierRepository ---

type fakeSupplierRepo struct {
	store *fakeStore
}

func (r *fakeSupplierRepo) Create(_ context.Context, supplier *model.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	r.store.suppliers[supplier.ID] = supplier
	return nil
}

func (r *fakeSupplierRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, ok := r.store.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return supplier, nil
}

func (r *fakeSupplierRepo) List(_ context.Context, search string, page, limit int) ([]model.Supplier, int64, error) {
	var result []model.Supplier
	for _, supplier := range r.store.suppliers {
		result = append(result, *supplier)
	}
	return result, int64(len(result)), nil
}

func (r *fakeSupplierRepo) Update(_ context.Context, supplier *model.Supplier) error {
	r.store.suppliers[supplier.ID] = supplier
	return nil
}

func (r *fakeSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.suppliers, id)
	return nil
}

func (r *fakeSupplierRepo) CountItems(_ context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	for _, item := range r.store.catalog {
		if item.SupplierID == supplierID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSupplierRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	return nil, nil
}

func (r *fakeSupplierRepo) CreateCategory(_ context.Context, _ *model.Category) error {
	return nil
}

// --- Audit / notification sinks for the emitter ---

type fakeAuditRepo struct {
	store *fakeStore
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _ repository.AuditFilter) ([]model.AuditLog, int64, error) {
	return r.store.audits, int64(len(r.store.audits)), nil
}

type fakeNotificationRepo struct {
	store *fakeStore
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	r.store.notifications = append(r.store.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id {
			return &r.store.notifications[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, status string, page, limit int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range r.store.notifications {
		if n.UserID != userID {
			continue
		}
		if status != "" && n.Status != status {
			continue
		}
		result = append(result, n)
	}
	return result, int64(len(result)), nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.store.notifications {
		if n.UserID == userID && n.Status == model.NotificationUnread {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id {
			r.store.notifications[i].Status = model.NotificationRead
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for i := range r.store.notifications {
		if r.store.notifications[i].UserID == userID {
			r.store.notifications[i].Status = model.NotificationRead
		}
	}
	return nil
}

func newTestEmitter(store *fakeStore) *event.Emitter {
	return event.NewEmitter(&fakeAuditRepo{store: store}, &fakeNotificationRepo{store: store}, nil, nil)
}
