package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

// RequestFilter narrows request list queries on top of the access scope.
type RequestFilter struct {
	Status      string
	Priority    string
	Department  string
	RequesterID string
	Search      string
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	Limit       int
}

// RequestRepository defines data access for supply requests and their
// approval rows.
type RequestRepository interface {
	Create(ctx context.Context, request *model.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	List(ctx context.Context, scope access.Scope, filter RequestFilter) ([]model.Request, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ReplaceItems(ctx context.Context, id uuid.UUID, items []model.RequestItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListApprovedBetween returns APPROVED/COMPLETED requests with items and
	// requester preloaded for spending aggregation, scoped.
	ListApprovedBetween(ctx context.Context, scope access.Scope, start, end time.Time) ([]model.Request, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *model.Request) error {
	return GetDB(ctx, r.db).Create(request).Error
}

func (r *requestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var request model.Request
	err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Items").
		Preload("Items.Item").
		Preload("Items.Item.Category").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC, created_at ASC") }).
		Preload("Approvals.Approver").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) List(ctx context.Context, scope access.Scope, filter RequestFilter) ([]model.Request, int64, error) {
	base := scope.ApplyRequests(GetDB(ctx, r.db).Model(&model.Request{}))

	if filter.Status != "" {
		base = base.Where("requests.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		base = base.Where("requests.priority = ?", filter.Priority)
	}
	if filter.Department != "" {
		base = base.Where("requests.department = ?", filter.Department)
	}
	if filter.RequesterID != "" {
		base = base.Where("requests.requester_id = ?", filter.RequesterID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("requests.title ILIKE ? OR requests.description ILIKE ?", pattern, pattern)
	}
	if filter.StartDate != nil {
		base = base.Where("requests.created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		base = base.Where("requests.created_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.Request
	err := base.
		Preload("Requester").
		Preload("Items").
		Preload("Items.Item").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("level ASC, created_at ASC") }).
		Preload("Approvals.Approver").
		Order("requests.created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.Request{}).Where("id = ?", id).Updates(fields).Error
}

func (r *requestRepository) ReplaceItems(ctx context.Context, id uuid.UUID, items []model.RequestItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", id).Delete(&model.RequestItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *requestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	// Explicit cascade: item and approval rows first, then the request.
	if err := db.Where("request_id = ?", id).Delete(&model.RequestItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("request_id = ?", id).Delete(&model.Approval{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Request{}, "id = ?", id).Error
}

func (r *requestRepository) ListApprovedBetween(ctx context.Context, scope access.Scope, start, end time.Time) ([]model.Request, error) {
	var requests []model.Request
	err := scope.ApplyRequests(GetDB(ctx, r.db).Model(&model.Request{})).
		Where("requests.status IN ?", []string{model.RequestStatusApproved, model.RequestStatusCompleted}).
		Where("requests.created_at >= ? AND requests.created_at <= ?", start, end).
		Preload("Requester").
		Preload("Items").
		Preload("Items.Item").
		Preload("Items.Item.Category").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
