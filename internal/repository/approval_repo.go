package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

// ApprovalRepository defines data access for approval rows.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *model.Approval) error
	Update(ctx context.Context, approval *model.Approval) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Approval, error)
	// Claim reassigns a pending slot at the given level to approverID: the
	// upsert keyed by (request, approver, level) either revives the caller's
	// own row or opens a new PENDING one next to the unclaimed slot.
	Claim(ctx context.Context, requestID, approverID uuid.UUID, level int) (*model.Approval, error)
}

type approvalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Create(approval).Error
}

func (r *approvalRepository) Update(ctx context.Context, approval *model.Approval) error {
	return GetDB(ctx, r.db).Save(approval).Error
}

func (r *approvalRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.Approval, error) {
	var approvals []model.Approval
	err := GetDB(ctx, r.db).
		Where("request_id = ?", requestID).
		Order("level ASC, created_at ASC").
		Find(&approvals).Error
	if err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *approvalRepository) Claim(ctx context.Context, requestID, approverID uuid.UUID, level int) (*model.Approval, error) {
	approval := model.Approval{
		RequestID:  requestID,
		ApproverID: approverID,
		Level:      level,
		Status:     model.ApprovalPending,
	}
	err := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}, {Name: "approver_id"}, {Name: "level"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"status": model.ApprovalPending}),
	}).Create(&approval).Error
	if err != nil {
		return nil, err
	}

	// Reload so the caller sees the persisted row either way.
	var claimed model.Approval
	err = GetDB(ctx, r.db).
		Where("request_id = ? AND approver_id = ? AND level = ?", requestID, approverID, level).
		First(&claimed).Error
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}
