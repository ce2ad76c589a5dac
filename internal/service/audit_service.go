package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

type AuditLogResponse struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id,omitempty"`
	UserName  string                 `json:"user_name,omitempty"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entity_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

type ListAuditQuery struct {
	Action string
	Entity string
	UserID string
	Page   int
	Limit  int
}

// AuditService exposes the read side of the audit trail. Writes happen
// through the event emitter only.
type AuditService interface {
	List(ctx context.Context, query ListAuditQuery) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	audits repository.AuditRepository
}

func NewAuditService(audits repository.AuditRepository) AuditService {
	return &auditService{audits: audits}
}

func (s *auditService) List(ctx context.Context, query ListAuditQuery) ([]AuditLogResponse, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}

	entries, total, err := s.audits.List(ctx, repository.AuditFilter{
		Action: query.Action,
		Entity: query.Entity,
		UserID: query.UserID,
		Page:   query.Page,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch audit log")
	}

	result := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		resp := AuditLogResponse{
			ID:        entry.ID.String(),
			Action:    entry.Action,
			Entity:    entry.Entity,
			EntityID:  entry.EntityID,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.UserID != nil {
			resp.UserID = entry.UserID.String()
		}
		if entry.User != nil {
			resp.UserName = entry.User.Name
		}
		if entry.Details != "" {
			// Malformed rows keep Details nil rather than failing the list.
			_ = json.Unmarshal([]byte(entry.Details), &resp.Details)
		}
		result = append(result, resp)
	}
	return result, total, nil
}
