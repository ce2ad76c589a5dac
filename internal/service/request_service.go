package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/access"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/event"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/workflow"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

// Actor is the authenticated caller threaded through every service call.
type Actor struct {
	ID         uuid.UUID
	Role       access.Role
	Department string
}

// Scope resolves the actor's data-visibility scope.
func (a Actor) Scope() access.Scope {
	return access.ScopeFor(a.Role, a.Department, a.ID)
}

// --- DTOs ---

type RequestItemPayload struct {
	ItemID    string  `json:"item_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
	Notes     string  `json:"notes"`
}

type CreateRequestDTO struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	Department  string               `json:"department"`
	Priority    string               `json:"priority"`
	Items       []RequestItemPayload `json:"items" binding:"required"`
}

type UpdateRequestDTO struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Priority    *string               `json:"priority"`
	Items       *[]RequestItemPayload `json:"items"` // pointer so nil = not sent
}

type DecisionDTO struct {
	Status   string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Comments string `json:"comments"`
}

type ListRequestsQuery struct {
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

type ApprovalResponse struct {
	ID           string `json:"id"`
	ApproverID   string `json:"approver_id"`
	ApproverName string `json:"approver_name"`
	Level        int    `json:"level"`
	Status       string `json:"status"`
	Comments     string `json:"comments"`
	UpdatedAt    string `json:"updated_at"`
}

type RequestItemResponse struct {
	ID         string  `json:"id"`
	ItemID     string  `json:"item_id"`
	ItemName   string  `json:"item_name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	Notes      string  `json:"notes,omitempty"`
}

type RequestResponse struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Department    string                `json:"department"`
	Priority      string                `json:"priority"`
	Status        string                `json:"status"`
	TotalAmount   float64               `json:"total_amount"`
	RequesterID   string                `json:"requester_id"`
	RequesterName string                `json:"requester_name"`
	Items         []RequestItemResponse `json:"items"`
	Approvals     []ApprovalResponse    `json:"approvals"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
}

// --- Interface ---

// RequestService is the approval workflow engine plus scoped request CRUD.
type RequestService interface {
	Submit(ctx context.Context, actor Actor, req CreateRequestDTO) (RequestResponse, error)
	List(ctx context.Context, actor Actor, query ListRequestsQuery) ([]RequestResponse, int64, error)
	Get(ctx context.Context, actor Actor, id string) (RequestResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateRequestDTO) (RequestResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Decide(ctx context.Context, actor Actor, id string, req DecisionDTO) (RequestResponse, error)
}

type requestService struct {
	requests  repository.RequestRepository
	approvals repository.ApprovalRepository
	users     repository.UserRepository
	txManager repository.TransactionManager
	emitter   *event.Emitter
}

func NewRequestService(
	requests repository.RequestRepository,
	approvals repository.ApprovalRepository,
	users repository.UserRepository,
	txManager repository.TransactionManager,
	emitter *event.Emitter,
) RequestService {
	return &requestService{
		requests:  requests,
		approvals: approvals,
		users:     users,
		txManager: txManager,
		emitter:   emitter,
	}
}

// --- Validation helpers ---

var validPriorities = map[string]bool{
	model.PriorityLow:    true,
	model.PriorityMedium: true,
	model.PriorityHigh:   true,
	model.PriorityUrgent: true,
}

func buildRequestItems(payloads []RequestItemPayload) ([]model.RequestItem, float64, error) {
	items := make([]model.RequestItem, 0, len(payloads))
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
		items = append(items, model.RequestItem{
			ItemID:     itemID,
			Quantity:   p.Quantity,
			UnitPrice:  p.UnitPrice,
			TotalPrice: &lineTotal,
			Notes:      p.Notes,
		})
	}
	return items, total, nil
}

// --- Operations ---

func (s *requestService) Submit(ctx context.Context, actor Actor, req CreateRequestDTO) (RequestResponse, error) {
	department := req.Department
	if department == "" {
		department = actor.Department
	}
	if department == "" {
		department = "GENERAL"
	}

	if req.Title == "" {
		return RequestResponse{}, apperror.Validation("title is required")
	}
	if len(req.Items) == 0 {
		return RequestResponse{}, apperror.Validation("at least one item is required")
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !validPriorities[priority] {
		return RequestResponse{}, apperror.Validation("priority must be one of: LOW, MEDIUM, HIGH, URGENT")
	}

	items, totalAmount, err := buildRequestItems(req.Items)
	if err != nil {
		return RequestResponse{}, err
	}

	request := model.Request{
		Title:       req.Title,
		Description: req.Description,
		Department:  department,
		Priority:    priority,
		Status:      model.RequestStatusPending,
		TotalAmount: totalAmount,
		RequesterID: actor.ID,
		Items:       items,
	}

	var approver *model.User
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requests.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}

		// Initial approval slot goes to the first active manager; any other
		// manager can claim it when deciding. Fall back to an admin when no
		// manager exists; with neither, the request just waits.
		approver = s.findInitialApprover(txCtx)
		if approver != nil {
			approval := model.Approval{
				RequestID:  request.ID,
				ApproverID: approver.ID,
				Level:      1,
				Status:     model.ApprovalPending,
			}
			if approvalErr := s.approvals.Create(txCtx, &approval); approvalErr != nil {
				return fmt.Errorf("failed to create approval: %w", approvalErr)
			}
		}
		return nil
	})
	if err != nil {
		return RequestResponse{}, apperror.Internal(err, "failed to create request")
	}

	ev := event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionCreateRequest,
		Entity:   model.EntityRequest,
		EntityID: request.ID.String(),
		Details: map[string]interface{}{
			"title":        request.Title,
			"department":   request.Department,
			"total_amount": request.TotalAmount,
		},
	}
	if approver != nil {
		ev.Notifications = []event.Notification{{
			UserID:    approver.ID,
			Type:      model.NotifyRequestSubmitted,
			Title:     "New request awaiting approval",
			Message:   fmt.Sprintf("%s requires your approval", request.Title),
			Category:  model.EntityRequest,
			RelatedID: request.ID.String(),
		}}
	}
	s.emitter.Emit(ctx, ev)

	created, err := s.requests.GetByID(ctx, request.ID)
	if err != nil {
		return RequestResponse{}, apperror.Internal(err, "failed to reload request")
	}
	return toRequestResponse(*created), nil
}

func (s *requestService) findInitialApprover(ctx context.Context) *model.User {
	if manager, err := s.users.FirstActiveByRole(ctx, access.RoleManager.String()); err == nil {
		return manager
	}
	if admin, err := s.users.FirstActiveByRole(ctx, access.RoleAdmin.String()); err == nil {
		return admin
	}
	return nil
}

func (s *requestService) List(ctx context.Context, actor Actor, query ListRequestsQuery) ([]RequestResponse, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	filter := repository.RequestFilter{
		Status:      query.Status,
		Priority:    query.Priority,
		Department:  query.Department,
		RequesterID: query.RequesterID,
		Search:      query.Search,
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
		Page:        query.Page,
		Limit:       query.Limit,
	}

	requests, total, err := s.requests.List(ctx, actor.Scope(), filter)
	if err != nil {
		return nil, 0, apperror.Internal(err, "failed to fetch requests")
	}

	result := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r))
	}
	return result, total, nil
}

func (s *requestService) Get(ctx context.Context, actor Actor, id string) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.Validation("invalid request id")
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, apperror.NotFound("request not found")
		}
		return RequestResponse{}, apperror.Internal(err, "failed to fetch request")
	}

	if !actor.Scope().Allows(request.RequesterID, request.Department) {
		return RequestResponse{}, apperror.Forbidden("you do not have access to this request")
	}
	return toRequestResponse(*request), nil
}

func (s *requestService) Update(ctx context.Context, actor Actor, id string, req UpdateRequestDTO) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.Validation("invalid request id")
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, apperror.NotFound("request not found")
		}
		return RequestResponse{}, apperror.Internal(err, "failed to fetch request")
	}

	// Only the requester or a decision-capable role within scope may edit,
	// and only while the workflow has not started deciding.
	if request.RequesterID != actor.ID {
		if !actor.Role.CanDecide() || !actor.Scope().Allows(request.RequesterID, request.Department) {
			return RequestResponse{}, apperror.Forbidden("you do not have access to this request")
		}
	}
	if request.Status != model.RequestStatusPending {
		return RequestResponse{}, apperror.AlreadyFinalized("only pending requests can be edited")
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		if *req.Title == "" {
			return RequestResponse{}, apperror.Validation("title cannot be empty")
		}
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Priority != nil {
		if !validPriorities[*req.Priority] {
			return RequestResponse{}, apperror.Validation("priority must be one of: LOW, MEDIUM, HIGH, URGENT")
		}
		fields["priority"] = *req.Priority
	}

	var items []model.RequestItem
	if req.Items != nil {
		if len(*req.Items) == 0 {
			return RequestResponse{}, apperror.Validation("at least one item is required")
		}
		var totalAmount float64
		items, totalAmount, err = buildRequestItems(*req.Items)
		if err != nil {
			return RequestResponse{}, err
		}
		for i := range items {
			items[i].RequestID = requestID
		}
		fields["total_amount"] = totalAmount
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Items != nil {
			if replaceErr := s.requests.ReplaceItems(txCtx, requestID, items); replaceErr != nil {
				return fmt.Errorf("failed to replace items: %w", replaceErr)
			}
		}
		if len(fields) > 0 {
			if updateErr := s.requests.UpdateFields(txCtx, requestID, fields); updateErr != nil {
				return fmt.Errorf("failed to update request: %w", updateErr)
			}
		}
		return nil
	})
	if err != nil {
		return RequestResponse{}, apperror.Internal(err, "failed to update request")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionUpdateRequest,
		Entity:   model.EntityRequest,
		EntityID: requestID.String(),
		Details:  map[string]interface{}{"title": request.Title},
	})

	updated, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return RequestResponse{}, apperror.Internal(err, "failed to reload request")
	}
	return toRequestResponse(*updated), nil
}

func (s *requestService) Delete(ctx context.Context, actor Actor, id string) error {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid request id")
	}

	if !actor.Role.CanDecide() {
		return apperror.Forbidden("only managers and admins can delete requests")
	}

	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("request not found")
		}
		return apperror.Internal(err, "failed to fetch request")
	}
	if !actor.Scope().Allows(request.RequesterID, request.Department) {
		return apperror.Forbidden("you do not have access to this request")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.requests.Delete(txCtx, requestID)
	})
	if err != nil {
		return apperror.Internal(err, "failed to delete request")
	}

	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   model.ActionDeleteRequest,
		Entity:   model.EntityRequest,
		EntityID: requestID.String(),
		Details:  map[string]interface{}{"title": request.Title},
	})
	return nil
}

// Decide records an approval decision and recomputes the request status.
// The whole read-modify-write runs under one transaction so two approvers
// racing on the same request cannot lose an update.
func (s *requestService) Decide(ctx context.Context, actor Actor, id string, req DecisionDTO) (RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return RequestResponse{}, apperror.Validation("invalid request id")
	}

	decision := workflow.Decision(req.Status)
	if !decision.Valid() {
		return RequestResponse{}, apperror.Validation("status must be APPROVED or REJECTED")
	}
	if decision == workflow.DecisionRejected && req.Comments == "" {
		return RequestResponse{}, apperror.Validation("comments are required when rejecting a request")
	}

	var request *model.Request
	var newStatus string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err = s.requests.GetByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request not found")
			}
			return fmt.Errorf("failed to fetch request: %w", err)
		}

		if workflow.IsTerminal(request.Status) {
			return apperror.AlreadyFinalized("request is already %s", strings.ToLower(request.Status))
		}

		current, locateErr := s.locateApproval(txCtx, request, actor)
		if locateErr != nil {
			return locateErr
		}

		current.Status = string(decision)
		current.Comments = req.Comments
		if updateErr := s.approvals.Update(txCtx, current); updateErr != nil {
			return fmt.Errorf("failed to update approval: %w", updateErr)
		}

		if decision == workflow.DecisionRejected {
			// Terminal regardless of any other level's state.
			newStatus = model.RequestStatusRejected
		} else {
			fresh, listErr := s.approvals.ListByRequest(txCtx, requestID)
			if listErr != nil {
				return fmt.Errorf("failed to reload approvals: %w", listErr)
			}
			newStatus = workflow.ComputeStatus(fresh)
		}

		if statusErr := s.requests.UpdateFields(txCtx, requestID, map[string]interface{}{"status": newStatus}); statusErr != nil {
			return fmt.Errorf("failed to update request status: %w", statusErr)
		}
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) != apperror.KindInternal {
			return RequestResponse{}, err
		}
		return RequestResponse{}, apperror.Internal(err, "failed to record decision")
	}

	action := model.ActionApproveRequest
	notifyType := model.NotifyRequestApproved
	notifyTitle := "Request approved"
	if decision == workflow.DecisionRejected {
		action = model.ActionRejectRequest
		notifyType = model.NotifyRequestRejected
		notifyTitle = "Request rejected"
	}
	s.emitter.Emit(ctx, event.Event{
		ActorID:  &actor.ID,
		Action:   action,
		Entity:   model.EntityRequest,
		EntityID: requestID.String(),
		Details: map[string]interface{}{
			"title":    request.Title,
			"decision": string(decision),
			"status":   newStatus,
			"comments": req.Comments,
		},
		Notifications: []event.Notification{{
			UserID:    request.RequesterID,
			Type:      notifyType,
			Title:     notifyTitle,
			Message:   fmt.Sprintf("Your request %q is now %s", request.Title, strings.ToLower(newStatus)),
			Category:  model.EntityRequest,
			RelatedID: requestID.String(),
		}},
	})

	updated, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return RequestResponse{}, apperror.Internal(err, "failed to reload request")
	}
	return toRequestResponse(*updated), nil
}

// locateApproval finds the pending approval slot the actor may decide on.
// Decision-capable roles without a slot of their own claim the lowest level
// that still has a pending row, or open a fresh level-1 slot when the
// request has no pending approvals left.
func (s *requestService) locateApproval(ctx context.Context, request *model.Request, actor Actor) (*model.Approval, error) {
	for i := range request.Approvals {
		a := &request.Approvals[i]
		if a.Status == model.ApprovalPending && a.ApproverID == actor.ID {
			return a, nil
		}
	}

	if !actor.Role.CanDecide() {
		return nil, apperror.Forbidden("you are not assigned to approve this request")
	}

	pending := make(map[int]bool)
	for _, a := range request.Approvals {
		if a.Status == model.ApprovalPending {
			pending[a.Level] = true
		}
	}
	for _, level := range workflow.Levels(request.Approvals) {
		if !pending[level] {
			continue
		}
		claimed, err := s.approvals.Claim(ctx, request.ID, actor.ID, level)
		if err != nil {
			return nil, fmt.Errorf("failed to claim approval: %w", err)
		}
		return claimed, nil
	}

	// No pending approvals at all: open a level-1 slot for the actor.
	approval := &model.Approval{
		RequestID:  request.ID,
		ApproverID: actor.ID,
		Level:      1,
		Status:     model.ApprovalPending,
	}
	if err := s.approvals.Create(ctx, approval); err != nil {
		return nil, fmt.Errorf("failed to create approval: %w", err)
	}
	return approval, nil
}

// --- Helpers ---

func toRequestResponse(r model.Request) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Department:  r.Department,
		Priority:    r.Priority,
		Status:      r.Status,
		TotalAmount: r.TotalAmount,
		RequesterID: r.RequesterID.String(),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Requester != nil {
		resp.RequesterName = r.Requester.Name
	}

	resp.Items = make([]RequestItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		ir := RequestItemResponse{
			ID:        item.ID.String(),
			ItemID:    item.ItemID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Notes:     item.Notes,
		}
		if item.TotalPrice != nil {
			ir.TotalPrice = *item.TotalPrice
		} else if item.Item != nil {
			ir.TotalPrice = item.Item.Price * float64(item.Quantity)
		}
		if item.Item != nil {
			ir.ItemName = item.Item.Name
		}
		resp.Items = append(resp.Items, ir)
	}

	resp.Approvals = make([]ApprovalResponse, 0, len(r.Approvals))
	for _, a := range r.Approvals {
		ar := ApprovalResponse{
			ID:         a.ID.String(),
			ApproverID: a.ApproverID.String(),
			Level:      a.Level,
			Status:     a.Status,
			Comments:   a.Comments,
			UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
		}
		if a.Approver != nil {
			ar.ApproverName = a.Approver.Name
		}
		resp.Approvals = append(resp.Approvals, ar)
	}

	return resp
}
