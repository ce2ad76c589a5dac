package model

import (
	"time"

	"github.com/google/uuid"
)

// Request status enum constants
const (
	RequestStatusPending    = "PENDING"
	RequestStatusInProgress = "IN_PROGRESS"
	RequestStatusApproved   = "APPROVED"
	RequestStatusRejected   = "REJECTED"
	RequestStatusCompleted  = "COMPLETED"
)

// Request priority enum constants
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Request is an employee supply request routed through the approval workflow.
// Its status is always derived from the Approval rows — never set directly
// on a decision other than through the workflow computation.
type Request struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Department  string        `gorm:"type:varchar(100);not null;index" json:"department"`
	Priority    string        `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	Status      string        `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	TotalAmount float64       `gorm:"not null;default:0" json:"total_amount"`
	RequesterID uuid.UUID     `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester   *User         `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Items       []RequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Approvals   []Approval    `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"approvals,omitempty"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// RequestItem is a single catalog line on a request.
// TotalPrice is denormalized (quantity * unit price); legacy rows may carry
// NULL, in which case aggregations fall back to catalog price * quantity.
type RequestItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	Item      *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	TotalPrice *float64 `json:"total_price"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Approval status enum constants
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Approval is one approver slot at one tier of a request's approval chain.
// Several rows may share a level (parallel approvers); a level is satisfied
// once any one of its rows is APPROVED. The unique index backs the
// claim-by-upsert path where a manager takes over an unclaimed slot.
type Approval struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_request_approver_level" json:"request_id"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_request_approver_level" json:"approver_id"`
	Approver   *User     `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Level      int       `gorm:"not null;default:1;uniqueIndex:idx_request_approver_level" json:"level"`
	Status     string    `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Comments   string    `gorm:"type:text" json:"comments"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
