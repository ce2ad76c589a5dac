package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification status enum constants
const (
	NotificationUnread = "UNREAD"
	NotificationRead   = "READ"
)

// Notification type enum constants
const (
	NotifyRequestSubmitted = "REQUEST_SUBMITTED"
	NotifyRequestApproved  = "REQUEST_APPROVED"
	NotifyRequestRejected  = "REQUEST_REJECTED"
	NotifyOrderReceived    = "ORDER_RECEIVED"
	NotifyLowStock         = "LOW_STOCK"
)

// Notification is a per-user message created best-effort after a mutation
// commits. Delivery failures never roll back the primary change.
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string    `gorm:"type:varchar(40);not null" json:"type"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	Status    string    `gorm:"type:varchar(10);not null;default:'UNREAD';index" json:"status"`
	Category  string    `gorm:"type:varchar(40);index" json:"category"`
	RelatedID string    `gorm:"type:varchar(50)" json:"related_id"` // request / order id
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
