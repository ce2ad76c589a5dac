package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRequest  = "CREATE_REQUEST"
	ActionUpdateRequest  = "UPDATE_REQUEST"
	ActionDeleteRequest  = "DELETE_REQUEST"
	ActionApproveRequest = "APPROVE_REQUEST"
	ActionRejectRequest  = "REJECT_REQUEST"

	ActionCreateOrder  = "CREATE_ORDER"
	ActionUpdateOrder  = "UPDATE_ORDER"
	ActionDeleteOrder  = "DELETE_ORDER"
	ActionSendOrder    = "SEND_ORDER"
	ActionApproveOrder = "APPROVE_ORDER"
	ActionReceiveOrder = "RECEIVE_ORDER"

	ActionCreateItem  = "CREATE_ITEM"
	ActionUpdateItem  = "UPDATE_ITEM"
	ActionDeleteItem  = "DELETE_ITEM"
	ActionAdjustStock = "ADJUST_STOCK"

	ActionCreateSupplier = "CREATE_SUPPLIER"
	ActionUpdateSupplier = "UPDATE_SUPPLIER"
	ActionDeleteSupplier = "DELETE_SUPPLIER"

	ActionCreateUser = "CREATE_USER"
	ActionUpdateUser = "UPDATE_USER"
	ActionDeleteUser = "DELETE_USER"
)

// Audited entity names
const (
	EntityRequest       = "REQUEST"
	EntityPurchaseOrder = "PURCHASE_ORDER"
	EntityItem          = "ITEM"
	EntitySupplier      = "SUPPLIER"
	EntityUser          = "USER"
	EntityDepartment    = "DEPARTMENT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User      *User      `gorm:"foreignKey:UserID" json:"user"`
	Action    string     `gorm:"type:varchar(50);not null;index" json:"action"`
	Entity    string     `gorm:"type:varchar(50);not null;index" json:"entity"`
	EntityID  string     `gorm:"type:varchar(50);index" json:"entity_id"`
	Details   string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
