package model

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseOrder status enum constants
const (
	OrderStatusDraft     = "DRAFT"
	OrderStatusSent      = "SENT"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusApproved  = "APPROVED"
	OrderStatusOrdered   = "ORDERED"
	OrderStatusReceived  = "RECEIVED"
)

// PurchaseOrder is a direct purchase placed with a supplier, independent of
// the internal request workflow.
type PurchaseOrder struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber  string      `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	SupplierID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier     *Supplier   `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	CreatedByID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"created_by_id"`
	CreatedBy    *User       `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	OrderDate    time.Time   `gorm:"not null" json:"order_date"`
	ExpectedDate *time.Time  `json:"expected_date"`
	ReceivedDate *time.Time  `json:"received_date"`
	Status       string      `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	TotalAmount  float64     `gorm:"not null;default:0" json:"total_amount"`
	Notes        string      `gorm:"type:text" json:"notes"`
	Items        []OrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem is a single catalog line on a purchase order
type OrderItem struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ItemID           uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	Item             *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	UnitPrice        float64   `gorm:"not null" json:"unit_price"`
	TotalPrice       float64   `gorm:"not null" json:"total_price"`
	ReceivedQuantity int       `gorm:"not null;default:0" json:"received_quantity"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
