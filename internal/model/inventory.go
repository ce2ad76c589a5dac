package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups catalog items for reporting
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is a catalog entry that can be requested internally or ordered from a supplier
type Item struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Reference    string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"reference"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Unit         string    `gorm:"type:varchar(30);not null" json:"unit"` // piece, box, pack, ream...
	Price        float64   `gorm:"not null" json:"price"`
	MinStock     int       `gorm:"not null;default:0" json:"min_stock"`
	CurrentStock int       `gorm:"not null;default:0" json:"current_stock"`
	CategoryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Category     *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SupplierID   uuid.UUID `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier     *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockMovement type enum constants
const (
	MovementInbound    = "INBOUND"
	MovementOutbound   = "OUTBOUND"
	MovementAdjustment = "ADJUSTMENT"
)

// StockMovement records every change to an item's stock level
type StockMovement struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	Item      *Item      `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Type      string     `gorm:"type:varchar(20);not null" json:"type"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	Reason    string     `gorm:"type:varchar(255)" json:"reason"`
	Reference string     `gorm:"type:varchar(50);index" json:"reference"` // order number, request id...
	UserID    *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
