package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is an external vendor purchase orders are placed with
type Supplier struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Email         string    `gorm:"type:varchar(255)" json:"email"`
	Phone         string    `gorm:"type:varchar(30)" json:"phone"`
	Address       string    `gorm:"type:text" json:"address"`
	ContactPerson string    `gorm:"type:varchar(255)" json:"contact_person"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
