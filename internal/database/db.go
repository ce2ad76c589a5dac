package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
)

// Config holds the postgres connection parameters.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c Config) dsn() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Connect opens a postgres connection and runs schema migration. The handle
// is returned to the caller for injection; no package-level singleton.
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Department{},
		&model.Category{},
		&model.Supplier{},
		&model.Item{},
		&model.StockMovement{},
		&model.Request{},
		&model.RequestItem{},
		&model.Approval{},
		&model.PurchaseOrder{},
		&model.OrderItem{},
		&model.Notification{},
		&model.AuditLog{},
	)
}
