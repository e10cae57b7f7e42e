package database

import (
	"log"

	"stickerops/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.InternalOrder{},
		&model.InternalOrderItem{},
		&model.Account{},
		&model.TransactionCategory{},
		&model.LedgerEntry{},
		&model.FinancialStatus{},
		&model.FinancialWeek{},
		&model.OrderFinancialSnapshot{},
		&model.Partner{},
		&model.PartnerDistribution{},
		&model.CostType{},
		&model.ProductCostRule{},
		&model.OrderCostBreakdown{},
		&model.JobCostingConfig{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
