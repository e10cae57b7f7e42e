package repository

import (
	"context"

	"stickerops/internal/model"

	"gorm.io/gorm"
)

// configSingletonID pins JobCostingConfig to one row.
const configSingletonID = 1

type ConfigRepository interface {
	// Get returns the singleton config, creating it with defaults on first use.
	Get(ctx context.Context) (*model.JobCostingConfig, error)
	Save(ctx context.Context, config *model.JobCostingConfig) error
}

type configRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) Get(ctx context.Context) (*model.JobCostingConfig, error) {
	var config model.JobCostingConfig
	err := GetDB(ctx, r.db).
		Where(model.JobCostingConfig{ID: configSingletonID}).
		FirstOrCreate(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *configRepository) Save(ctx context.Context, config *model.JobCostingConfig) error {
	config.ID = configSingletonID
	return GetDB(ctx, r.db).Save(config).Error
}
