package service

import (
	"context"
	"fmt"

	"stickerops/internal/model"
	"stickerops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UpdateConfigRequest struct {
	SavingsPercentage      string `json:"savings_percentage" binding:"required"`
	DistributionPercentage string `json:"distribution_percentage" binding:"required"`
	PrincipalAccountID     string `json:"principal_account_id"`
	CostReserveAccountID   string `json:"cost_reserve_account_id"`
	SavingsAccountID       string `json:"savings_account_id"`
	DistributionAccountID  string `json:"distribution_account_id"`
}

// --- Interface ---

type ConfigService interface {
	Get(ctx context.Context) (*model.JobCostingConfig, error)
	// Update validates that the savings and distribution percentages sum to
	// exactly 100 before saving.
	Update(ctx context.Context, req UpdateConfigRequest) (*model.JobCostingConfig, error)
}

type configService struct {
	configRepo  repository.ConfigRepository
	accountRepo repository.AccountRepository
}

func NewConfigService(configRepo repository.ConfigRepository, accountRepo repository.AccountRepository) ConfigService {
	return &configService{configRepo: configRepo, accountRepo: accountRepo}
}

// --- Implementation ---

func (s *configService) Get(ctx context.Context) (*model.JobCostingConfig, error) {
	return s.configRepo.Get(ctx)
}

func (s *configService) Update(ctx context.Context, req UpdateConfigRequest) (*model.JobCostingConfig, error) {
	savings, err := decimal.NewFromString(req.SavingsPercentage)
	if err != nil {
		return nil, fmt.Errorf("invalid savings percentage: %w", err)
	}
	distribution, err := decimal.NewFromString(req.DistributionPercentage)
	if err != nil {
		return nil, fmt.Errorf("invalid distribution percentage: %w", err)
	}
	if savings.IsNegative() || distribution.IsNegative() {
		return nil, fmt.Errorf("percentages must not be negative")
	}
	if !savings.Add(distribution).Equal(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("savings and distribution percentages must sum to 100")
	}

	config, err := s.configRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.SavingsPercentage = savings
	config.DistributionPercentage = distribution

	if config.PrincipalAccountID, err = s.resolveAccount(ctx, req.PrincipalAccountID); err != nil {
		return nil, err
	}
	if config.CostReserveAccountID, err = s.resolveAccount(ctx, req.CostReserveAccountID); err != nil {
		return nil, err
	}
	if config.SavingsAccountID, err = s.resolveAccount(ctx, req.SavingsAccountID); err != nil {
		return nil, err
	}
	if config.DistributionAccountID, err = s.resolveAccount(ctx, req.DistributionAccountID); err != nil {
		return nil, err
	}

	if err := s.configRepo.Save(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return config, nil
}

// resolveAccount parses and verifies an optional account reference. An empty
// string clears the slot.
func (s *configService) resolveAccount(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", raw, err)
	}
	if _, err := s.accountRepo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("account %s not found: %w", id, err)
	}
	return &id, nil
}
