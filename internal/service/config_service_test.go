package service

import (
	"context"
	"testing"

	"stickerops/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateConfigPercentagesMustSumTo100(t *testing.T) {
	configRepo := new(mockConfigRepo)
	accountRepo := new(mockAccountRepo)
	svc := NewConfigService(configRepo, accountRepo)

	_, err := svc.Update(context.Background(), UpdateConfigRequest{
		SavingsPercentage:      "10",
		DistributionPercentage: "85",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 100")
	configRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateConfigRejectsNegativePercentages(t *testing.T) {
	configRepo := new(mockConfigRepo)
	accountRepo := new(mockAccountRepo)
	svc := NewConfigService(configRepo, accountRepo)

	_, err := svc.Update(context.Background(), UpdateConfigRequest{
		SavingsPercentage:      "-5",
		DistributionPercentage: "105",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}

func TestUpdateConfigResolvesAndClearsAccounts(t *testing.T) {
	configRepo := new(mockConfigRepo)
	accountRepo := new(mockAccountRepo)
	svc := NewConfigService(configRepo, accountRepo)

	oldSavings := uuid.New()
	configRepo.On("Get", mock.Anything).Return(&model.JobCostingConfig{
		SavingsPercentage:      d("5"),
		DistributionPercentage: d("95"),
		SavingsAccountID:       &oldSavings,
	}, nil)
	configRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.JobCostingConfig")).Return(nil)

	reserve := uuid.New()
	accountRepo.On("FindByID", mock.Anything, reserve).Return(&model.Account{ID: reserve}, nil)

	config, err := svc.Update(context.Background(), UpdateConfigRequest{
		SavingsPercentage:      "10",
		DistributionPercentage: "90",
		CostReserveAccountID:   reserve.String(),
	})
	require.NoError(t, err)

	assert.True(t, config.SavingsPercentage.Equal(d("10")))
	require.NotNil(t, config.CostReserveAccountID)
	assert.Equal(t, reserve, *config.CostReserveAccountID)
	// an omitted reference clears the previously configured account
	assert.Nil(t, config.SavingsAccountID)
}

func TestUpdateConfigRejectsUnknownAccount(t *testing.T) {
	configRepo := new(mockConfigRepo)
	accountRepo := new(mockAccountRepo)
	svc := NewConfigService(configRepo, accountRepo)

	configRepo.On("Get", mock.Anything).Return(&model.JobCostingConfig{}, nil)
	missing := uuid.New()
	accountRepo.On("FindByID", mock.Anything, missing).Return(nil, assert.AnError)

	_, err := svc.Update(context.Background(), UpdateConfigRequest{
		SavingsPercentage:      "5",
		DistributionPercentage: "95",
		PrincipalAccountID:     missing.String(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	configRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
