package service

import (
	"context"
	"fmt"
	"time"

	"stickerops/internal/model"
	"stickerops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateAccountRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	LimitAmount string `json:"limit_amount"`
}

type CreateCategoryRequest struct {
	Name            string `json:"name" binding:"required"`
	TransactionType string `json:"transaction_type" binding:"required,oneof=INCOME EXPENSE"`
	IsFixedCost     bool   `json:"is_fixed_cost"`
}

type RecordEntryRequest struct {
	AccountID   string `json:"account_id" binding:"required"`
	CategoryID  string `json:"category_id"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
	EntryDate   string `json:"entry_date"` // YYYY-MM-DD, defaults to today
}

// PostEntryInput is the internal primitive the other services use to write
// ledger entries inside their own transactions.
type PostEntryInput struct {
	AccountID       uuid.UUID
	Category        *model.TransactionCategory
	Amount          decimal.Decimal
	Description     string
	EntryDate       time.Time
	FinancialWeekID *uuid.UUID
}

// --- Interface ---

type LedgerService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.TransactionCategory, error)
	ListCategories(ctx context.Context) ([]model.TransactionCategory, error)
	RecordEntry(ctx context.Context, req RecordEntryRequest) (*model.LedgerEntry, error)
	ListEntries(ctx context.Context, page, limit int) ([]model.LedgerEntry, int64, error)

	// PostEntry locks the account, applies the signed movement to its
	// balance and writes the entry, all on the caller's transaction.
	// INCOME categories add to the balance, EXPENSE categories subtract.
	PostEntry(ctx context.Context, in PostEntryInput) (*model.LedgerEntry, error)
}

type ledgerService struct {
	ledgerRepo  repository.LedgerRepository
	accountRepo repository.AccountRepository
	txManager   repository.TransactionManager
}

func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	accountRepo repository.AccountRepository,
	txManager repository.TransactionManager,
) LedgerService {
	return &ledgerService{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *ledgerService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*model.Account, error) {
	limit := decimal.Zero
	if req.LimitAmount != "" {
		parsed, err := decimal.NewFromString(req.LimitAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid limit amount: %w", err)
		}
		limit = parsed
	}

	account := &model.Account{
		Name:        req.Name,
		Description: req.Description,
		LimitAmount: limit,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *ledgerService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.accountRepo.List(ctx)
}

func (s *ledgerService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*model.TransactionCategory, error) {
	category := &model.TransactionCategory{
		Name:            req.Name,
		TransactionType: req.TransactionType,
		IsFixedCost:     req.IsFixedCost,
	}
	if err := s.ledgerRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *ledgerService) ListCategories(ctx context.Context) ([]model.TransactionCategory, error) {
	return s.ledgerRepo.ListCategories(ctx)
}

func (s *ledgerService) RecordEntry(ctx context.Context, req RecordEntryRequest) (*model.LedgerEntry, error) {
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id: %w", err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be positive")
	}

	entryDate := time.Now()
	if req.EntryDate != "" {
		entryDate, err = time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid entry date: %w", err)
		}
	}

	var category *model.TransactionCategory
	if req.CategoryID != "" {
		categoryID, parseErr := uuid.Parse(req.CategoryID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid category id: %w", parseErr)
		}
		found, findErr := s.ledgerRepo.FindCategoryByID(ctx, categoryID)
		if findErr != nil {
			return nil, fmt.Errorf("category not found: %w", findErr)
		}
		category = found
	}

	var entry *model.LedgerEntry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		posted, postErr := s.PostEntry(txCtx, PostEntryInput{
			AccountID:   accountID,
			Category:    category,
			Amount:      amount,
			Description: req.Description,
			EntryDate:   entryDate,
		})
		if postErr != nil {
			return postErr
		}
		entry = posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, page, limit int) ([]model.LedgerEntry, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.ledgerRepo.ListEntries(ctx, page, limit)
}

func (s *ledgerService) PostEntry(ctx context.Context, in PostEntryInput) (*model.LedgerEntry, error) {
	account, err := s.accountRepo.FindByIDForUpdate(ctx, in.AccountID)
	if err != nil {
		return nil, fmt.Errorf("account not found: %w", err)
	}

	movement := in.Amount
	if in.Category != nil && in.Category.TransactionType == model.CategoryTypeExpense {
		movement = movement.Neg()
	}
	account.CurrentBalance = account.CurrentBalance.Add(movement)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account balance: %w", err)
	}

	entry := &model.LedgerEntry{
		AccountID:       in.AccountID,
		Amount:          in.Amount,
		Description:     in.Description,
		EntryDate:       in.EntryDate,
		FinancialWeekID: in.FinancialWeekID,
	}
	if in.Category != nil {
		entry.CategoryID = &in.Category.ID
	}
	if err := s.ledgerRepo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return entry, nil
}
