package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryType enum constants
const (
	CategoryTypeIncome  = "INCOME"
	CategoryTypeExpense = "EXPENSE"
)

// Account is a money pot (bank account, cash box, e-wallet). CurrentBalance
// is maintained by the ledger service under the same transaction that posts
// each entry.
type Account struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	LimitAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"limit_amount"` // Soft monthly cap, display-only
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TransactionCategory classifies ledger entries. Categories flagged
// IsFixedCost feed the weekly overhead calculation.
type TransactionCategory struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	TransactionType string    `gorm:"type:varchar(20);not null" json:"transaction_type"` // INCOME, EXPENSE
	IsFixedCost     bool      `gorm:"default:false" json:"is_fixed_cost"`
	CreatedAt       time.Time `json:"created_at"`
}

// LedgerEntry is one movement against an account. EntryDate is the business
// date (what the overhead window filters on), distinct from CreatedAt.
type LedgerEntry struct {
	ID              uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"account_id"`
	Account         *Account             `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	CategoryID      *uuid.UUID           `gorm:"type:uuid;index" json:"category_id"`
	Category        *TransactionCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Amount          decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description     string               `gorm:"type:varchar(255);not null" json:"description"`
	EntryDate       time.Time            `gorm:"type:date;not null;index" json:"entry_date"`
	FinancialWeekID *uuid.UUID           `gorm:"type:uuid;index" json:"financial_week_id"` // Set on entries generated by week closing
	CreatedAt       time.Time            `json:"created_at"`
}
