package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is a business owner entitled to a share of each week's
// distributable profit. Shares of the active partners are expected to sum to
// 100 but the system tolerates drift (see the partner service warning).
type Partner struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	User            *User           `gorm:"foreignKey:UserID" json:"-"`
	Name            string          `gorm:"type:varchar(200);not null" json:"name"`
	SharePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"share_percentage"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PartnerDistribution is one partner's cut of one closed week. Paying it is
// one-way: the linked ledger entry is created and the row flips to paid.
type PartnerDistribution struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FinancialWeekID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_week_partner" json:"financial_week_id"`
	FinancialWeek   *FinancialWeek  `gorm:"foreignKey:FinancialWeekID" json:"financial_week,omitempty"`
	PartnerID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_week_partner" json:"partner_id"`
	Partner         *Partner        `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	SharePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"share_percentage"`
	GrossAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_amount"`
	Status          string          `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	LedgerEntryID   *uuid.UUID      `gorm:"type:uuid" json:"ledger_entry_id"`
	LedgerEntry     *LedgerEntry    `gorm:"foreignKey:LedgerEntryID" json:"-"`
	PaidAt          *time.Time      `json:"paid_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
