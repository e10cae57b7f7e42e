package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cost measurement unit constants
const (
	UnitPiece       = "unit"
	UnitLinearMeter = "linear_meter"
	UnitSquareMeter = "square_meter"
	UnitFixed       = "fixed"
)

// Calculation method constants
const (
	MethodPerUnit      = "per_unit"
	MethodLinearMeters = "linear_meters"
	MethodSquareMeters = "square_meters"
	MethodManual       = "manual"
)

// Breakdown accounting status constants
const (
	BreakdownPending = "pending"
	BreakdownPosted  = "posted"
)

// CostType is a named production cost driver (cutting, vinyl material,
// transfer, printing...). SpecialMaterialPrice, when positive, prices items
// whose variant material is flagged special.
type CostType struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                 string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Unit                 string          `gorm:"type:varchar(30);not null;default:'unit'" json:"unit"`
	DefaultUnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"default_unit_price"`
	SpecialMaterialPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"special_material_price"`
	Description          string          `gorm:"type:text" json:"description"`
	IsActive             bool            `gorm:"default:true" json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ProductCostRule binds a CostType to a product type with a calculation
// method. MaterialWidthCm is required by the linear_meters method (roll
// width for the column layout) and unused otherwise.
type ProductCostRule struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductType       string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_ptype_ctype" json:"product_type"`
	CostTypeID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_ptype_ctype" json:"cost_type_id"`
	CostType          *CostType        `gorm:"foreignKey:CostTypeID" json:"cost_type,omitempty"`
	CalculationMethod string           `gorm:"type:varchar(30);not null;default:'per_unit'" json:"calculation_method"`
	MaterialWidthCm   *decimal.Decimal `gorm:"type:decimal(6,2)" json:"material_width_cm"`
	Position          int              `gorm:"not null;default:0" json:"position"`
	CreatedAt         time.Time        `json:"created_at"`
}

// OrderCostBreakdown is one estimated or manually entered cost line attached
// to an order. Auto-generated lines (IsManual=false) are wiped and rebuilt on
// every recompute; manual lines survive. A posted line is locked: it already
// produced a ledger entry.
type OrderCostBreakdown struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         *uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	InternalOrderID *uuid.UUID `gorm:"type:uuid;index" json:"internal_order_id"`
	CostTypeID      uuid.UUID  `gorm:"type:uuid;not null" json:"cost_type_id"`
	CostType        *CostType  `gorm:"foreignKey:CostTypeID" json:"cost_type,omitempty"`
	ProductType     string     `gorm:"type:varchar(50)" json:"product_type"`
	Description     string     `gorm:"type:varchar(255);not null" json:"description"`

	CalculatedQuantity decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"calculated_quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	IsManual           bool            `gorm:"default:false" json:"is_manual"`

	AccountingStatus string       `gorm:"type:varchar(10);not null;default:'pending'" json:"accounting_status"`
	LedgerEntryID    *uuid.UUID   `gorm:"type:uuid" json:"ledger_entry_id"`
	LedgerEntry      *LedgerEntry `gorm:"foreignKey:LedgerEntryID" json:"-"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobCostingConfig is the singleton (row id 1) holding the profit split and
// the ledger accounts the closing posts against. Loaded once per operation
// and passed to the calculators explicitly.
type JobCostingConfig struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	SavingsPercentage      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:5" json:"savings_percentage"`
	DistributionPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:95" json:"distribution_percentage"`
	PrincipalAccountID     *uuid.UUID      `gorm:"type:uuid" json:"principal_account_id"`
	PrincipalAccount       *Account        `gorm:"foreignKey:PrincipalAccountID" json:"-"`
	CostReserveAccountID   *uuid.UUID      `gorm:"type:uuid" json:"cost_reserve_account_id"`
	CostReserveAccount     *Account        `gorm:"foreignKey:CostReserveAccountID" json:"-"`
	SavingsAccountID       *uuid.UUID      `gorm:"type:uuid" json:"savings_account_id"`
	SavingsAccount         *Account        `gorm:"foreignKey:SavingsAccountID" json:"-"`
	DistributionAccountID  *uuid.UUID      `gorm:"type:uuid" json:"distribution_account_id"`
	DistributionAccount    *Account        `gorm:"foreignKey:DistributionAccountID" json:"-"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
