package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Financial state constants. StateSent is a legacy alias kept from the first
// version of the system; it is equivalent to StateDelivered everywhere.
const (
	StateCreated           = "created"
	StateMaterialPurchased = "material_purchased"
	StateInProduction      = "in_production"
	StateDelivered         = "delivered"
	StateSent              = "sent"
	StateCollected         = "collected"
	StateCancelled         = "cancelled"
)

// StateRank orders states for monotonic auto-sync: an inferred state only
// replaces the current one when it ranks strictly higher.
var StateRank = map[string]int{
	StateCreated:           0,
	StateMaterialPurchased: 1,
	StateInProduction:      2,
	StateDelivered:         3,
	StateCollected:         4,
	StateCancelled:         5,
}

// CanonicalState collapses the legacy "sent" alias onto "delivered".
func CanonicalState(state string) string {
	if state == StateSent {
		return StateDelivered
	}
	return state
}

// FinancialWeek status constants
const (
	WeekOpen   = "open"
	WeekClosed = "closed"
)

// PartnerDistribution status constants
const (
	DistributionPending = "pending"
	DistributionPaid    = "paid"
)

// FinancialStatus tracks the money side of one order, separate from its
// operational status. Exactly one of OrderID/InternalOrderID is set.
type FinancialStatus struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Order           *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	InternalOrderID *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"internal_order_id"`
	InternalOrder   *InternalOrder  `gorm:"foreignKey:InternalOrderID" json:"internal_order,omitempty"`
	State           string          `gorm:"type:varchar(20);not null;default:'created';index" json:"state"`
	SaleAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sale_amount"`
	SentAt          *time.Time      `json:"sent_at"`
	CollectedAt     *time.Time      `gorm:"index" json:"collected_at"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Attached returns the linked order through the common capability interface,
// or nil when neither side has been loaded.
func (fs *FinancialStatus) Attached() CostedOrder {
	if fs.Order != nil {
		return fs.Order
	}
	if fs.InternalOrder != nil {
		return fs.InternalOrder
	}
	return nil
}

// OrderKind reports which order variant this status belongs to.
func (fs *FinancialStatus) OrderKind() string {
	if fs.OrderID != nil {
		return OrderKindCatalog
	}
	return OrderKindInternal
}

// OrderRef is a short human-readable reference for messages and logs.
func (fs *FinancialStatus) OrderRef() string {
	if fs.OrderID != nil {
		return fmt.Sprintf("ORD-%s", shortID(*fs.OrderID))
	}
	if fs.InternalOrderID != nil {
		return fmt.Sprintf("INT-%s", shortID(*fs.InternalOrderID))
	}
	return fs.ID.String()
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// FinancialWeek is one Monday–Sunday accounting period. The numeric fields
// are zero while the week is open and become immutable history once closed.
type FinancialWeek struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Year       int       `gorm:"not null;uniqueIndex:idx_year_week" json:"year"`
	WeekNumber int       `gorm:"not null;uniqueIndex:idx_year_week" json:"week_number"`
	StartDate  time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null" json:"end_date"`
	Status     string    `gorm:"type:varchar(10);not null;default:'open'" json:"status"`

	TotalSales           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_sales"`
	TotalDirectCosts     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_direct_costs"`
	TotalFixedCosts      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_fixed_costs"`
	OverheadPercentage   decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"overhead_percentage"`
	TotalOverheadApplied decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_overhead_applied"`
	TotalNetProfit       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_net_profit"`
	SavingsAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"savings_amount"`
	DistributableAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"distributable_amount"`
	OrdersCount          int             `gorm:"not null;default:0" json:"orders_count"`

	ClosedAt   *time.Time `json:"closed_at"`
	ClosedByID *uuid.UUID `gorm:"type:uuid" json:"closed_by_id"`
	ClosedBy   *User      `gorm:"foreignKey:ClosedByID" json:"closed_by,omitempty"`
	Notes      string     `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Label formats the week as "33/2026" for messages.
func (w *FinancialWeek) Label() string {
	return fmt.Sprintf("%d/%d", w.WeekNumber, w.Year)
}

// OrderFinancialSnapshot freezes one order's profitability at week close.
// The unique index on FinancialStatusID guarantees an order is never counted
// into two closings.
type OrderFinancialSnapshot struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FinancialWeekID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"financial_week_id"`
	FinancialWeek     *FinancialWeek   `gorm:"foreignKey:FinancialWeekID" json:"-"`
	FinancialStatusID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"financial_status_id"`
	FinancialStatus   *FinancialStatus `gorm:"foreignKey:FinancialStatusID" json:"financial_status,omitempty"`

	SaleAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sale_amount"`
	DirectCosts        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"direct_costs"`
	ShippingCost       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_cost"`
	OverheadPercentage decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"overhead_percentage"`
	OverheadAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"overhead_amount"`
	NetProfit          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_profit"`
	CreatedAt          time.Time       `json:"created_at"`
}
