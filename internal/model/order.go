package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderKind enum constants for the two order variants the costing core accepts.
const (
	OrderKindCatalog  = "catalog"
	OrderKindInternal = "internal"
)

// Catalog order operational status constants
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Internal order operational status constants
const (
	InternalStatusDraft        = "draft"
	InternalStatusConfirmed    = "confirmed"
	InternalStatusInProduction = "in_production"
	InternalStatusCompleted    = "completed"
	InternalStatusCancelled    = "cancelled"
)

// ProductVariant carries the physical data the cost calculator needs:
// dimensions and whether the material is priced as special (metallic etc.).
// The catalog subsystem owns the rest of the product record.
type ProductVariant struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductName       string          `gorm:"type:varchar(200);not null" json:"product_name"`
	ProductType       string          `gorm:"type:varchar(50);not null;index" json:"product_type"` // vinilo_corte, impreso_globo, cinta, logo
	SizeName          string          `gorm:"type:varchar(50)" json:"size_name"`
	HeightCm          decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"height_cm"`
	WidthCm           decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"width_cm"`
	MaterialName      string          `gorm:"type:varchar(50)" json:"material_name"`
	MaterialIsSpecial bool            `gorm:"default:false" json:"material_is_special"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Order is a catalog (customer) sales order.
type Order struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderCode    string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_code"`
	CustomerName string          `gorm:"type:varchar(200)" json:"customer_name"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	IsPaid       bool            `gorm:"default:false" json:"is_paid"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OrderItem is a line of a catalog order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	VariantID uuid.UUID       `gorm:"type:uuid;not null;index" json:"variant_id"`
	Variant   ProductVariant  `gorm:"foreignKey:VariantID" json:"variant"`
	Quantity  int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// InternalOrder is a production order created from the dashboard rather than
// the storefront.
type InternalOrder struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string              `gorm:"type:varchar(200);not null" json:"name"`
	Description    string              `gorm:"type:text" json:"description"`
	Status         string              `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	TotalEstimated decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"total_estimated"`
	ShippingCost   decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	IsPaid         bool                `gorm:"default:false" json:"is_paid"`
	Items          []InternalOrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedByID    *uuid.UUID          `gorm:"type:uuid" json:"created_by_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// InternalOrderItem is a line of an internal order.
type InternalOrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	VariantID uuid.UUID       `gorm:"type:uuid;not null;index" json:"variant_id"`
	Variant   ProductVariant  `gorm:"foreignKey:VariantID" json:"variant"`
	Quantity  int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

// CostingItem is the per-line view the cost calculator works with,
// independent of which order variant the line came from.
type CostingItem struct {
	Quantity int
	Variant  ProductVariant
}

// CostedOrder is the capability interface both order variants satisfy. The
// costing core depends on this, never on the concrete order types, so the
// order/ledger collaborators and the costing engine stay decoupled.
type CostedOrder interface {
	CostingID() uuid.UUID
	Kind() string
	SaleTotal() decimal.Decimal
	Paid() bool
	OperationalStatus() string
	Shipping() decimal.Decimal
	CostingItems() []CostingItem
}

func (o *Order) CostingID() uuid.UUID { return o.ID }
func (o *Order) Kind() string { return OrderKindCatalog }
func (o *Order) SaleTotal() decimal.Decimal { return o.Total }
func (o *Order) Paid() bool { return o.IsPaid }
func (o *Order) OperationalStatus() string { return o.Status }
func (o *Order) Shipping() decimal.Decimal { return o.ShippingCost }
func (o *Order) CostingItems() []CostingItem {
	items := make([]CostingItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, CostingItem{Quantity: it.Quantity, Variant: it.Variant})
	}
	return items
}

func (o *InternalOrder) CostingID() uuid.UUID { return o.ID }
func (o *InternalOrder) Kind() string { return OrderKindInternal }
func (o *InternalOrder) SaleTotal() decimal.Decimal { return o.TotalEstimated }
func (o *InternalOrder) Paid() bool { return o.IsPaid }
func (o *InternalOrder) OperationalStatus() string { return o.Status }
func (o *InternalOrder) Shipping() decimal.Decimal { return o.ShippingCost }
func (o *InternalOrder) CostingItems() []CostingItem {
	items := make([]CostingItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, CostingItem{Quantity: it.Quantity, Variant: it.Variant})
	}
	return items
}
