package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLineItem is an immutable snapshot embedded in its order. Catalog price
// changes after the order is saved do not touch it.
type OrderLineItem struct {
	ItemID      uuid.UUID       `json:"itemId"`
	PackingUnit string          `json:"packingUnit"`
	OrderQty    int             `json:"orderQty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ItemAmount  decimal.Decimal `json:"itemAmount"`
	Discount    decimal.Decimal `json:"discount"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

// PurchaseOrder owns its line items and references the supplier and items by id.
// ItemTotal, Discount and NetAmount always mirror the sums over Items.
type PurchaseOrder struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderNo      string          `gorm:"column:order_no;not null;uniqueIndex"`
	OrderDate    time.Time       `gorm:"column:order_date;not null"`
	SupplierID   uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;index"`
	SupplierName string          `gorm:"column:supplier_name;not null"`
	Items        []OrderLineItem `gorm:"column:items;type:jsonb;serializer:json;not null"`
	ItemTotal    decimal.Decimal `gorm:"column:item_total;type:numeric(14,2);not null"`
	Discount     decimal.Decimal `gorm:"column:discount;type:numeric(14,2);not null"`
	NetAmount    decimal.Decimal `gorm:"column:net_amount;type:numeric(14,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *PurchaseOrder) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	return nil
}
