package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/mohdashiqtp/procurement-app/pkg/db/types"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
)

// Item is a catalog entry that purchase order lines point at.
type Item struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ItemNo            string              `gorm:"column:item_no;not null;uniqueIndex"`
	ItemName          string              `gorm:"column:item_name;not null"`
	InventoryLocation string              `gorm:"column:inventory_location;not null;default:''"`
	Brand             string              `gorm:"column:brand;not null;default:''"`
	Category          string              `gorm:"column:category;not null;default:''"`
	SupplierID        uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null;index"`
	StockUnit         enums.StockUnit     `gorm:"column:stock_unit;type:text;not null"`
	UnitPrice         decimal.Decimal     `gorm:"column:unit_price;type:numeric(14,2);not null"`
	ItemImages        dbtypes.StringArray `gorm:"column:item_images;not null"`
	Status            enums.ItemStatus    `gorm:"column:status;type:text;not null;default:Enabled"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Item) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	if i.ItemImages == nil {
		i.ItemImages = dbtypes.StringArray{}
	}
	return nil
}
