package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/pkg/enums"
)

// Supplier is a vendor purchase orders are raised against.
type Supplier struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	SupplierNo   string               `gorm:"column:supplier_no;not null;uniqueIndex"`
	SupplierName string               `gorm:"column:supplier_name;not null"`
	Address      string               `gorm:"column:address;not null"`
	TaxNo        string               `gorm:"column:tax_no;not null"`
	Country      enums.Country        `gorm:"column:country;type:text;not null;index"`
	MobileNo     string               `gorm:"column:mobile_no;not null"`
	Email        string               `gorm:"column:email;not null"`
	Status       enums.SupplierStatus `gorm:"column:status;type:text;not null;default:Active"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
