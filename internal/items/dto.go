package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohdashiqtp/procurement-app/internal/suppliers"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
)

// ItemDTO is the API view of a catalog item.
type ItemDTO struct {
	ID                uuid.UUID          `json:"id"`
	ItemNo            string             `json:"itemNo"`
	ItemName          string             `json:"itemName"`
	InventoryLocation string             `json:"inventoryLocation"`
	Brand             string             `json:"brand"`
	Category          string             `json:"category"`
	SupplierID        uuid.UUID          `json:"supplierId"`
	Supplier          *suppliers.Summary `json:"supplier"`
	StockUnit         enums.StockUnit    `json:"stockUnit"`
	UnitPrice         decimal.Decimal    `json:"unitPrice"`
	ItemImages        []string           `json:"itemImages"`
	Status            enums.ItemStatus   `json:"status"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// Summary is the slice of an item shown on order lines.
type Summary struct {
	ID        uuid.UUID       `json:"id"`
	ItemNo    string          `json:"itemNo"`
	ItemName  string          `json:"itemName"`
	StockUnit enums.StockUnit `json:"stockUnit"`
}

type CreateItemRequest struct {
	ItemName          string           `json:"itemName" validate:"required,max=200"`
	InventoryLocation string           `json:"inventoryLocation" validate:"max=200"`
	Brand             string           `json:"brand" validate:"max=100"`
	Category          string           `json:"category" validate:"max=100"`
	SupplierID        uuid.UUID        `json:"supplierId" validate:"required"`
	StockUnit         string           `json:"stockUnit" validate:"required,oneof=PCS BOX KG L pcs box kg l"`
	UnitPrice         *decimal.Decimal `json:"unitPrice" validate:"required"`
	Status            string           `json:"status" validate:"omitempty,oneof=Enabled Disabled"`
}

// UpdateItemRequest is a partial update. ItemNo may be echoed back but not changed.
type UpdateItemRequest struct {
	ItemNo            *string          `json:"itemNo"`
	ItemName          *string          `json:"itemName" validate:"omitempty,min=1,max=200"`
	InventoryLocation *string          `json:"inventoryLocation" validate:"omitempty,max=200"`
	Brand             *string          `json:"brand" validate:"omitempty,max=100"`
	Category          *string          `json:"category" validate:"omitempty,max=100"`
	SupplierID        *uuid.UUID       `json:"supplierId"`
	StockUnit         *string          `json:"stockUnit" validate:"omitempty,oneof=PCS BOX KG L pcs box kg l"`
	UnitPrice         *decimal.Decimal `json:"unitPrice"`
	Status            *string          `json:"status" validate:"omitempty,oneof=Enabled Disabled"`
}

type ListParams struct {
	Page       int
	Limit      int
	Sort       string
	Name       string
	Category   string
	Status     string
	SupplierID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

type ListResult struct {
	Items       []ItemDTO `json:"items"`
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	TotalItems  int64     `json:"totalItems"`
}

type BulkOpType string

const (
	BulkCreate BulkOpType = "create"
	BulkUpdate BulkOpType = "update"
	BulkDelete BulkOpType = "delete"
)

// BulkOperation is one decoded entry of a bulk request. Create is set for
// create operations and Update for update operations.
type BulkOperation struct {
	Type   BulkOpType
	ID     uuid.UUID
	Create *CreateItemRequest
	Update *UpdateItemRequest
}

type BulkResult struct {
	Type BulkOpType `json:"type"`
	ID   uuid.UUID  `json:"id"`
	Item *ItemDTO   `json:"item,omitempty"`
}

func toDTO(item *models.Item, supplier *suppliers.Summary, imageURL func(string) string) ItemDTO {
	images := make([]string, 0, len(item.ItemImages))
	for _, name := range item.ItemImages {
		images = append(images, imageURL(name))
	}
	return ItemDTO{
		ID:                item.ID,
		ItemNo:            item.ItemNo,
		ItemName:          item.ItemName,
		InventoryLocation: item.InventoryLocation,
		Brand:             item.Brand,
		Category:          item.Category,
		SupplierID:        item.SupplierID,
		Supplier:          supplier,
		StockUnit:         item.StockUnit,
		UnitPrice:         item.UnitPrice,
		ItemImages:        images,
		Status:            item.Status,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func SummaryFromModel(item *models.Item) *Summary {
	if item == nil {
		return nil
	}
	return &Summary{ID: item.ID, ItemNo: item.ItemNo, ItemName: item.ItemName, StockUnit: item.StockUnit}
}
