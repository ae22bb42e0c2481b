package purchaseorders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohdashiqtp/procurement-app/internal/items"
	"github.com/mohdashiqtp/procurement-app/internal/suppliers"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
)

// LineRequest is one requested order line. UnitPrice falls back to the
// catalog price when omitted.
type LineRequest struct {
	ItemID      uuid.UUID        `json:"itemId" validate:"required"`
	PackingUnit string           `json:"packingUnit" validate:"max=50"`
	OrderQty    int              `json:"orderQty" validate:"required,min=1"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	Discount    *decimal.Decimal `json:"discount"`

	// computed server-side; accepted so clients can echo a full line back
	ItemAmount *decimal.Decimal `json:"itemAmount"`
	NetAmount  *decimal.Decimal `json:"netAmount"`
}

// CreateOrderRequest carries the order header and its lines. The order number
// and aggregate fields are ignored; the server assigns and recomputes them.
type CreateOrderRequest struct {
	OrderNo    *string       `json:"orderNo"`
	SupplierID uuid.UUID     `json:"supplierId" validate:"required"`
	OrderDate  *time.Time    `json:"orderDate"`
	Items      []LineRequest `json:"items" validate:"required,min=1,dive"`

	ItemTotal *decimal.Decimal `json:"itemTotal"`
	Discount  *decimal.Decimal `json:"discount"`
	NetAmount *decimal.Decimal `json:"netAmount"`
}

// UpdateOrderRequest is a partial update. Items, when present, replaces the
// whole line sequence. Status is checked and otherwise ignored; the order
// number never changes.
type UpdateOrderRequest struct {
	OrderNo    *string       `json:"orderNo"`
	SupplierID *uuid.UUID    `json:"supplierId"`
	OrderDate  *time.Time    `json:"orderDate"`
	Items      []LineRequest `json:"items" validate:"omitempty,min=1,dive"`
	Status     *string       `json:"status" validate:"omitempty,oneof=pending approved rejected"`

	ItemTotal *decimal.Decimal `json:"itemTotal"`
	Discount  *decimal.Decimal `json:"discount"`
	NetAmount *decimal.Decimal `json:"netAmount"`
}

type LineDTO struct {
	ItemID      uuid.UUID       `json:"itemId"`
	Item        *items.Summary  `json:"item"`
	PackingUnit string          `json:"packingUnit"`
	OrderQty    int             `json:"orderQty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	ItemAmount  decimal.Decimal `json:"itemAmount"`
	Discount    decimal.Decimal `json:"discount"`
	NetAmount   decimal.Decimal `json:"netAmount"`
}

type OrderDTO struct {
	ID           uuid.UUID          `json:"id"`
	OrderNo      string             `json:"orderNo"`
	OrderDate    time.Time          `json:"orderDate"`
	SupplierID   uuid.UUID          `json:"supplierId"`
	SupplierName string             `json:"supplierName"`
	Supplier     *suppliers.Summary `json:"supplier"`
	Items        []LineDTO          `json:"items"`
	ItemTotal    decimal.Decimal    `json:"itemTotal"`
	Discount     decimal.Decimal    `json:"discount"`
	NetAmount    decimal.Decimal    `json:"netAmount"`
	TotalItems   int                `json:"totalItems"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type ListParams struct {
	SupplierID *uuid.UUID
}

type TotalsDTO struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Count       int64           `json:"count"`
}

func toDTO(order *models.PurchaseOrder, supplier *models.Supplier, itemsByID map[uuid.UUID]*models.Item) OrderDTO {
	lines := make([]LineDTO, 0, len(order.Items))
	for _, line := range order.Items {
		lines = append(lines, LineDTO{
			ItemID:      line.ItemID,
			Item:        items.SummaryFromModel(itemsByID[line.ItemID]),
			PackingUnit: line.PackingUnit,
			OrderQty:    line.OrderQty,
			UnitPrice:   line.UnitPrice,
			ItemAmount:  line.ItemAmount,
			Discount:    line.Discount,
			NetAmount:   line.NetAmount,
		})
	}
	return OrderDTO{
		ID:           order.ID,
		OrderNo:      order.OrderNo,
		OrderDate:    order.OrderDate,
		SupplierID:   order.SupplierID,
		SupplierName: order.SupplierName,
		Supplier:     suppliers.SummaryFromModel(supplier),
		Items:        lines,
		ItemTotal:    order.ItemTotal,
		Discount:     order.Discount,
		NetAmount:    order.NetAmount,
		TotalItems:   TotalQuantity(order.Items),
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}
