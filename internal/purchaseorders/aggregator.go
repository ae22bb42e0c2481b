package purchaseorders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
)

// moneyPlaces matches the numeric(14,2) columns.
const moneyPlaces = 2

// LineInput is one requested order line after its item has been resolved.
type LineInput struct {
	ItemID      uuid.UUID
	PackingUnit string
	OrderQty    int
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
}

// Totals are the order-level sums over its lines.
type Totals struct {
	ItemTotal decimal.Decimal
	Discount  decimal.Decimal
	NetAmount decimal.Decimal
}

// BuildLine validates in and computes its amounts. index is reported back in
// the error details so callers can point at the offending line.
func BuildLine(index int, in LineInput) (models.OrderLineItem, error) {
	switch {
	case in.OrderQty < 1:
		return models.OrderLineItem{}, lineError(index, "orderQty", "orderQty must be at least 1")
	case in.UnitPrice.IsNegative():
		return models.OrderLineItem{}, lineError(index, "unitPrice", "unitPrice cannot be negative")
	case in.Discount.IsNegative():
		return models.OrderLineItem{}, lineError(index, "discount", "discount cannot be negative")
	}

	unitPrice := in.UnitPrice.Round(moneyPlaces)
	discount := in.Discount.Round(moneyPlaces)
	amount := unitPrice.Mul(decimal.NewFromInt(int64(in.OrderQty))).Round(moneyPlaces)
	return models.OrderLineItem{
		ItemID:      in.ItemID,
		PackingUnit: in.PackingUnit,
		OrderQty:    in.OrderQty,
		UnitPrice:   unitPrice,
		ItemAmount:  amount,
		Discount:    discount,
		NetAmount:   amount.Sub(discount),
	}, nil
}

// Aggregate sums the lines. A single line may net below zero; Check decides
// whether the order as a whole is acceptable.
func Aggregate(lines []models.OrderLineItem) Totals {
	itemTotal := decimal.Zero
	discount := decimal.Zero
	for _, line := range lines {
		itemTotal = itemTotal.Add(line.ItemAmount)
		discount = discount.Add(line.Discount)
	}
	itemTotal = itemTotal.Round(moneyPlaces)
	discount = discount.Round(moneyPlaces)
	return Totals{
		ItemTotal: itemTotal,
		Discount:  discount,
		NetAmount: itemTotal.Sub(discount),
	}
}

// Check rejects orders whose discounts exceed their item total.
func (t Totals) Check() error {
	if t.NetAmount.IsNegative() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "discount %s exceeds item total %s",
			t.Discount.StringFixed(moneyPlaces), t.ItemTotal.StringFixed(moneyPlaces)).
			WithDetails(map[string]any{"field": "discount"})
	}
	return nil
}

// TotalQuantity is the number of units across all lines.
func TotalQuantity(lines []models.OrderLineItem) int {
	total := 0
	for _, line := range lines {
		total += line.OrderQty
	}
	return total
}

func lineError(index int, field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).
		WithDetails(map[string]any{"field": field, "line": index})
}
