package purchaseorders

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestAggregateScenario(t *testing.T) {
	first, err := BuildLine(0, LineInput{ItemID: uuid.New(), OrderQty: 3, UnitPrice: dec("10"), Discount: dec("2")})
	require.NoError(t, err)
	second, err := BuildLine(1, LineInput{ItemID: uuid.New(), OrderQty: 4, UnitPrice: dec("5"), Discount: decimal.Zero})
	require.NoError(t, err)

	assert.True(t, first.ItemAmount.Equal(dec("30")))
	assert.True(t, first.NetAmount.Equal(dec("28")))
	assert.True(t, second.ItemAmount.Equal(dec("20")))

	lines := []models.OrderLineItem{first, second}
	totals := Aggregate(lines)
	assert.Equal(t, "50.00", totals.ItemTotal.StringFixed(2))
	assert.Equal(t, "2.00", totals.Discount.StringFixed(2))
	assert.Equal(t, "48.00", totals.NetAmount.StringFixed(2))
	assert.Equal(t, 7, TotalQuantity(lines))
}

func TestAggregateMatchesLineSums(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		var lines []models.OrderLineItem
		sum := decimal.Zero
		for i := 0; i < rng.Intn(10)+1; i++ {
			line, err := BuildLine(i, LineInput{
				ItemID:    uuid.New(),
				OrderQty:  rng.Intn(100) + 1,
				UnitPrice: decimal.New(rng.Int63n(100000), -2),
				Discount:  decimal.New(rng.Int63n(500), -2),
			})
			require.NoError(t, err)
			sum = sum.Add(line.ItemAmount)
			lines = append(lines, line)
		}
		totals := Aggregate(lines)
		assert.True(t, totals.ItemTotal.Equal(sum))
		assert.True(t, totals.NetAmount.Equal(totals.ItemTotal.Sub(totals.Discount)))
	}
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil)
	assert.True(t, totals.ItemTotal.IsZero())
	assert.True(t, totals.NetAmount.IsZero())
}

func TestBuildLineRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		in    LineInput
		field string
	}{
		{"zero quantity", LineInput{OrderQty: 0, UnitPrice: dec("1")}, "orderQty"},
		{"negative price", LineInput{OrderQty: 1, UnitPrice: dec("-1")}, "unitPrice"},
		{"negative discount", LineInput{OrderQty: 1, UnitPrice: dec("1"), Discount: dec("-0.01")}, "discount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildLine(3, tt.in)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			details := typed.Details().(map[string]any)
			assert.Equal(t, tt.field, details["field"])
			assert.Equal(t, 3, details["line"])
		})
	}
}

func TestCheckRejectsNegativeNet(t *testing.T) {
	over, err := BuildLine(0, LineInput{OrderQty: 1, UnitPrice: dec("5"), Discount: dec("8")})
	require.NoError(t, err)
	assert.Equal(t, "-3.00", over.NetAmount.StringFixed(2))

	err = Aggregate([]models.OrderLineItem{over}).Check()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]any{"field": "discount"}, typed.Details())

	// another line absorbs the overshoot
	other, err := BuildLine(1, LineInput{OrderQty: 2, UnitPrice: dec("4")})
	require.NoError(t, err)
	assert.NoError(t, Aggregate([]models.OrderLineItem{over, other}).Check())
}
