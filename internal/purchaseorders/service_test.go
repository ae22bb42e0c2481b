package purchaseorders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/internal/items"
	"github.com/mohdashiqtp/procurement-app/internal/suppliers"
	"github.com/mohdashiqtp/procurement-app/pkg/db/dbtest"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
	"github.com/mohdashiqtp/procurement-app/pkg/metrics"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      Service
	conn     *gorm.DB
	registry *prometheus.Registry
	supplier *models.Supplier
	bolt     *models.Item
	nut      *models.Item
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.OpenMigrated(t)

	supplier := &models.Supplier{
		SupplierNo:   "SUP-000001",
		SupplierName: "Acme",
		Address:      "1 Market St",
		TaxNo:        "TX-1",
		Country:      enums.CountryCanada,
		MobileNo:     "+1 555 0100",
		Email:        "sales@acme.com",
		Status:       enums.SupplierStatusActive,
	}
	require.NoError(t, conn.Create(supplier).Error)

	newItem := func(no, name, price string) *models.Item {
		item := &models.Item{
			ItemNo:     no,
			ItemName:   name,
			SupplierID: supplier.ID,
			StockUnit:  enums.StockUnitBox,
			UnitPrice:  decimal.RequireFromString(price),
			Status:     enums.ItemStatusEnabled,
		}
		require.NoError(t, conn.Create(item).Error)
		return item
	}

	registry := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Orders:    NewRepository(conn),
		Suppliers: suppliers.NewRepository(conn),
		Items:     items.NewRepository(conn),
		Metrics:   metrics.NewOrderMetrics(registry),
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	return fixture{
		svc:      svc,
		conn:     conn,
		registry: registry,
		supplier: supplier,
		bolt:     newItem("ITEM000001", "Bolt", "10"),
		nut:      newItem("ITEM000002", "Nut", "7.25"),
	}
}

func ptr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func (f fixture) scenario() CreateOrderRequest {
	clientNo := "PO-DRAFT-1"
	return CreateOrderRequest{
		OrderNo:    &clientNo,
		SupplierID: f.supplier.ID,
		Items: []LineRequest{
			{ItemID: f.bolt.ID, OrderQty: 3, Discount: ptr("2")},
			{ItemID: f.nut.ID, OrderQty: 4, UnitPrice: ptr("5")},
		},
		NetAmount: ptr("999"),
	}
}

func countOrders(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.PurchaseOrder{}).Count(&n).Error)
	return n
}

func TestCreateComputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)

	assert.Equal(t, "PO000001", order.OrderNo)
	assert.Equal(t, fixedNow, order.OrderDate)
	assert.Equal(t, "Acme", order.SupplierName)
	require.NotNil(t, order.Supplier)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "30.00", order.Items[0].ItemAmount.StringFixed(2))
	assert.Equal(t, "BOX", order.Items[0].PackingUnit)
	assert.Equal(t, "20.00", order.Items[1].ItemAmount.StringFixed(2))
	assert.Equal(t, "Nut", order.Items[1].Item.ItemName)
	assert.Equal(t, "50.00", order.ItemTotal.StringFixed(2))
	assert.Equal(t, "2.00", order.Discount.StringFixed(2))
	assert.Equal(t, "48.00", order.NetAmount.StringFixed(2))
	assert.Equal(t, 7, order.TotalItems)

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "48.00", stored.NetAmount.StringFixed(2))
	assert.Equal(t, "5.00", stored.Items[1].UnitPrice.StringFixed(2))

	second, err := f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)
	assert.Equal(t, "PO000002", second.OrderNo)
	assert.Equal(t, 2.0, createdCount(t, f.registry))
}

func TestCreateUnknownReferencesPersistNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.scenario()
	req.SupplierID = uuid.New()
	_, err := f.svc.Create(ctx, req)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	req = f.scenario()
	missing := uuid.New()
	req.Items[1].ItemID = missing
	_, err = f.svc.Create(ctx, req)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Contains(t, pkgerrors.As(err).Message(), missing.String())

	req = f.scenario()
	req.Items[0].OrderQty = 0
	_, err = f.svc.Create(ctx, req)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	assert.Zero(t, countOrders(t, f.conn))
}

func TestDiscountAboveItemTotalIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateOrderRequest{
		SupplierID: f.supplier.ID,
		Items:      []LineRequest{{ItemID: f.bolt.ID, OrderQty: 1, Discount: ptr("100")}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, map[string]any{"field": "discount"}, pkgerrors.As(err).Details())
	assert.Zero(t, countOrders(t, f.conn))
	assert.Zero(t, createdCount(t, f.registry))

	order, err := f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, order.ID, UpdateOrderRequest{
		Items: []LineRequest{{ItemID: f.nut.ID, OrderQty: 1, Discount: ptr("7.26")}},
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "48.00", stored.NetAmount.StringFixed(2))
	assert.Len(t, stored.Items, 2)
}

func TestSnapshotSurvivesCatalogPriceChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&models.Item{}).Where("id = ?", f.bolt.ID).Update("unit_price", "99").Error)

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", stored.Items[0].UnitPrice.StringFixed(2))
}

func TestUpdateRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)

	other := &models.Supplier{
		SupplierNo:   "SUP-000002",
		SupplierName: "Globex",
		Address:      "2 Main St",
		TaxNo:        "TX-2",
		Country:      enums.CountryJapan,
		MobileNo:     "+81 3 0000 0000",
		Email:        "info@globex.com",
		Status:       enums.SupplierStatusActive,
	}
	require.NoError(t, f.conn.Create(other).Error)

	approved := "approved"
	renumbered := "PO999999"
	updated, err := f.svc.Update(ctx, order.ID, UpdateOrderRequest{
		OrderNo:    &renumbered,
		SupplierID: &other.ID,
		Status:     &approved,
		Items:      []LineRequest{{ItemID: f.nut.ID, OrderQty: 2, Discount: ptr("0.50")}},
		ItemTotal:  ptr("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", updated.SupplierName)
	assert.Equal(t, "14.50", updated.ItemTotal.StringFixed(2))
	assert.Equal(t, "14.00", updated.NetAmount.StringFixed(2))
	assert.Equal(t, 2, updated.TotalItems)
	assert.Equal(t, order.OrderNo, updated.OrderNo)

	bad := "shipped"
	_, err = f.svc.Update(ctx, order.ID, UpdateOrderRequest{Status: &bad})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Update(ctx, order.ID, UpdateOrderRequest{Items: []LineRequest{{ItemID: uuid.New(), OrderQty: 1}}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "14.00", stored.NetAmount.StringFixed(2))

	_, err = f.svc.Update(ctx, uuid.New(), UpdateOrderRequest{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteUnknownOrderHasNoSideEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)

	err = f.svc.Delete(ctx, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, int64(1), countOrders(t, f.conn))

	require.NoError(t, f.svc.Delete(ctx, order.ID))
	assert.Zero(t, countOrders(t, f.conn))
	_, err = f.svc.Get(ctx, order.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListAndTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.TotalAmount.IsZero())

	_, err = f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateOrderRequest{
		SupplierID: f.supplier.ID,
		Items:      []LineRequest{{ItemID: f.bolt.ID, OrderQty: 1}},
	})
	require.NoError(t, err)

	totals, err := f.svc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Count)
	assert.Equal(t, "58.00", totals.TotalAmount.StringFixed(2))

	all, err := f.svc.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none := uuid.New()
	filtered, err := f.svc.List(ctx, ListParams{SupplierID: &none})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	mine, err := f.svc.List(ctx, ListParams{SupplierID: &f.supplier.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Acme", mine[0].Supplier.SupplierName)
}

func TestDeletedSupplierShowsNullSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.Create(ctx, f.scenario())
	require.NoError(t, err)

	require.NoError(t, f.conn.Delete(&models.Supplier{}, "id = ?", f.supplier.ID).Error)

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Supplier)
	assert.Equal(t, "Acme", stored.SupplierName)
}

func createdCount(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	if len(families) == 0 {
		return 0
	}
	require.Len(t, families, 1)
	assert.Equal(t, "purchase_order_writes_total", families[0].GetName())
	for _, m := range families[0].GetMetric() {
		for _, label := range m.GetLabel() {
			if label.GetName() == "operation" && label.GetValue() == "create" {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
