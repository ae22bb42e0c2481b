package items

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/internal/suppliers"
	"github.com/mohdashiqtp/procurement-app/pkg/db"
	"github.com/mohdashiqtp/procurement-app/pkg/db/dbtest"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
)

type fakeImages struct {
	next    []string
	removed []string
}

func (f *fakeImages) SaveImages(_ context.Context, _ []*multipart.FileHeader) ([]string, error) {
	names := f.next
	f.next = nil
	return names, nil
}

func (f *fakeImages) Remove(_ context.Context, names ...string) error {
	f.removed = append(f.removed, names...)
	return nil
}

func (f *fakeImages) URL(name string) string { return "/uploads/" + name }

type fixture struct {
	svc      Service
	conn     *gorm.DB
	images   *fakeImages
	supplier *models.Supplier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.OpenMigrated(t)
	supplier := &models.Supplier{
		SupplierNo:   "SUP-000001",
		SupplierName: "Acme",
		Address:      "1 Market St",
		TaxNo:        "TX-1",
		Country:      enums.CountryUnitedStates,
		MobileNo:     "+1 555 0100",
		Email:        "sales@acme.com",
		Status:       enums.SupplierStatusActive,
	}
	require.NoError(t, conn.Create(supplier).Error)

	images := &fakeImages{}
	svc, err := NewService(ServiceParams{
		Repo:         NewRepository(conn),
		SupplierRepo: suppliers.NewRepository(conn),
		TxRunner:     db.Wrap(conn),
		Images:       images,
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, images: images, supplier: supplier}
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func (f fixture) createReq(name, unitPrice string) CreateItemRequest {
	return CreateItemRequest{
		ItemName:   name,
		Category:   "Hardware",
		SupplierID: f.supplier.ID,
		StockUnit:  "pcs",
		UnitPrice:  price(unitPrice),
	}
}

func TestCreateAssignsNumberAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.createReq("Bolt", "1.255"))
	require.NoError(t, err)
	assert.Equal(t, "ITEM000001", first.ItemNo)
	assert.Equal(t, enums.StockUnitPieces, first.StockUnit)
	assert.Equal(t, enums.ItemStatusEnabled, first.Status)
	assert.Equal(t, "1.26", first.UnitPrice.StringFixed(2))
	require.NotNil(t, first.Supplier)
	assert.Equal(t, "SUP-000001", first.Supplier.SupplierNo)
	assert.Empty(t, first.ItemImages)

	second, err := f.svc.Create(ctx, f.createReq("Nut", "0.50"))
	require.NoError(t, err)
	assert.Equal(t, "ITEM000002", second.ItemNo)
}

func TestCreateRejectsUnknownSupplierAndBadPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.createReq("Bolt", "1")
	req.SupplierID = uuid.New()
	_, err := f.svc.Create(ctx, req)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Create(ctx, f.createReq("Bolt", "-1"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	var count int64
	require.NoError(t, f.conn.Model(&models.Item{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateKeepsItemNoImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.createReq("Bolt", "1"))
	require.NoError(t, err)

	changed := "ITEM999999"
	_, err = f.svc.Update(ctx, created.ID, UpdateItemRequest{ItemNo: &changed})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	same := created.ItemNo
	name := "Hex Bolt"
	disabled := "Disabled"
	updated, err := f.svc.Update(ctx, created.ID, UpdateItemRequest{ItemNo: &same, ItemName: &name, Status: &disabled, UnitPrice: price("2.5")})
	require.NoError(t, err)
	assert.Equal(t, "Hex Bolt", updated.ItemName)
	assert.Equal(t, enums.ItemStatusDisabled, updated.Status)
	assert.Equal(t, "2.50", updated.UnitPrice.StringFixed(2))
	assert.Equal(t, "Hardware", updated.Category)

	_, err = f.svc.Update(ctx, uuid.New(), UpdateItemRequest{ItemName: &name})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersByNameAndPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, tc := range []struct{ name, price string }{{"Steel Bolt", "1"}, {"Brass Bolt", "5"}, {"Washer", "0.10"}} {
		_, err := f.svc.Create(ctx, f.createReq(tc.name, tc.price))
		require.NoError(t, err)
	}

	res, err := f.svc.List(ctx, ListParams{Name: "bolt", Sort: "unitPrice"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Steel Bolt", res.Items[0].ItemName)
	assert.Equal(t, int64(2), res.TotalItems)
	require.NotNil(t, res.Items[0].Supplier)

	res, err = f.svc.List(ctx, ListParams{MinPrice: price("0.5"), MaxPrice: price("2")})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Steel Bolt", res.Items[0].ItemName)

	res, err = f.svc.List(ctx, ListParams{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.TotalPages)

	_, err = f.svc.List(ctx, ListParams{Sort: "password"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestBulkRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.svc.Create(ctx, f.createReq("Bolt", "1"))
	require.NoError(t, err)

	create := f.createReq("Nut", "2")
	_, err = f.svc.Bulk(ctx, []BulkOperation{
		{Type: BulkCreate, Create: &create},
		{Type: BulkDelete, ID: existing.ID},
		{Type: BulkDelete, ID: uuid.New()},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, 2, pkgerrors.As(err).Details().(map[string]any)["operation"])

	var count int64
	require.NoError(t, f.conn.Model(&models.Item{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = f.svc.Bulk(ctx, []BulkOperation{{Type: "archive", ID: existing.ID}})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestBulkAppliesAllOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing, err := f.svc.Create(ctx, f.createReq("Bolt", "1"))
	require.NoError(t, err)
	doomed, err := f.svc.Create(ctx, f.createReq("Rivet", "1"))
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.Item{}).Where("id = ?", doomed.ID).
		Update("item_images", "{a.png}").Error)

	create := f.createReq("Nut", "2")
	brand := "Bosch"
	results, err := f.svc.Bulk(ctx, []BulkOperation{
		{Type: BulkCreate, Create: &create},
		{Type: BulkUpdate, ID: existing.ID, Update: &UpdateItemRequest{Brand: &brand}},
		{Type: BulkDelete, ID: doomed.ID},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "ITEM000003", results[0].Item.ItemNo)
	assert.Equal(t, "Bosch", results[1].Item.Brand)
	assert.Nil(t, results[2].Item)
	assert.Equal(t, []string{"a.png"}, f.images.removed)
}

func TestImagesAddAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item, err := f.svc.Create(ctx, f.createReq("Bolt", "1"))
	require.NoError(t, err)

	f.images.next = []string{"one.png", "two.png"}
	withImages, err := f.svc.AddImages(ctx, item.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/one.png", "/uploads/two.png"}, withImages.ItemImages)

	after, err := f.svc.RemoveImage(ctx, item.ID, "one.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/two.png"}, after.ItemImages)
	assert.Equal(t, []string{"one.png"}, f.images.removed)

	_, err = f.svc.RemoveImage(ctx, item.ID, "missing.png")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, f.svc.Delete(ctx, item.ID))
	assert.Equal(t, []string{"one.png", "two.png"}, f.images.removed)
	assert.True(t, pkgerrors.HasCode(f.svc.Delete(ctx, item.ID), pkgerrors.CodeNotFound))
}
