package purchaseorders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/internal/repo"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, order *models.PurchaseOrder) error {
	return r.DB(ctx).Create(order).Error
}

func (r *Repository) Save(ctx context.Context, order *models.PurchaseOrder) error {
	return r.DB(ctx).Save(order).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.PurchaseOrder{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first, optionally for one supplier.
func (r *Repository) List(ctx context.Context, supplierID *uuid.UUID) ([]models.PurchaseOrder, error) {
	query := r.DB(ctx).Model(&models.PurchaseOrder{})
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	var rows []models.PurchaseOrder
	if err := query.Order("created_at DESC").Order("order_no DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) LastOrderNo(ctx context.Context) (string, error) {
	return r.LastValue(ctx, &models.PurchaseOrder{}, "order_no")
}

type totalsRow struct {
	TotalAmount decimal.Decimal
	Count       int64
}

// Totals sums net amounts across every order.
func (r *Repository) Totals(ctx context.Context) (decimal.Decimal, int64, error) {
	var row totalsRow
	err := r.DB(ctx).Model(&models.PurchaseOrder{}).
		Select("COALESCE(SUM(net_amount), 0) AS total_amount, COUNT(*) AS count").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.TotalAmount, row.Count, nil
}
