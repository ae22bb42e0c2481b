package items

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/internal/repo"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
	"github.com/mohdashiqtp/procurement-app/pkg/pagination"
)

// Filter narrows List. Zero values are ignored.
type Filter struct {
	Name       string
	Category   string
	Status     enums.ItemStatus
	SupplierID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

// Repository persists catalog items.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Create(item).Error
}

func (r *Repository) Save(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Save(item).Error
}

// Delete reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.Item{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.DB(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDs returns the items that exist, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error) {
	out := make(map[uuid.UUID]*models.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Item
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// LastItemNo returns the highest issued item number, "" when none.
func (r *Repository) LastItemNo(ctx context.Context) (string, error) {
	return r.LastValue(ctx, &models.Item{}, "item_no")
}

func (r *Repository) List(ctx context.Context, filter Filter, page pagination.Params) ([]models.Item, int64, error) {
	query := r.DB(ctx).Model(&models.Item{})
	if filter.Name != "" {
		query = query.Where("LOWER(item_name) LIKE LOWER(?)", "%"+filter.Name+"%")
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.MinPrice != nil {
		query = query.Where("unit_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("unit_price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if order := page.OrderBy(); order != "" {
		query = query.Order(order)
	}
	var rows []models.Item
	if err := query.Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
