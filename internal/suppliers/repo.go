package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/internal/repo"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
	"github.com/mohdashiqtp/procurement-app/pkg/pagination"
)

// Filter narrows List. Zero values are ignored.
type Filter struct {
	Country enums.Country
	Status  enums.SupplierStatus
	Name    string
}

// Repository persists suppliers.
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

func (r *Repository) Create(ctx context.Context, supplier *models.Supplier) error {
	return r.DB(ctx).Create(supplier).Error
}

// Save writes every column of an already loaded supplier.
func (r *Repository) Save(ctx context.Context, supplier *models.Supplier) error {
	return r.DB(ctx).Save(supplier).Error
}

// Delete reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Delete(&models.Supplier{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.DB(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// FindByIDs returns the suppliers that exist, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Supplier, error) {
	out := make(map[uuid.UUID]*models.Supplier, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Supplier
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// LastSupplierNo returns the highest issued supplier number, "" when none.
func (r *Repository) LastSupplierNo(ctx context.Context) (string, error) {
	return r.LastValue(ctx, &models.Supplier{}, "supplier_no")
}

func (r *Repository) List(ctx context.Context, filter Filter, page pagination.Params) ([]models.Supplier, int64, error) {
	query := r.DB(ctx).Model(&models.Supplier{})
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Name != "" {
		query = query.Where("LOWER(supplier_name) LIKE LOWER(?)", "%"+filter.Name+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Supplier
	if order := page.OrderBy(); order != "" {
		query = query.Order(order)
	}
	if err := query.Offset(page.Offset()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) ListByCountry(ctx context.Context, country enums.Country) ([]models.Supplier, error) {
	var rows []models.Supplier
	err := r.DB(ctx).
		Where("country = ?", country).
		Order("supplier_name ASC").
		Find(&rows).Error
	return rows, err
}
