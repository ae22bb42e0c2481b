package items

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/internal/suppliers"
	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
	"github.com/mohdashiqtp/procurement-app/pkg/logger"
	"github.com/mohdashiqtp/procurement-app/pkg/pagination"
	"github.com/mohdashiqtp/procurement-app/pkg/sequence"
)

const (
	defaultListLimit = 10
	defaultSort      = "-createdAt"
)

var sortableFields = map[string]string{
	"itemNo":    "item_no",
	"itemName":  "item_name",
	"category":  "category",
	"unitPrice": "unit_price",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// Service manages the item catalog and its images.
type Service interface {
	Create(ctx context.Context, req CreateItemRequest) (*ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Bulk(ctx context.Context, ops []BulkOperation) ([]BulkResult, error)
	AddImages(ctx context.Context, id uuid.UUID, files []*multipart.FileHeader) (*ItemDTO, error)
	RemoveImage(ctx context.Context, id uuid.UUID, name string) (*ItemDTO, error)
}

// ImageStore keeps uploaded item images.
type ImageStore interface {
	SaveImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
	Remove(ctx context.Context, names ...string) error
	URL(name string) string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo         *Repository
	SupplierRepo *suppliers.Repository
	TxRunner     txRunner
	Images       ImageStore
	Logger       *logger.Logger
}

type service struct {
	repo      *Repository
	suppliers *suppliers.Repository
	tx        txRunner
	images    ImageStore
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if params.SupplierRepo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image store required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:      params.Repo,
		suppliers: params.SupplierRepo,
		tx:        params.TxRunner,
		images:    params.Images,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateItemRequest) (*ItemDTO, error) {
	item, supplier, err := s.create(ctx, s.repo, s.suppliers, req)
	if err != nil {
		return nil, err
	}
	dto := toDTO(item, suppliers.SummaryFromModel(supplier), s.images.URL)
	return &dto, nil
}

func (s *service) create(ctx context.Context, repo *Repository, supplierRepo *suppliers.Repository, req CreateItemRequest) (*models.Item, *models.Supplier, error) {
	supplier, err := findSupplier(ctx, supplierRepo, req.SupplierID)
	if err != nil {
		return nil, nil, err
	}
	unit, err := parseStockUnit(req.StockUnit)
	if err != nil {
		return nil, nil, err
	}
	if req.UnitPrice == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unitPrice is required").
			WithDetails(map[string]any{"field": "unitPrice"})
	}
	price, err := validatePrice(*req.UnitPrice)
	if err != nil {
		return nil, nil, err
	}
	status := enums.ItemStatusEnabled
	if strings.TrimSpace(req.Status) != "" {
		if status, err = parseStatus(req.Status); err != nil {
			return nil, nil, err
		}
	}
	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "itemName is required").
			WithDetails(map[string]any{"field": "itemName"})
	}

	last, err := repo.LastItemNo(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load last item number")
	}
	number, err := sequence.ItemNumber.Next(last)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next item number")
	}

	item := &models.Item{
		ItemNo:            number,
		ItemName:          name,
		InventoryLocation: strings.TrimSpace(req.InventoryLocation),
		Brand:             strings.TrimSpace(req.Brand),
		Category:          strings.TrimSpace(req.Category),
		SupplierID:        supplier.ID,
		StockUnit:         unit,
		UnitPrice:         price,
		Status:            status,
	}
	if err := repo.Create(ctx, item); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}
	return item, supplier, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	item, supplier, err := s.update(ctx, s.repo, s.suppliers, id, req)
	if err != nil {
		return nil, err
	}
	dto := toDTO(item, suppliers.SummaryFromModel(supplier), s.images.URL)
	return &dto, nil
}

func (s *service) update(ctx context.Context, repo *Repository, supplierRepo *suppliers.Repository, id uuid.UUID, req UpdateItemRequest) (*models.Item, *models.Supplier, error) {
	item, err := load(ctx, repo, id)
	if err != nil {
		return nil, nil, err
	}

	if req.ItemNo != nil && strings.TrimSpace(*req.ItemNo) != item.ItemNo {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "itemNo cannot be changed").
			WithDetails(map[string]any{"field": "itemNo"})
	}
	if req.ItemName != nil {
		name := strings.TrimSpace(*req.ItemName)
		if name == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "itemName cannot be empty").
				WithDetails(map[string]any{"field": "itemName"})
		}
		item.ItemName = name
	}
	if req.InventoryLocation != nil {
		item.InventoryLocation = strings.TrimSpace(*req.InventoryLocation)
	}
	if req.Brand != nil {
		item.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.StockUnit != nil {
		if item.StockUnit, err = parseStockUnit(*req.StockUnit); err != nil {
			return nil, nil, err
		}
	}
	if req.UnitPrice != nil {
		if item.UnitPrice, err = validatePrice(*req.UnitPrice); err != nil {
			return nil, nil, err
		}
	}
	if req.Status != nil {
		if item.Status, err = parseStatus(*req.Status); err != nil {
			return nil, nil, err
		}
	}

	var supplier *models.Supplier
	if req.SupplierID != nil && *req.SupplierID != item.SupplierID {
		if supplier, err = findSupplier(ctx, supplierRepo, *req.SupplierID); err != nil {
			return nil, nil, err
		}
		item.SupplierID = supplier.ID
	} else if supplier, err = supplierRepo.FindByID(ctx, item.SupplierID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
		}
		supplier = nil
	}

	if err := repo.Save(ctx, item); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item")
	}
	return item, supplier, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.delete(ctx, s.repo, id)
	if err != nil {
		return err
	}
	s.removeImages(ctx, item.ItemImages...)
	return nil
}

func (s *service) delete(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Item, error) {
	item, err := load(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	if !deleted {
		return nil, notFound(id)
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	supplier, err := s.suppliers.FindByID(ctx, item.SupplierID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
	}
	dto := toDTO(item, suppliers.SummaryFromModel(supplier), s.images.URL)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sort, err := pagination.ParseSort(params.Sort, sortableFields, defaultSort)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	page := pagination.New(params.Page, params.Limit, defaultListLimit, sort)

	filter := Filter{
		Name:       strings.TrimSpace(params.Name),
		Category:   strings.TrimSpace(params.Category),
		SupplierID: params.SupplierID,
		MinPrice:   params.MinPrice,
		MaxPrice:   params.MaxPrice,
	}
	if strings.TrimSpace(params.Status) != "" {
		if filter.Status, err = parseStatus(params.Status); err != nil {
			return nil, err
		}
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice").
			WithDetails(map[string]any{"field": "minPrice"})
	}

	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}

	supplierIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		supplierIDs = append(supplierIDs, row.SupplierID)
	}
	byID, err := s.suppliers.FindByIDs(ctx, supplierIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load suppliers")
	}

	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i], suppliers.SummaryFromModel(byID[rows[i].SupplierID]), s.images.URL))
	}
	return &ListResult{
		Items:       out,
		CurrentPage: page.Page,
		TotalPages:  pagination.TotalPages(total, page.Limit),
		TotalItems:  total,
	}, nil
}

// Bulk applies every operation in one transaction. The first failure rolls
// back the whole batch and is returned with the operation index attached.
func (s *service) Bulk(ctx context.Context, ops []BulkOperation) ([]BulkResult, error) {
	if len(ops) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operations must not be empty")
	}

	results := make([]BulkResult, 0, len(ops))
	var orphaned []string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		supplierRepo := s.suppliers.WithTx(tx)

		for i, op := range ops {
			result, images, err := s.applyOne(ctx, repo, supplierRepo, op)
			if err != nil {
				return withIndex(err, i)
			}
			orphaned = append(orphaned, images...)
			results = append(results, result)
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bulk item operations")
	}

	s.removeImages(ctx, orphaned...)
	return results, nil
}

func (s *service) applyOne(ctx context.Context, repo *Repository, supplierRepo *suppliers.Repository, op BulkOperation) (BulkResult, []string, error) {
	switch op.Type {
	case BulkCreate:
		if op.Create == nil {
			return BulkResult{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "create operation requires data")
		}
		item, supplier, err := s.create(ctx, repo, supplierRepo, *op.Create)
		if err != nil {
			return BulkResult{}, nil, err
		}
		dto := toDTO(item, suppliers.SummaryFromModel(supplier), s.images.URL)
		return BulkResult{Type: op.Type, ID: item.ID, Item: &dto}, nil, nil
	case BulkUpdate:
		if op.Update == nil {
			return BulkResult{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "update operation requires data")
		}
		item, supplier, err := s.update(ctx, repo, supplierRepo, op.ID, *op.Update)
		if err != nil {
			return BulkResult{}, nil, err
		}
		dto := toDTO(item, suppliers.SummaryFromModel(supplier), s.images.URL)
		return BulkResult{Type: op.Type, ID: item.ID, Item: &dto}, nil, nil
	case BulkDelete:
		item, err := s.delete(ctx, repo, op.ID)
		if err != nil {
			return BulkResult{}, nil, err
		}
		return BulkResult{Type: op.Type, ID: item.ID}, item.ItemImages, nil
	default:
		return BulkResult{}, nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown operation type %q", op.Type)
	}
}

func (s *service) AddImages(ctx context.Context, id uuid.UUID, files []*multipart.FileHeader) (*ItemDTO, error) {
	item, err := load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	names, err := s.images.SaveImages(ctx, files)
	if err != nil {
		return nil, err
	}

	item.ItemImages = append(item.ItemImages, names...)
	if err := s.repo.Save(ctx, item); err != nil {
		s.removeImages(ctx, names...)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save item images")
	}
	return s.Get(ctx, id)
}

func (s *service) RemoveImage(ctx context.Context, id uuid.UUID, name string) (*ItemDTO, error) {
	item, err := load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}

	kept := make([]string, 0, len(item.ItemImages))
	found := false
	for _, existing := range item.ItemImages {
		if existing == name {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "image %s not found on item", name)
	}

	item.ItemImages = kept
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove item image")
	}
	s.removeImages(ctx, name)
	return s.Get(ctx, id)
}

// removeImages deletes files best effort. The rows no longer point at them.
func (s *service) removeImages(ctx context.Context, names ...string) {
	if len(names) == 0 {
		return
	}
	if err := s.images.Remove(ctx, names...); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"images": names, "error": err.Error()})
		s.logg.Warn(logCtx, "failed to remove item images")
	}
}

func load(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Item, error) {
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item")
	}
	return item, nil
}

func findSupplier(ctx context.Context, repo *suppliers.Repository, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "no supplier found with id %s", id).
				WithDetails(map[string]any{"field": "supplierId"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
	}
	return supplier, nil
}

func notFound(id uuid.UUID) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "no item found with id %s", id)
}

func withIndex(err error, index int) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	details := map[string]any{"operation": index}
	if existing, ok := typed.Details().(map[string]any); ok {
		for k, v := range existing {
			details[k] = v
		}
	}
	return typed.WithDetails(details)
}

func parseStockUnit(raw string) (enums.StockUnit, error) {
	unit, err := enums.ParseStockUnit(raw)
	if err != nil {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not a valid stock unit", strings.TrimSpace(raw)).
			WithDetails(map[string]any{"field": "stockUnit"})
	}
	return unit, nil
}

func parseStatus(raw string) (enums.ItemStatus, error) {
	status, err := enums.ParseItemStatus(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not a valid status", strings.TrimSpace(raw)).
			WithDetails(map[string]any{"field": "status"})
	}
	return status, nil
}

func validatePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unitPrice cannot be negative").
			WithDetails(map[string]any{"field": "unitPrice"})
	}
	return price.Round(2), nil
}
