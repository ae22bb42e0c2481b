package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
	"github.com/mohdashiqtp/procurement-app/pkg/pagination"
	"github.com/mohdashiqtp/procurement-app/pkg/sequence"
)

const (
	defaultListLimit = 100
	defaultSort      = "-createdAt"
)

var sortableFields = map[string]string{
	"supplierNo":   "supplier_no",
	"supplierName": "supplier_name",
	"country":      "country",
	"status":       "status",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

// Service is the supplier catalog.
type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (*SupplierDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListByCountry(ctx context.Context, country string) ([]SupplierDTO, error)
	Activate(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
}

type repository interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	Save(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	LastSupplierNo(ctx context.Context) (string, error)
	List(ctx context.Context, filter Filter, page pagination.Params) ([]models.Supplier, int64, error)
	ListByCountry(ctx context.Context, country enums.Country) ([]models.Supplier, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierDTO, error) {
	country, err := parseCountry(req.Country)
	if err != nil {
		return nil, err
	}
	status := enums.SupplierStatusActive
	if strings.TrimSpace(req.Status) != "" {
		if status, err = parseStatus(req.Status); err != nil {
			return nil, err
		}
	}
	name, err := validateName(req.SupplierName)
	if err != nil {
		return nil, err
	}

	last, err := s.repo.LastSupplierNo(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load last supplier number")
	}
	number, err := sequence.SupplierNumber.Next(last)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next supplier number")
	}

	supplier := &models.Supplier{
		SupplierNo:   number,
		SupplierName: name,
		Address:      strings.TrimSpace(req.Address),
		TaxNo:        strings.TrimSpace(req.TaxNo),
		Country:      country,
		MobileNo:     strings.TrimSpace(req.MobileNo),
		Email:        normalizeEmail(req.Email),
		Status:       status,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create supplier")
	}
	dto := FromModel(supplier)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierDTO, error) {
	supplier, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SupplierName != nil {
		if supplier.SupplierName, err = validateName(*req.SupplierName); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		supplier.Address = strings.TrimSpace(*req.Address)
	}
	if req.TaxNo != nil {
		supplier.TaxNo = strings.TrimSpace(*req.TaxNo)
	}
	if req.Country != nil {
		if supplier.Country, err = parseCountry(*req.Country); err != nil {
			return nil, err
		}
	}
	if req.MobileNo != nil {
		supplier.MobileNo = strings.TrimSpace(*req.MobileNo)
	}
	if req.Email != nil {
		supplier.Email = normalizeEmail(*req.Email)
	}
	if req.Status != nil {
		if supplier.Status, err = parseStatus(*req.Status); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update supplier")
	}
	dto := FromModel(supplier)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete supplier")
	}
	if !deleted {
		return notFound(id)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	supplier, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(supplier)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sort, err := pagination.ParseSort(params.Sort, sortableFields, defaultSort)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	page := pagination.New(params.Page, params.Limit, defaultListLimit, sort)

	var filter Filter
	if strings.TrimSpace(params.Country) != "" {
		if filter.Country, err = parseCountry(params.Country); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(params.Status) != "" {
		if filter.Status, err = parseStatus(params.Status); err != nil {
			return nil, err
		}
	}
	filter.Name = strings.TrimSpace(params.Name)

	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list suppliers")
	}
	return &ListResult{
		Suppliers:   fromModels(rows),
		Results:     len(rows),
		CurrentPage: page.Page,
		TotalPages:  pagination.TotalPages(total, page.Limit),
		TotalItems:  total,
	}, nil
}

func (s *service) ListByCountry(ctx context.Context, country string) ([]SupplierDTO, error) {
	parsed, err := parseCountry(country)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByCountry(ctx, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list suppliers by country")
	}
	return fromModels(rows), nil
}

func (s *service) Activate(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	supplier, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier.Status != enums.SupplierStatusActive {
		supplier.Status = enums.SupplierStatusActive
		if err := s.repo.Save(ctx, supplier); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate supplier")
		}
	}
	dto := FromModel(supplier)
	return &dto, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
	}
	return supplier, nil
}

func notFound(id uuid.UUID) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "no supplier found with id %s", id)
}

func parseCountry(raw string) (enums.Country, error) {
	country, err := enums.ParseCountry(raw)
	if err != nil {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not a supported country", strings.TrimSpace(raw)).
			WithDetails(map[string]any{"field": "country", "allowed": enums.Countries()})
	}
	return country, nil
}

func parseStatus(raw string) (enums.SupplierStatus, error) {
	status, err := enums.ParseSupplierStatus(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not a valid status", strings.TrimSpace(raw)).
			WithDetails(map[string]any{"field": "status"})
	}
	return status, nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "supplier name must be between 2 and 100 characters").
			WithDetails(map[string]any{"field": "supplierName"})
	}
	return name, nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
