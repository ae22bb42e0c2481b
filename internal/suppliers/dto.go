package suppliers

import (
	"time"

	"github.com/google/uuid"

	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	"github.com/mohdashiqtp/procurement-app/pkg/enums"
)

// SupplierDTO is the API view of a supplier.
type SupplierDTO struct {
	ID           uuid.UUID            `json:"id"`
	SupplierNo   string               `json:"supplierNo"`
	SupplierName string               `json:"supplierName"`
	Address      string               `json:"address"`
	FullAddress  string               `json:"fullAddress"`
	TaxNo        string               `json:"taxNo"`
	Country      enums.Country        `json:"country"`
	MobileNo     string               `json:"mobileNo"`
	Email        string               `json:"email"`
	Status       enums.SupplierStatus `json:"status"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// Summary is the slice of a supplier embedded in item and order responses.
type Summary struct {
	ID           uuid.UUID `json:"id"`
	SupplierNo   string    `json:"supplierNo"`
	SupplierName string    `json:"supplierName"`
}

type CreateSupplierRequest struct {
	SupplierName string `json:"supplierName" validate:"required,min=2,max=100"`
	Address      string `json:"address" validate:"required"`
	TaxNo        string `json:"taxNo" validate:"required"`
	Country      string `json:"country" validate:"required,country"`
	MobileNo     string `json:"mobileNo" validate:"required,mobile"`
	Email        string `json:"email" validate:"required,email"`
	Status       string `json:"status" validate:"omitempty,oneof=Active Inactive Blocked"`
}

// UpdateSupplierRequest is a partial update; nil fields are left alone.
// supplierNo is assigned once and cannot be changed.
type UpdateSupplierRequest struct {
	SupplierName *string `json:"supplierName" validate:"omitempty,min=2,max=100"`
	Address      *string `json:"address" validate:"omitempty,min=1"`
	TaxNo        *string `json:"taxNo" validate:"omitempty,min=1"`
	Country      *string `json:"country" validate:"omitempty,country"`
	MobileNo     *string `json:"mobileNo" validate:"omitempty,mobile"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Status       *string `json:"status" validate:"omitempty,oneof=Active Inactive Blocked"`
}

// ListParams holds the raw query values of the list endpoint.
type ListParams struct {
	Page    int
	Limit   int
	Sort    string
	Country string
	Status  string
	Name    string
}

type ListResult struct {
	Suppliers   []SupplierDTO `json:"suppliers"`
	Results     int           `json:"results"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	TotalItems  int64         `json:"totalItems"`
}

func FromModel(s *models.Supplier) SupplierDTO {
	return SupplierDTO{
		ID:           s.ID,
		SupplierNo:   s.SupplierNo,
		SupplierName: s.SupplierName,
		Address:      s.Address,
		FullAddress:  s.Address + ", " + string(s.Country),
		TaxNo:        s.TaxNo,
		Country:      s.Country,
		MobileNo:     s.MobileNo,
		Email:        s.Email,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func SummaryFromModel(s *models.Supplier) *Summary {
	if s == nil {
		return nil
	}
	return &Summary{ID: s.ID, SupplierNo: s.SupplierNo, SupplierName: s.SupplierName}
}

func fromModels(rows []models.Supplier) []SupplierDTO {
	out := make([]SupplierDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
