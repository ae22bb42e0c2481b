package purchaseorders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mohdashiqtp/procurement-app/pkg/db/models"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
	"github.com/mohdashiqtp/procurement-app/pkg/sequence"
)

// Service manages purchase orders. Every write recomputes the order totals
// from its lines before persisting.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, params ListParams) ([]OrderDTO, error)
	Totals(ctx context.Context) (*TotalsDTO, error)
}

type orderRepository interface {
	Create(ctx context.Context, order *models.PurchaseOrder) error
	Save(ctx context.Context, order *models.PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, supplierID *uuid.UUID) ([]models.PurchaseOrder, error)
	LastOrderNo(ctx context.Context) (string, error)
	Totals(ctx context.Context) (decimal.Decimal, int64, error)
}

type supplierLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Supplier, error)
}

type itemLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Item, error)
}

type writeCounter interface {
	Inc(operation string)
}

type ServiceParams struct {
	Orders    orderRepository
	Suppliers supplierLookup
	Items     itemLookup
	Metrics   writeCounter
	Now       func() time.Time
}

type service struct {
	orders    orderRepository
	suppliers supplierLookup
	items     itemLookup
	metrics   writeCounter
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Suppliers == nil {
		return nil, fmt.Errorf("supplier lookup required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("item lookup required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	counter := params.Metrics
	if counter == nil {
		counter = noopCounter{}
	}
	return &service{
		orders:    params.Orders,
		suppliers: params.Suppliers,
		items:     params.Items,
		metrics:   counter,
		now:       now,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error) {
	supplier, err := s.resolveSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	lines, itemsByID, err := s.buildLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	totals := Aggregate(lines)
	if err := totals.Check(); err != nil {
		return nil, err
	}

	last, err := s.orders.LastOrderNo(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load last order number")
	}
	number, err := sequence.OrderNumber.Next(last)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "next order number")
	}

	orderDate := s.now().UTC()
	if req.OrderDate != nil && !req.OrderDate.IsZero() {
		orderDate = req.OrderDate.UTC()
	}

	order := &models.PurchaseOrder{
		OrderNo:      number,
		OrderDate:    orderDate,
		SupplierID:   supplier.ID,
		SupplierName: supplier.SupplierName,
		Items:        lines,
		ItemTotal:    totals.ItemTotal,
		Discount:     totals.Discount,
		NetAmount:    totals.NetAmount,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create purchase order")
	}
	s.metrics.Inc("create")

	dto := toDTO(order, supplier, itemsByID)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not a valid status", *req.Status).
			WithDetails(map[string]any{"field": "status"})
	}

	if req.OrderDate != nil && !req.OrderDate.IsZero() {
		order.OrderDate = req.OrderDate.UTC()
	}
	if req.SupplierID != nil {
		supplier, err := s.resolveSupplier(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		order.SupplierID = supplier.ID
		order.SupplierName = supplier.SupplierName
	}
	if req.Items != nil {
		lines, _, err := s.buildLines(ctx, req.Items)
		if err != nil {
			return nil, err
		}
		order.Items = lines
	}

	totals := Aggregate(order.Items)
	if err := totals.Check(); err != nil {
		return nil, err
	}
	order.ItemTotal = totals.ItemTotal
	order.Discount = totals.Discount
	order.NetAmount = totals.NetAmount

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update purchase order")
	}
	s.metrics.Inc("update")
	return s.present(ctx, order)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.orders.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete purchase order")
	}
	if !deleted {
		return notFound(id)
	}
	s.metrics.Inc("delete")
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, order)
}

func (s *service) List(ctx context.Context, params ListParams) ([]OrderDTO, error) {
	rows, err := s.orders.List(ctx, params.SupplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list purchase orders")
	}

	supplierIDs := make([]uuid.UUID, 0, len(rows))
	var itemIDs []uuid.UUID
	for _, row := range rows {
		supplierIDs = append(supplierIDs, row.SupplierID)
		for _, line := range row.Items {
			itemIDs = append(itemIDs, line.ItemID)
		}
	}
	suppliersByID, err := s.suppliers.FindByIDs(ctx, uniqueIDs(supplierIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load suppliers")
	}
	itemsByID, err := s.items.FindByIDs(ctx, uniqueIDs(itemIDs))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
	}

	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i], suppliersByID[rows[i].SupplierID], itemsByID))
	}
	return out, nil
}

func (s *service) Totals(ctx context.Context) (*TotalsDTO, error) {
	total, count, err := s.orders.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum purchase orders")
	}
	return &TotalsDTO{TotalAmount: total.Round(moneyPlaces), Count: count}, nil
}

// buildLines resolves every referenced item and snapshots its line. The
// first missing item aborts the whole request.
func (s *service) buildLines(ctx context.Context, reqs []LineRequest) ([]models.OrderLineItem, map[uuid.UUID]*models.Item, error) {
	if len(reqs) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item").
			WithDetails(map[string]any{"field": "items"})
	}

	ids := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ItemID)
	}
	itemsByID, err := s.items.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
	}

	lines := make([]models.OrderLineItem, 0, len(reqs))
	for i, req := range reqs {
		item, ok := itemsByID[req.ItemID]
		if !ok {
			return nil, nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "no item found with id %s", req.ItemID)
		}
		in := LineInput{
			ItemID:      item.ID,
			PackingUnit: req.PackingUnit,
			OrderQty:    req.OrderQty,
			UnitPrice:   item.UnitPrice,
			Discount:    decimal.Zero,
		}
		if in.PackingUnit == "" {
			in.PackingUnit = item.StockUnit.String()
		}
		if req.UnitPrice != nil {
			in.UnitPrice = *req.UnitPrice
		}
		if req.Discount != nil {
			in.Discount = *req.Discount
		}
		line, err := BuildLine(i, in)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, line)
	}
	return lines, itemsByID, nil
}

func (s *service) resolveSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "no supplier found with id %s", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
	}
	return supplier, nil
}

// present resolves display references. Records deleted since the order was
// written show up as null summaries.
func (s *service) present(ctx context.Context, order *models.PurchaseOrder) (*OrderDTO, error) {
	supplier, err := s.suppliers.FindByID(ctx, order.SupplierID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
	}
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, line := range order.Items {
		ids = append(ids, line.ItemID)
	}
	itemsByID, err := s.items.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load items")
	}
	dto := toDTO(order, supplier, itemsByID)
	return &dto, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load purchase order")
	}
	return order, nil
}

func notFound(id uuid.UUID) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "no purchase order found with id %s", id)
}

func validStatus(status string) bool {
	switch status {
	case "pending", "approved", "rejected":
		return true
	}
	return false
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type noopCounter struct{}

func (noopCounter) Inc(string) {}
