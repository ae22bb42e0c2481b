package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/mohdashiqtp/procurement-app/api/responses"
	"github.com/mohdashiqtp/procurement-app/api/validators"
	"github.com/mohdashiqtp/procurement-app/internal/items"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
	"github.com/mohdashiqtp/procurement-app/pkg/logger"
)

const defaultItemLimit = 10

type bulkRequest struct {
	Operations []bulkOperationRequest `json:"operations" validate:"required,min=1,max=100,dive"`
}

type bulkOperationRequest struct {
	Type string          `json:"type" validate:"required"`
	ID   *uuid.UUID      `json:"id"`
	Data json.RawMessage `json:"data"`
}

func itemServiceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
}

func ItemList(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		params, err := parseItemListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseItemListParams(r *http.Request) (items.ListParams, error) {
	p, err := parsePaging(r, defaultItemLimit)
	if err != nil {
		return items.ListParams{}, err
	}
	minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
	if err != nil {
		return items.ListParams{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
	if err != nil {
		return items.ListParams{}, err
	}
	supplierID, err := validators.ParseQueryUUID(r, "supplierId")
	if err != nil {
		return items.ListParams{}, err
	}
	q := r.URL.Query()
	return items.ListParams{
		Page:       p.page,
		Limit:      p.limit,
		Sort:       p.sort,
		Name:       validators.SanitizeString(q.Get("name"), 200),
		Category:   validators.SanitizeString(q.Get("category"), 100),
		Status:     validators.SanitizeString(q.Get("status"), 20),
		SupplierID: supplierID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	}, nil
}

func ItemGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		var body items.CreateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body items.UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		id, err := pathID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "item deleted"})
	}
}

// ItemBulk applies a batch of create/update/delete operations atomically.
func ItemBulk(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			itemServiceUnavailable(w, r, logg)
			return
		}
		var body bulkRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ops, err := decodeBulkOperations(body.Operations)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		results, err := svc.Bulk(r.Context(), ops)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"results": results})
	}
}

// decodeBulkOperations turns each raw data document into its typed request.
// Unknown types pass through so the service rejects them inside the batch.
func decodeBulkOperations(raw []bulkOperationRequest) ([]items.BulkOperation, error) {
	ops := make([]items.BulkOperation, 0, len(raw))
	for i, entry := range raw {
		op := items.BulkOperation{Type: items.BulkOpType(entry.Type)}
		if entry.ID != nil {
			op.ID = *entry.ID
		}

		switch op.Type {
		case items.BulkCreate:
			var req items.CreateItemRequest
			if err := validators.DecodeJSONRaw(entry.Data, "data", &req); err != nil {
				return nil, withOperation(err, i)
			}
			op.Create = &req
		case items.BulkUpdate:
			if entry.ID == nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "update operation requires id").
					WithDetails(map[string]any{"operation": i})
			}
			var req items.UpdateItemRequest
			if err := validators.DecodeJSONRaw(entry.Data, "data", &req); err != nil {
				return nil, withOperation(err, i)
			}
			op.Update = &req
		case items.BulkDelete:
			if entry.ID == nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "delete operation requires id").
					WithDetails(map[string]any{"operation": i})
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func withOperation(err error, index int) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, typed.Message()).
		WithDetails(map[string]any{"operation": index, "errors": typed.Details()})
}
