package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohdashiqtp/procurement-app/internal/purchaseorders"
	pkgerrors "github.com/mohdashiqtp/procurement-app/pkg/errors"
)

type stubOrderService struct {
	purchaseorders.Service
	created *purchaseorders.CreateOrderRequest
	getErr  error
}

func (s *stubOrderService) Create(ctx context.Context, req purchaseorders.CreateOrderRequest) (*purchaseorders.OrderDTO, error) {
	s.created = &req
	return &purchaseorders.OrderDTO{
		ID:        uuid.New(),
		OrderNo:   "PO000001",
		NetAmount: decimal.RequireFromString("48.00"),
	}, nil
}

func (s *stubOrderService) Get(ctx context.Context, id uuid.UUID) (*purchaseorders.OrderDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &purchaseorders.OrderDTO{ID: id, OrderNo: "PO000001"}, nil
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func withRouteID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPurchaseOrderCreateAnswers200(t *testing.T) {
	svc := &stubOrderService{}
	itemID := uuid.New()
	payload := `{"supplierId":"` + uuid.NewString() + `","items":[{"itemId":"` + itemID.String() + `","orderQty":2,"unitPrice":10,"netAmount":999}],"netAmount":1}`

	resp := httptest.NewRecorder()
	PurchaseOrderCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/purchase-order/add", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.created)
	require.Len(t, svc.created.Items, 1)
	assert.Equal(t, itemID, svc.created.Items[0].ItemID)
	assert.Equal(t, 2, svc.created.Items[0].OrderQty)

	var envelope struct {
		Data struct {
			OrderNo string `json:"orderNo"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "PO000001", envelope.Data.OrderNo)
}

func TestPurchaseOrderCreateAcceptsBrowserPayload(t *testing.T) {
	svc := &stubOrderService{}
	supplierID := uuid.New()
	boltID := uuid.New()
	nutID := uuid.New()
	payload := `{
		"orderNo": "PO-20260301-0001",
		"orderDate": "2026-03-01T09:00:00.000Z",
		"supplierId": "` + supplierID.String() + `",
		"items": [
			{"itemId": "` + boltID.String() + `", "packingUnit": "BOX", "orderQty": 3, "unitPrice": 10, "itemAmount": 30, "discount": 2, "netAmount": 28},
			{"itemId": "` + nutID.String() + `", "packingUnit": "PCS", "orderQty": 4, "unitPrice": 5, "itemAmount": 20, "discount": 0, "netAmount": 20}
		],
		"itemTotal": 50,
		"discount": 2,
		"netAmount": 48
	}`

	resp := httptest.NewRecorder()
	PurchaseOrderCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/purchase-order/add", strings.NewReader(payload)))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotNil(t, svc.created)
	assert.Equal(t, supplierID, svc.created.SupplierID)
	require.Len(t, svc.created.Items, 2)
	assert.Equal(t, nutID, svc.created.Items[1].ItemID)
	assert.Equal(t, "PCS", svc.created.Items[1].PackingUnit)

	var envelope struct {
		Data struct {
			OrderNo string `json:"orderNo"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "PO000001", envelope.Data.OrderNo)
}

func TestPurchaseOrderCreateValidatesLines(t *testing.T) {
	svc := &stubOrderService{}
	payload := `{"supplierId":"` + uuid.NewString() + `","items":[{"itemId":"` + uuid.NewString() + `","orderQty":0}]}`

	resp := httptest.NewRecorder()
	PurchaseOrderCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Code)
	assert.Contains(t, body.Details, "items[0].orderQty")
	assert.Nil(t, svc.created)
}

func TestPurchaseOrderCreateRejectsEmptyItems(t *testing.T) {
	svc := &stubOrderService{}
	payload := `{"supplierId":"` + uuid.NewString() + `","items":[]}`

	resp := httptest.NewRecorder()
	PurchaseOrderCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, svc.created)
}

func TestPurchaseOrderCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubOrderService{}
	resp := httptest.NewRecorder()
	PurchaseOrderCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"vendor":"x"}`)))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Nil(t, svc.created)
}

func TestPurchaseOrderGetRejectsMalformedID(t *testing.T) {
	req := withRouteID(httptest.NewRequest(http.MethodGet, "/", nil), "not-a-uuid")
	resp := httptest.NewRecorder()
	PurchaseOrderGet(&stubOrderService{}, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPurchaseOrderGetNotFound(t *testing.T) {
	svc := &stubOrderService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")}
	req := withRouteID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString())
	resp := httptest.NewRecorder()
	PurchaseOrderGet(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "purchase order not found", decodeError(t, resp).Message)
}

func TestPurchaseOrderNilServiceIsInternal(t *testing.T) {
	resp := httptest.NewRecorder()
	PurchaseOrderTotals(nil, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "internal server error", decodeError(t, resp).Message)
}
