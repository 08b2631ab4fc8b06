package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pestaway/backoffice/internal/auth"
	"github.com/pestaway/backoffice/internal/enum"
	"github.com/pestaway/backoffice/internal/middleware"
	"github.com/pestaway/backoffice/internal/service"
	"github.com/pestaway/backoffice/internal/store"
)

type mockOrderServicer struct {
	createOrderFn  func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	updateOrderFn  func(ctx context.Context, req service.UpdateOrderRequest) (*service.OrderResult, error)
	updateStatusFn func(ctx context.Context, orderID uuid.UUID, newStatus, byName string) (store.Order, error)
	cancelFn       func(ctx context.Context, orderID uuid.UUID, byName string) (store.Order, error)
	deleteFn       func(ctx context.Context, orderID uuid.UUID) error
}

func (m *mockOrderServicer) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
	return m.createOrderFn(ctx, req)
}

func (m *mockOrderServicer) UpdateOrder(ctx context.Context, req service.UpdateOrderRequest) (*service.OrderResult, error) {
	return m.updateOrderFn(ctx, req)
}

func (m *mockOrderServicer) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus, byName string) (store.Order, error) {
	return m.updateStatusFn(ctx, orderID, newStatus, byName)
}

func (m *mockOrderServicer) Cancel(ctx context.Context, orderID uuid.UUID, byName string) (store.Order, error) {
	return m.cancelFn(ctx, orderID, byName)
}

func (m *mockOrderServicer) Delete(ctx context.Context, orderID uuid.UUID) error {
	return m.deleteFn(ctx, orderID)
}

type mockOrderReadStore struct {
	getOrderFn              func(ctx context.Context, id uuid.UUID) (store.Order, error)
	listOrdersFn            func(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error)
	listOrderItemsByOrderFn func(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	listNotesFn             func(ctx context.Context, orderID uuid.UUID) ([]store.InternalNote, error)
	createNoteFn            func(ctx context.Context, arg store.CreateInternalNoteParams) (store.InternalNote, error)
}

func (m *mockOrderReadStore) GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error) {
	return m.getOrderFn(ctx, id)
}

func (m *mockOrderReadStore) ListOrders(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error) {
	return m.listOrdersFn(ctx, arg)
}

func (m *mockOrderReadStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error) {
	return m.listOrderItemsByOrderFn(ctx, orderID)
}

func (m *mockOrderReadStore) ListInternalNotesByOrder(ctx context.Context, orderID uuid.UUID) ([]store.InternalNote, error) {
	return m.listNotesFn(ctx, orderID)
}

func (m *mockOrderReadStore) CreateInternalNote(ctx context.Context, arg store.CreateInternalNoteParams) (store.InternalNote, error) {
	return m.createNoteFn(ctx, arg)
}

type mockBroadcaster struct {
	events []string
}

func (m *mockBroadcaster) BroadcastJSON(eventType string, payload any) error {
	m.events = append(m.events, eventType)
	return nil
}

func makeNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

func testClaims() *auth.Claims {
	return &auth.Claims{
		UserID: uuid.New(),
		Email:  "mona@pestaway.com",
		Role:   enum.UserRoleStaff,
	}
}

// ordersRouter mounts the handler behind a middleware that injects claims,
// the same shape the real router produces.
func ordersRouter(h *OrderHandler, claims *auth.Claims) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.ContextWithClaims(req.Context(), claims)))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func testOrder(t *testing.T) store.Order {
	t.Helper()
	return store.Order{
		ID:          uuid.New(),
		OrderNumber: "PW-00042",
		CustomerID:  uuid.New(),
		Status:      enum.OrderStatusPending,
		Governorate: pgtype.Text{String: "القاهرة", Valid: true},
		City:        pgtype.Text{String: "الزمالك", Valid: true},
		Subtotal:    makeNumeric(t, "260.00"),
		ShippingFee: makeNumeric(t, "50.00"),
		FeeMode:     enum.FeeModeAuto,
		TotalAmount: makeNumeric(t, "310.00"),
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestOrderList_FiltersAndPagination(t *testing.T) {
	var got store.ListOrdersParams
	st := &mockOrderReadStore{
		listOrdersFn: func(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error) {
			got = arg
			return []store.Order{testOrder(t)}, nil
		},
	}
	h := NewOrderHandler(&mockOrderServicer{}, st, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "GET", "/orders?status=pending&limit=500", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got.Status != enum.OrderStatusPending {
		t.Errorf("status filter: got %q, want %q", got.Status, enum.OrderStatusPending)
	}
	if got.Limit != 100 {
		t.Errorf("limit should be capped at 100, got %d", got.Limit)
	}
}

func TestOrderList_InvalidCustomerID(t *testing.T) {
	h := NewOrderHandler(&mockOrderServicer{}, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "GET", "/orders?customer_id=not-a-uuid", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderGet_IncludesItemsAndTotals(t *testing.T) {
	order := testOrder(t)
	st := &mockOrderReadStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (store.Order, error) {
			return order, nil
		},
		listOrderItemsByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error) {
			return []store.OrderItem{{
				ID:              uuid.New(),
				OrderID:         order.ID,
				ProductID:       uuid.New(),
				ProductName:     "Bed Bug Spray",
				Quantity:        2,
				OriginalPrice:   makeNumeric(t, "100.00"),
				PriceAtPurchase: makeNumeric(t, "100.00"),
			}}, nil
		},
	}
	h := NewOrderHandler(&mockOrderServicer{}, st, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "GET", "/orders/"+order.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp orderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.TotalAmount != "310.00" {
		t.Errorf("total_amount: got %q, want %q", resp.TotalAmount, "310.00")
	}
	if len(resp.Items) != 1 || resp.Items[0].ProductName != "Bed Bug Spray" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	st := &mockOrderReadStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (store.Order, error) {
			return store.Order{}, pgx.ErrNoRows
		},
	}
	h := NewOrderHandler(&mockOrderServicer{}, st, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "GET", "/orders/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderCreate_BroadcastsAndReturnsCreated(t *testing.T) {
	claims := testClaims()
	order := testOrder(t)
	hub := &mockBroadcaster{}
	svc := &mockOrderServicer{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			if req.CreatedBy != claims.UserID {
				t.Errorf("created_by: got %v, want %v", req.CreatedBy, claims.UserID)
			}
			if req.CreatedByName != claims.Email {
				t.Errorf("created_by name: got %q, want %q", req.CreatedByName, claims.Email)
			}
			return &service.OrderResult{Order: order}, nil
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, hub)
	router := ordersRouter(h, claims)

	rr := doJSON(t, router, "POST", "/orders", createOrderRequest{
		CustomerName:  "Ahmed",
		CustomerPhone: "01012345678",
		Governorate:   "القاهرة",
		City:          "الزمالك",
		Items:         []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 2}},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if len(hub.events) != 1 || hub.events[0] != "order.created" {
		t.Errorf("broadcast events: %v", hub.events)
	}
}

func TestOrderCreate_ValidationErrorIs400(t *testing.T) {
	hub := &mockBroadcaster{}
	svc := &mockOrderServicer{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			return nil, service.ErrEmptyItems
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, hub)
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "POST", "/orders", createOrderRequest{CustomerName: "Ahmed"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if len(hub.events) != 0 {
		t.Errorf("nothing should be broadcast on failure, got %v", hub.events)
	}
}

func TestOrderCreate_ProductNotFoundIs404(t *testing.T) {
	svc := &mockOrderServicer{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error) {
			return nil, service.ErrProductNotFound
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "POST", "/orders", createOrderRequest{
		CustomerName:  "Ahmed",
		CustomerPhone: "01012345678",
		Items:         []orderItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderUpdate_PassesItemOverrides(t *testing.T) {
	order := testOrder(t)
	var got service.UpdateOrderRequest
	svc := &mockOrderServicer{
		updateOrderFn: func(ctx context.Context, req service.UpdateOrderRequest) (*service.OrderResult, error) {
			got = req
			return &service.OrderResult{Order: order}, nil
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	productID := uuid.NewString()
	rr := doJSON(t, router, "PUT", "/orders/"+order.ID.String(), updateOrderRequest{
		Status:      enum.OrderStatusProcessing,
		Governorate: "القاهرة",
		City:        "الزمالك",
		Items:       []orderItemRequest{{ProductID: productID, Quantity: 3, Price: "90.00"}},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got.OrderID != order.ID {
		t.Errorf("order ID: got %v, want %v", got.OrderID, order.ID)
	}
	if len(got.Items) != 1 || got.Items[0].Price != "90.00" {
		t.Errorf("item override not forwarded: %+v", got.Items)
	}
}

func TestOrderUpdateStatus_Broadcasts(t *testing.T) {
	order := testOrder(t)
	order.Status = enum.OrderStatusProcessing
	hub := &mockBroadcaster{}
	svc := &mockOrderServicer{
		updateStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus, byName string) (store.Order, error) {
			if newStatus != enum.OrderStatusProcessing {
				t.Errorf("new status: got %q, want %q", newStatus, enum.OrderStatusProcessing)
			}
			return order, nil
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, hub)
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "PATCH", "/orders/"+order.ID.String()+"/status",
		updateStatusRequest{Status: enum.OrderStatusProcessing})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if len(hub.events) != 1 || hub.events[0] != "order.status_changed" {
		t.Errorf("broadcast events: %v", hub.events)
	}
}

func TestOrderUpdateStatus_InvalidTransitionIs409(t *testing.T) {
	svc := &mockOrderServicer{
		updateStatusFn: func(ctx context.Context, orderID uuid.UUID, newStatus, byName string) (store.Order, error) {
			return store.Order{}, service.ErrInvalidTransition
		},
	}
	hub := &mockBroadcaster{}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, hub)
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "PATCH", "/orders/"+uuid.NewString()+"/status",
		updateStatusRequest{Status: enum.OrderStatusDelivered})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if len(hub.events) != 0 {
		t.Errorf("nothing should be broadcast on failure, got %v", hub.events)
	}
}

func TestOrderCancel_TerminalIs409(t *testing.T) {
	svc := &mockOrderServicer{
		cancelFn: func(ctx context.Context, orderID uuid.UUID, byName string) (store.Order, error) {
			return store.Order{}, service.ErrOrderTerminal
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "POST", "/orders/"+uuid.NewString()+"/cancel", nil)

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func adminClaims() *auth.Claims {
	c := testClaims()
	c.Role = enum.UserRoleAdmin
	return c
}

func TestOrderDelete_NoContent(t *testing.T) {
	svc := &mockOrderServicer{
		deleteFn: func(ctx context.Context, orderID uuid.UUID) error {
			return nil
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, adminClaims())

	rr := doJSON(t, router, "DELETE", "/orders/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestOrderDelete_NotFound(t *testing.T) {
	svc := &mockOrderServicer{
		deleteFn: func(ctx context.Context, orderID uuid.UUID) error {
			return service.ErrOrderNotFound
		},
	}
	h := NewOrderHandler(svc, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, adminClaims())

	rr := doJSON(t, router, "DELETE", "/orders/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderDelete_StaffForbidden(t *testing.T) {
	h := NewOrderHandler(&mockOrderServicer{}, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "DELETE", "/orders/"+uuid.NewString(), nil)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestOrderNotes_ListInSequence(t *testing.T) {
	order := testOrder(t)
	st := &mockOrderReadStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (store.Order, error) {
			return order, nil
		},
		listNotesFn: func(ctx context.Context, orderID uuid.UUID) ([]store.InternalNote, error) {
			return []store.InternalNote{
				{ID: uuid.New(), OrderID: order.ID, Seq: 1, Title: "Order Created", Content: "Order automatically created.", CreatedBy: "mona@pestaway.com"},
				{ID: uuid.New(), OrderID: order.ID, Seq: 2, Title: "Status Changed: pending -> processing", Content: "Order status updated by mona@pestaway.com.", CreatedBy: "mona@pestaway.com"},
			}, nil
		},
	}
	h := NewOrderHandler(&mockOrderServicer{}, st, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "GET", "/orders/"+order.ID.String()+"/notes", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp []noteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 2 || resp[0].Seq != 1 || resp[1].Seq != 2 {
		t.Errorf("unexpected notes: %+v", resp)
	}
}

func TestOrderNotes_CreateUsesClaims(t *testing.T) {
	claims := testClaims()
	order := testOrder(t)
	st := &mockOrderReadStore{
		getOrderFn: func(ctx context.Context, id uuid.UUID) (store.Order, error) {
			return order, nil
		},
		createNoteFn: func(ctx context.Context, arg store.CreateInternalNoteParams) (store.InternalNote, error) {
			if arg.CreatedBy != claims.Email {
				t.Errorf("created_by: got %q, want %q", arg.CreatedBy, claims.Email)
			}
			return store.InternalNote{
				ID:        uuid.New(),
				OrderID:   arg.OrderID,
				Seq:       3,
				Title:     arg.Title,
				Content:   arg.Content,
				CreatedBy: arg.CreatedBy,
			}, nil
		},
	}
	h := NewOrderHandler(&mockOrderServicer{}, st, &mockBroadcaster{})
	router := ordersRouter(h, claims)

	rr := doJSON(t, router, "POST", "/orders/"+order.ID.String()+"/notes",
		createNoteRequest{Title: "Customer called", Content: "Asked to deliver after 6pm."})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
}

func TestOrderNotes_CreateRequiresTitleAndContent(t *testing.T) {
	h := NewOrderHandler(&mockOrderServicer{}, &mockOrderReadStore{}, &mockBroadcaster{})
	router := ordersRouter(h, testClaims())

	rr := doJSON(t, router, "POST", "/orders/"+uuid.NewString()+"/notes",
		createNoteRequest{Title: "only a title"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
