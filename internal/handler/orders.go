package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pestaway/backoffice/internal/enum"
	"github.com/pestaway/backoffice/internal/middleware"
	"github.com/pestaway/backoffice/internal/service"
	"github.com/pestaway/backoffice/internal/store"
	"github.com/pestaway/backoffice/internal/ws"
)

// OrderServicer defines the service methods order handlers need.
// Satisfied by *service.OrderService.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	UpdateOrder(ctx context.Context, req service.UpdateOrderRequest) (*service.OrderResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus, byName string) (store.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, byName string) (store.Order, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
}

// OrderReadStore defines the database methods order handlers read directly,
// bypassing the service (no business rules on reads).
// Satisfied by *store.Store.
type OrderReadStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrders(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	ListInternalNotesByOrder(ctx context.Context, orderID uuid.UUID) ([]store.InternalNote, error)
	CreateInternalNote(ctx context.Context, arg store.CreateInternalNoteParams) (store.InternalNote, error)
}

// Broadcaster pushes order events to connected back-office clients.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastJSON(eventType string, payload any) error
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	service OrderServicer
	store   OrderReadStore
	hub     Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service OrderServicer, store OrderReadStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{service: service, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.With(middleware.RequireRole(enum.UserRoleAdmin)).Delete("/{id}", h.Delete)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/cancel", h.Cancel)
		r.Get("/{id}/notes", h.ListNotes)
		r.Post("/{id}/notes", h.CreateNote)
	})
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`

	Governorate string `json:"governorate"`
	City        string `json:"city"`
	LandMark    string `json:"land_mark"`
	FullAddress string `json:"full_address"`

	Notes       string `json:"notes"`
	FeeMode     string `json:"fee_mode"`
	ShippingFee string `json:"shipping_fee"`

	Items []orderItemRequest `json:"items"`
}

type updateOrderRequest struct {
	Status      string `json:"status"`
	Governorate string `json:"governorate"`
	City        string `json:"city"`
	LandMark    string `json:"land_mark"`
	FullAddress string `json:"full_address"`
	Notes       string `json:"notes"`

	FeeMode     string `json:"fee_mode"`
	ShippingFee string `json:"shipping_fee"`

	Items []orderItemRequest `json:"items"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type orderResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"order_number"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	Status      string              `json:"status"`
	Governorate string              `json:"governorate,omitempty"`
	City        string              `json:"city,omitempty"`
	LandMark    string              `json:"land_mark,omitempty"`
	FullAddress string              `json:"full_address,omitempty"`
	Subtotal    string              `json:"subtotal"`
	ShippingFee string              `json:"shipping_fee"`
	FeeMode     string              `json:"fee_mode"`
	TotalAmount string              `json:"total_amount"`
	Notes       string              `json:"notes,omitempty"`
	CreatedBy   uuid.UUID           `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Items       []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int32     `json:"quantity"`
	OriginalPrice   string    `json:"original_price"`
	PriceAtPurchase string    `json:"price_at_purchase"`
	WasOnSale       bool      `json:"was_on_sale"`
}

type noteResponse struct {
	ID        uuid.UUID `json:"id"`
	Seq       int32     `json:"seq"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toOrderResponse(o store.Order, items []store.OrderItem) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		Governorate: o.Governorate.String,
		City:        o.City.String,
		LandMark:    o.LandMark.String,
		FullAddress: o.FullAddress.String,
		Subtotal:    numericToString(o.Subtotal),
		ShippingFee: numericToString(o.ShippingFee),
		FeeMode:     o.FeeMode,
		TotalAmount: numericToString(o.TotalAmount),
		Notes:       o.Notes.String,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			OriginalPrice:   numericToString(it.OriginalPrice),
			PriceAtPurchase: numericToString(it.PriceAtPurchase),
			WasOnSale:       it.WasOnSale,
		})
	}
	return resp
}

func toNoteResponse(n store.InternalNote) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Seq:       n.Seq,
		Title:     n.Title,
		Content:   n.Content,
		CreatedBy: n.CreatedBy,
		CreatedAt: n.CreatedAt,
	}
}

// --- Handlers ---

// List returns orders, newest first, optionally filtered by status and
// customer_id.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	var customerID pgtype.UUID
	if s := r.URL.Query().Get("customer_id"); s != "" {
		cid, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid customer_id"})
			return
		}
		customerID = pgtype.UUID{Bytes: cid, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), store.ListOrdersParams{
		Status:     r.URL.Query().Get("status"),
		CustomerID: customerID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		log.Printf("ERROR: failed to list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one order with its line items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: failed to get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// Create creates an order. Pricing is re-derived server-side; a submitted
// total is ignored.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateOrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	result, err := h.service.CreateOrder(r.Context(), service.CreateOrderRequest{
		CreatedBy:     claims.UserID,
		CreatedByName: claims.Email,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Governorate:   req.Governorate,
		City:          req.City,
		LandMark:      req.LandMark,
		FullAddress:   req.FullAddress,
		Notes:         req.Notes,
		FeeMode:       req.FeeMode,
		ShippingFee:   req.ShippingFee,
		Items:         items,
	})
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	if err := h.hub.BroadcastJSON(ws.EventOrderCreated, resp); err != nil {
		log.Printf("ERROR: failed to broadcast order created: %v", err)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Update is the full-replacement save from the order edit form.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	items := make([]service.UpdateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.UpdateOrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}

	result, err := h.service.UpdateOrder(r.Context(), service.UpdateOrderRequest{
		OrderID:       id,
		UpdatedByName: claims.Email,
		Status:        req.Status,
		Governorate:   req.Governorate,
		City:          req.City,
		LandMark:      req.LandMark,
		FullAddress:   req.FullAddress,
		Notes:         req.Notes,
		FeeMode:       req.FeeMode,
		ShippingFee:   req.ShippingFee,
		Items:         items,
	})
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result.Order, result.Items))
}

// UpdateStatus moves an order one step through the status machine.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status, claims.Email)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	resp := toOrderResponse(order, nil)
	if err := h.hub.BroadcastJSON(ws.EventOrderStatusChanged, resp); err != nil {
		log.Printf("ERROR: failed to broadcast status change: %v", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cancel cancels an order from any non-terminal status.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	order, err := h.service.Cancel(r.Context(), id, claims.Email)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	resp := toOrderResponse(order, nil)
	if err := h.hub.BroadcastJSON(ws.EventOrderStatusChanged, resp); err != nil {
		log.Printf("ERROR: failed to broadcast status change: %v", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes an order entirely. Admin only.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondOrderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotes returns the order's audit log in sequence order.
func (h *OrderHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetOrder(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: failed to get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	notes, err := h.store.ListInternalNotesByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to list notes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateNote appends a manual note to the order's audit log.
func (h *OrderHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and content are required"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	if _, err := h.store.GetOrder(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: failed to get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	note, err := h.store.CreateInternalNote(r.Context(), store.CreateInternalNoteParams{
		OrderID:   id,
		Title:     req.Title,
		Content:   req.Content,
		CreatedBy: claims.Email,
	})
	if err != nil {
		log.Printf("ERROR: failed to create note: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

// --- Helpers ---

// respondOrderError maps service sentinel errors to HTTP statuses.
func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrStatusConflict),
		errors.Is(err, service.ErrOrderTerminal):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrCustomerRequired),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidProductID),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: order operation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// parseIDParam reads the {id} route param as a UUID, writing a 400 on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// numericToString renders a NUMERIC column as its decimal string, "0" when null.
func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0"
	}
	s, ok := val.(string)
	if !ok {
		return "0"
	}
	return s
}
