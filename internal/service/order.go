package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/pestaway/backoffice/internal/enum"
	"github.com/pestaway/backoffice/internal/phone"
	"github.com/pestaway/backoffice/internal/pricing"
	"github.com/pestaway/backoffice/internal/rates"
	"github.com/pestaway/backoffice/internal/store"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrCustomerRequired  = errors.New("customer_id or customer name and phone are required")
	ErrInvalidPhone      = errors.New("phone must normalize to 11 digits")
	ErrInvalidCustomerID = errors.New("invalid customer_id")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInvalidProductID  = errors.New("invalid product_id")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrStatusConflict    = errors.New("order status changed, please retry")
	ErrOrderTerminal     = errors.New("order already reached a terminal status")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order service needs.
// Satisfied by *store.Store (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context) (int32, error)
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	UpdateOrder(ctx context.Context, arg store.UpdateOrderParams) (store.Order, error)
	UpdateOrderStatus(ctx context.Context, arg store.UpdateOrderStatusParams) (store.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	CreateOrderItem(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error
	CreateInternalNote(ctx context.Context, arg store.CreateInternalNoteParams) (store.InternalNote, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (store.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (store.Customer, error)
	CreateCustomer(ctx context.Context, arg store.CreateCustomerParams) (store.Customer, error)
	GetProduct(ctx context.Context, id uuid.UUID) (store.Product, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db store.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order. Either
// CustomerID or CustomerName+CustomerPhone must be set; the latter pair
// find-or-creates the customer by normalized phone.
type CreateOrderRequest struct {
	CreatedBy     uuid.UUID
	CreatedByName string

	CustomerID    string
	CustomerName  string
	CustomerPhone string

	Governorate string
	City        string
	LandMark    string
	FullAddress string

	Notes       string
	FeeMode     string // "auto" (default) or "manual"
	ShippingFee string // required when FeeMode is "manual"

	Items []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line. Prices are never taken from
// the client: they are re-derived from the catalog inside the transaction.
type CreateOrderItemRequest struct {
	ProductID string
	Quantity  int32
}

// UpdateOrderRequest is the full-replacement save of an existing order: the
// submitted state wins wholesale, and a change-summary note records the diff.
type UpdateOrderRequest struct {
	OrderID       uuid.UUID
	UpdatedByName string

	Status      string
	Governorate string
	City        string
	LandMark    string
	FullAddress string
	Notes       string

	FeeMode     string
	ShippingFee string

	Items []UpdateOrderItemRequest
}

// UpdateOrderItemRequest is one line of the replacement item set. Price is an
// optional staff override; empty means re-derive from the catalog.
type UpdateOrderItemRequest struct {
	ProductID string
	Quantity  int32
	Price     string
}

// OrderResult is an order with its line items.
type OrderResult struct {
	Order store.Order
	Items []store.OrderItem
}

// OrderService handles order business logic. Pricing is always re-derived
// server-side through the reconciler; client-submitted totals are ignored.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
	rates    *rates.Table
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, table *rates.Table) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, rates: table}
}

// CreateOrder validates, re-derives pricing, and creates the order, its items,
// and the initial audit note atomically. Retries on order_number unique
// constraint violations (concurrent transactions can get the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.CustomerID == "" && (req.CustomerName == "" || req.CustomerPhone == "") {
		return nil, ErrCustomerRequired
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	if req.FeeMode != "" && req.FeeMode != enum.FeeModeAuto && req.FeeMode != enum.FeeModeManual {
		return nil, fmt.Errorf("fee_mode: %w", ErrInvalidStatus)
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	customerID, err := s.resolveCustomer(ctx, st, req)
	if err != nil {
		return nil, err
	}

	draft, err := s.buildDraft(ctx, st, draftInput{
		governorate: req.Governorate,
		city:        req.City,
		feeMode:     req.FeeMode,
		shippingFee: req.ShippingFee,
		items:       createItemsToUpdateItems(req.Items),
	})
	if err != nil {
		return nil, err
	}

	nextNum, err := st.GetNextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("PW-%05d", nextNum)

	order, err := st.CreateOrder(ctx, store.CreateOrderParams{
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		Status:      enum.OrderStatusPending,
		Governorate: textOrNull(req.Governorate),
		City:        textOrNull(req.City),
		LandMark:    textOrNull(req.LandMark),
		FullAddress: textOrNull(req.FullAddress),
		Subtotal:    decimalToNumeric(pricing.Subtotal(draft.Items)),
		ShippingFee: decimalToNumeric(draft.ShippingFee),
		FeeMode:     feeModeString(draft.FeeMode),
		TotalAmount: decimalToNumeric(draft.TotalAmount),
		Notes:       textOrNull(req.Notes),
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items, err := insertItems(ctx, st, order.ID, draft.Items)
	if err != nil {
		return nil, err
	}

	_, err = st.CreateInternalNote(ctx, store.CreateInternalNoteParams{
		OrderID:   order.ID,
		Title:     "Order Created",
		Content:   "Order automatically created.",
		CreatedBy: req.CreatedByName,
	})
	if err != nil {
		return nil, fmt.Errorf("create order note: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &OrderResult{Order: order, Items: items}, nil
}

// UpdateOrder replaces the order's state with the submitted one and appends a
// change-summary note, all in one transaction. Totals are re-derived; the
// status field is free-choice here (the edit form allows any status), unlike
// the single-step UpdateStatus endpoint.
func (s *OrderService) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*OrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if !isValidOrderStatus(req.Status) {
		return nil, ErrInvalidStatus
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	if req.FeeMode != "" && req.FeeMode != enum.FeeModeAuto && req.FeeMode != enum.FeeModeManual {
		return nil, fmt.Errorf("fee_mode: %w", ErrInvalidStatus)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	old, err := st.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	oldItems, err := st.ListOrderItemsByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	draft, err := s.buildDraft(ctx, st, draftInput{
		governorate: req.Governorate,
		city:        req.City,
		feeMode:     req.FeeMode,
		shippingFee: req.ShippingFee,
		items:       req.Items,
	})
	if err != nil {
		return nil, err
	}

	order, err := st.UpdateOrder(ctx, store.UpdateOrderParams{
		ID:          req.OrderID,
		Status:      req.Status,
		Governorate: textOrNull(req.Governorate),
		City:        textOrNull(req.City),
		LandMark:    textOrNull(req.LandMark),
		FullAddress: textOrNull(req.FullAddress),
		Subtotal:    decimalToNumeric(pricing.Subtotal(draft.Items)),
		ShippingFee: decimalToNumeric(draft.ShippingFee),
		FeeMode:     feeModeString(draft.FeeMode),
		TotalAmount: decimalToNumeric(draft.TotalAmount),
		Notes:       textOrNull(req.Notes),
	})
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if err := st.DeleteOrderItemsByOrder(ctx, req.OrderID); err != nil {
		return nil, fmt.Errorf("delete order items: %w", err)
	}
	items, err := insertItems(ctx, st, order.ID, draft.Items)
	if err != nil {
		return nil, err
	}

	summary := changeSummary(old, oldItems, req, draft)
	_, err = st.CreateInternalNote(ctx, store.CreateInternalNoteParams{
		OrderID:   order.ID,
		Title:     "Order Updated",
		Content:   summary,
		CreatedBy: req.UpdatedByName,
	})
	if err != nil {
		return nil, fmt.Errorf("create change note: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &OrderResult{Order: order, Items: items}, nil
}

// UpdateStatus moves an order one step through the status machine and records
// the transition as an audit note.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus, byName string) (store.Order, error) {
	if !isValidOrderStatus(newStatus) {
		return store.Order{}, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return store.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	current, err := st.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrOrderNotFound
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}

	if err := ValidateStatusTransition(current.Status, newStatus); err != nil {
		return store.Order{}, err
	}

	updated, err := st.UpdateOrderStatus(ctx, store.UpdateOrderStatusParams{
		ID:       orderID,
		Status:   newStatus,
		Expected: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Status moved between our read and write.
			return store.Order{}, ErrStatusConflict
		}
		return store.Order{}, fmt.Errorf("update order status: %w", err)
	}

	_, err = st.CreateInternalNote(ctx, store.CreateInternalNoteParams{
		OrderID:   orderID,
		Title:     fmt.Sprintf("Status Changed: %s -> %s", current.Status, newStatus),
		Content:   fmt.Sprintf("Order status updated by %s.", byName),
		CreatedBy: byName,
	})
	if err != nil {
		return store.Order{}, fmt.Errorf("create status note: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return store.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// Cancel cancels an order unless it already reached delivered or cancelled.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, byName string) (store.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return store.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	current, err := st.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Order{}, ErrOrderNotFound
		}
		return store.Order{}, fmt.Errorf("get order: %w", err)
	}

	cancelled, err := st.CancelOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The WHERE clause filtered the row: already terminal.
			return store.Order{}, ErrOrderTerminal
		}
		return store.Order{}, fmt.Errorf("cancel order: %w", err)
	}

	_, err = st.CreateInternalNote(ctx, store.CreateInternalNoteParams{
		OrderID:   orderID,
		Title:     fmt.Sprintf("Status Changed: %s -> %s", current.Status, enum.OrderStatusCancelled),
		Content:   fmt.Sprintf("Order cancelled by %s.", byName),
		CreatedBy: byName,
	})
	if err != nil {
		return store.Order{}, fmt.Errorf("create cancel note: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return store.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return cancelled, nil
}

// Delete removes an order and, via cascade, its items and notes.
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	if _, err := st.GetOrder(ctx, orderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}
	if err := st.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return tx.Commit(ctx)
}

// --- Draft construction ---

type draftInput struct {
	governorate string
	city        string
	feeMode     string
	shippingFee string
	items       []UpdateOrderItemRequest
}

// buildDraft re-derives the order's pricing from the catalog through the
// reconciler. Client prices are honored only as explicit per-line overrides.
func (s *OrderService) buildDraft(ctx context.Context, st OrderStore, in draftInput) (pricing.Draft, error) {
	catalog := pricing.Catalog{}
	for i, item := range in.items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return pricing.Draft{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidProductID)
		}
		if _, ok := catalog[pid]; ok {
			continue
		}
		p, err := st.GetProduct(ctx, pid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return pricing.Draft{}, fmt.Errorf("items[%d]: %w", i, ErrProductNotFound)
			}
			return pricing.Draft{}, fmt.Errorf("items[%d]: get product: %w", i, err)
		}
		catalog[pid] = pricing.Product{
			ID:           p.ID,
			Name:         p.Name,
			Price:        numericToDecimal(p.Price),
			SalePrice:    numericToDecimal(p.SalePrice),
			OnSale:       p.OnSale,
			FreeDelivery: p.FreeDelivery,
		}
	}

	r := pricing.NewReconciler(catalog, s.rates)
	d := r.NewDraft()
	d = r.SetDestination(d, in.governorate, "")
	d = r.SetDestination(d, in.governorate, in.city)

	// One draft line per product. Request entries repeating a product ID
	// accumulate quantity onto the existing line, and a price override
	// always targets the line for its own product.
	lineIndex := make(map[uuid.UUID]int)
	for i, item := range in.items {
		pid, _ := uuid.Parse(item.ProductID)
		idx, seen := lineIndex[pid]
		if !seen {
			d = r.AddItem(d, pid)
			idx = len(d.Items) - 1
			lineIndex[pid] = idx
			d = r.SetQuantity(d, pid, item.Quantity)
		} else {
			d = r.SetQuantity(d, pid, d.Items[idx].Quantity+item.Quantity)
		}
		if item.Price != "" {
			price, err := decimal.NewFromString(item.Price)
			if err != nil {
				return pricing.Draft{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidAmount)
			}
			d = r.SetItemPrice(d, idx, price)
		}
	}

	if in.feeMode == enum.FeeModeManual {
		fee, err := decimal.NewFromString(in.shippingFee)
		if err != nil {
			return pricing.Draft{}, fmt.Errorf("shipping_fee: %w", ErrInvalidAmount)
		}
		d = r.SetShippingFee(d, fee)
	}
	return d, nil
}

// resolveCustomer returns the customer id for the request, creating the
// customer when only name+phone were submitted. Lookup is by normalized
// phone, the natural customer key.
func (s *OrderService) resolveCustomer(ctx context.Context, st OrderStore, req CreateOrderRequest) (uuid.UUID, error) {
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return uuid.Nil, ErrInvalidCustomerID
		}
		if _, err := st.GetCustomer(ctx, cid); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return uuid.Nil, ErrCustomerNotFound
			}
			return uuid.Nil, fmt.Errorf("get customer: %w", err)
		}
		return cid, nil
	}

	normalized := phone.Normalize(req.CustomerPhone)
	if !phone.IsValid(normalized) {
		return uuid.Nil, ErrInvalidPhone
	}

	existing, err := st.GetCustomerByPhone(ctx, normalized)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("get customer by phone: %w", err)
	}

	created, err := st.CreateCustomer(ctx, store.CreateCustomerParams{
		Name:        req.CustomerName,
		Phone:       normalized,
		Governorate: textOrNull(req.Governorate),
		City:        textOrNull(req.City),
		LandMark:    textOrNull(req.LandMark),
		FullAddress: textOrNull(req.FullAddress),
		Status:      enum.CustomerStatusActive,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create customer: %w", err)
	}
	return created.ID, nil
}

func insertItems(ctx context.Context, st OrderStore, orderID uuid.UUID, items []pricing.LineItem) ([]store.OrderItem, error) {
	out := make([]store.OrderItem, 0, len(items))
	for i, li := range items {
		item, err := st.CreateOrderItem(ctx, store.CreateOrderItemParams{
			OrderID:         orderID,
			ProductID:       li.ProductID,
			ProductName:     li.ProductName,
			Quantity:        li.Quantity,
			OriginalPrice:   decimalToNumeric(li.OriginalPrice),
			PriceAtPurchase: decimalToNumeric(li.PriceAtPurchase),
			WasOnSale:       li.WasOnSale,
			Position:        int32(i),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}

// --- Change summary ---

// changeSummary renders the human-readable diff appended to the audit log on
// every full-replacement save.
func changeSummary(old store.Order, oldItems []store.OrderItem, req UpdateOrderRequest, draft pricing.Draft) string {
	var b strings.Builder
	b.WriteString("Order details updated. ")

	if old.Status != req.Status {
		fmt.Fprintf(&b, "Status: %s -> %s. ", old.Status, req.Status)
	}
	if old.Governorate.String != req.Governorate || old.City.String != req.City ||
		old.LandMark.String != req.LandMark || old.FullAddress.String != req.FullAddress {
		b.WriteString("Address updated. ")
	}
	if old.Notes.String != req.Notes {
		b.WriteString("Notes updated. ")
	}
	if itemsChanged(oldItems, draft.Items) {
		b.WriteString("Items updated. ")
	}

	oldTotal := numericToDecimal(old.TotalAmount)
	if !oldTotal.Equal(draft.TotalAmount) {
		fmt.Fprintf(&b, "Total: %s -> %s. ", oldTotal.StringFixed(2), draft.TotalAmount.StringFixed(2))
	}
	oldFee := numericToDecimal(old.ShippingFee)
	if !oldFee.Equal(draft.ShippingFee) {
		fmt.Fprintf(&b, "Shipping: %s -> %s. ", oldFee.StringFixed(2), draft.ShippingFee.StringFixed(2))
	}

	return strings.TrimRight(b.String(), " ")
}

func itemsChanged(old []store.OrderItem, next []pricing.LineItem) bool {
	if len(old) != len(next) {
		return true
	}
	for i := range old {
		if old[i].ProductID != next[i].ProductID ||
			old[i].Quantity != next[i].Quantity ||
			!numericToDecimal(old[i].PriceAtPurchase).Equal(next[i].PriceAtPurchase) {
			return true
		}
	}
	return false
}

// --- Status machine ---

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusProcessing, enum.OrderStatusCancelled},
	enum.OrderStatusProcessing: {enum.OrderStatusShipped, enum.OrderStatusCancelled},
	enum.OrderStatusShipped:    {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
}

// ValidateStatusTransition checks if the transition from current to next is
// allowed. Delivered and cancelled are terminal.
func ValidateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: cannot transition from %s", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusProcessing,
		enum.OrderStatusShipped, enum.OrderStatusDelivered,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

// --- Helpers ---

func createItemsToUpdateItems(items []CreateOrderItemRequest) []UpdateOrderItemRequest {
	out := make([]UpdateOrderItemRequest, len(items))
	for i, item := range items {
		out[i] = UpdateOrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return out
}

func feeModeString(m pricing.FeeMode) string {
	if m == pricing.FeeManual {
		return enum.FeeModeManual
	}
	return enum.FeeModeAuto
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
