package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, customer_id, status, governorate, city,
land_mark, full_address, subtotal, shipping_fee, fee_mode, total_amount, notes,
created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.Status,
		&o.Governorate, &o.City, &o.LandMark, &o.FullAddress,
		&o.Subtotal, &o.ShippingFee, &o.FeeMode, &o.TotalAmount, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const getNextOrderNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 4) AS INTEGER)), 0) + 1
FROM orders
`

// GetNextOrderNumber returns the next numeric suffix for an order number.
// Racy by nature: callers retry on the unique constraint.
func (s *Store) GetNextOrderNumber(ctx context.Context) (int32, error) {
	var n int32
	err := s.db.QueryRow(ctx, getNextOrderNumber).Scan(&n)
	return n, err
}

const createOrder = `
INSERT INTO orders (order_number, customer_id, status, governorate, city,
	land_mark, full_address, subtotal, shipping_fee, fee_mode, total_amount,
	notes, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + orderColumns

// CreateOrderParams are the header fields for a new order. Monetary fields
// must already satisfy total_amount = subtotal + shipping_fee.
type CreateOrderParams struct {
	OrderNumber string
	CustomerID  uuid.UUID
	Status      string
	Governorate pgtype.Text
	City        pgtype.Text
	LandMark    pgtype.Text
	FullAddress pgtype.Text
	Subtotal    pgtype.Numeric
	ShippingFee pgtype.Numeric
	FeeMode     string
	TotalAmount pgtype.Numeric
	Notes       pgtype.Text
	CreatedBy   uuid.UUID
}

func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := s.db.QueryRow(ctx, createOrder, arg.OrderNumber, arg.CustomerID,
		arg.Status, arg.Governorate, arg.City, arg.LandMark, arg.FullAddress,
		arg.Subtotal, arg.ShippingFee, arg.FeeMode, arg.TotalAmount,
		arg.Notes, arg.CreatedBy)
	return scanOrder(row)
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(s.db.QueryRow(ctx, getOrder, id))
}

const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($1::text = '' OR status = $1)
  AND ($2::uuid IS NULL OR customer_id = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

// ListOrdersParams filters the order listing, newest first.
type ListOrdersParams struct {
	Status     string
	CustomerID pgtype.UUID
	Limit      int32
	Offset     int32
}

func (s *Store) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := s.db.Query(ctx, listOrders, arg.Status, arg.CustomerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const updateOrder = `
UPDATE orders
SET status = $2, governorate = $3, city = $4, land_mark = $5, full_address = $6,
	subtotal = $7, shipping_fee = $8, fee_mode = $9, total_amount = $10,
	notes = $11, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

// UpdateOrderParams is the full-replacement save of an order header. Items
// are replaced separately in the same transaction.
type UpdateOrderParams struct {
	ID          uuid.UUID
	Status      string
	Governorate pgtype.Text
	City        pgtype.Text
	LandMark    pgtype.Text
	FullAddress pgtype.Text
	Subtotal    pgtype.Numeric
	ShippingFee pgtype.Numeric
	FeeMode     string
	TotalAmount pgtype.Numeric
	Notes       pgtype.Text
}

func (s *Store) UpdateOrder(ctx context.Context, arg UpdateOrderParams) (Order, error) {
	row := s.db.QueryRow(ctx, updateOrder, arg.ID, arg.Status, arg.Governorate,
		arg.City, arg.LandMark, arg.FullAddress, arg.Subtotal, arg.ShippingFee,
		arg.FeeMode, arg.TotalAmount, arg.Notes)
	return scanOrder(row)
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + orderColumns

// UpdateOrderStatusParams moves an order to Status only when its current
// status still equals Expected, guarding against concurrent transitions.
type UpdateOrderStatusParams struct {
	ID       uuid.UUID
	Status   string
	Expected string
}

func (s *Store) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(s.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.Expected))
}

const cancelOrder = `
UPDATE orders
SET status = 'cancelled', updated_at = now()
WHERE id = $1 AND status IN ('pending', 'processing', 'shipped')
RETURNING ` + orderColumns

// CancelOrder cancels an order unless it already reached a terminal status.
// The precondition is enforced in the WHERE clause, so the check is atomic.
func (s *Store) CancelOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(s.db.QueryRow(ctx, cancelOrder, id))
}

const deleteOrder = `
DELETE FROM orders
WHERE id = $1
`

// DeleteOrder removes an order; items and notes go with it via ON DELETE CASCADE.
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, deleteOrder, id)
	return err
}

// --- Order items ---

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity,
	original_price, price_at_purchase, was_on_sale, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, order_id, product_id, product_name, quantity, original_price,
	price_at_purchase, was_on_sale, position
`

// CreateOrderItemParams is one snapshot line of an order.
type CreateOrderItemParams struct {
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int32
	OriginalPrice   pgtype.Numeric
	PriceAtPurchase pgtype.Numeric
	WasOnSale       bool
	Position        int32
}

func (s *Store) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := s.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.ProductID,
		arg.ProductName, arg.Quantity, arg.OriginalPrice, arg.PriceAtPurchase,
		arg.WasOnSale, arg.Position)
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
		&it.Quantity, &it.OriginalPrice, &it.PriceAtPurchase, &it.WasOnSale,
		&it.Position)
	return it, err
}

const listOrderItemsByOrder = `
SELECT id, order_id, product_id, product_name, quantity, original_price,
	price_at_purchase, was_on_sale, position
FROM order_items
WHERE order_id = $1
ORDER BY position
`

func (s *Store) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := s.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.OriginalPrice, &it.PriceAtPurchase, &it.WasOnSale,
			&it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const deleteOrderItemsByOrder = `
DELETE FROM order_items
WHERE order_id = $1
`

// DeleteOrderItemsByOrder clears an order's lines ahead of a full-replacement
// save. Only called inside the update transaction.
func (s *Store) DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	_, err := s.db.Exec(ctx, deleteOrderItemsByOrder, orderID)
	return err
}
