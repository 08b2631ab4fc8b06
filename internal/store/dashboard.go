package store

import (
	"context"
)

const countOrdersByStatus = `
SELECT status, COUNT(*)
FROM orders
GROUP BY status
`

// CountOrdersByStatus returns order counts keyed by status.
func (s *Store) CountOrdersByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.Query(ctx, countOrdersByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

const countCustomers = `
SELECT COUNT(*)
FROM customers
WHERE status = 'active'
`

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, countCustomers).Scan(&n)
	return n, err
}

const countProducts = `
SELECT COUNT(*)
FROM products
`

func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, countProducts).Scan(&n)
	return n, err
}

const monthRevenue = `
SELECT COALESCE(SUM(total_amount), 0)
FROM orders
WHERE status = 'delivered'
  AND created_at >= date_trunc('month', now())
`

// MonthRevenue sums delivered order totals for the current calendar month.
// Returned as a string to keep NUMERIC precision.
func (s *Store) MonthRevenue(ctx context.Context) (string, error) {
	var revenue string
	err := s.db.QueryRow(ctx, monthRevenue).Scan(&revenue)
	return revenue, err
}

const listRecentOrders = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
LIMIT $1
`

func (s *Store) ListRecentOrders(ctx context.Context, limit int32) ([]Order, error) {
	rows, err := s.db.Query(ctx, listRecentOrders, limit)
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
