package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const customerColumns = `id, name, phone, second_phone, email, governorate, city,
land_mark, full_address, status, notes, created_at, updated_at`

func scanCustomer(row interface{ Scan(dest ...any) error }) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.SecondPhone, &c.Email,
		&c.Governorate, &c.City, &c.LandMark, &c.FullAddress,
		&c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const createCustomer = `
INSERT INTO customers (name, phone, second_phone, email, governorate, city,
	land_mark, full_address, status, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + customerColumns

// CreateCustomerParams are the fields for a new customer. Phone must already
// be normalized by the caller.
type CreateCustomerParams struct {
	Name        string
	Phone       string
	SecondPhone pgtype.Text
	Email       pgtype.Text
	Governorate pgtype.Text
	City        pgtype.Text
	LandMark    pgtype.Text
	FullAddress pgtype.Text
	Status      string
	Notes       pgtype.Text
}

func (s *Store) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := s.db.QueryRow(ctx, createCustomer, arg.Name, arg.Phone, arg.SecondPhone,
		arg.Email, arg.Governorate, arg.City, arg.LandMark, arg.FullAddress,
		arg.Status, arg.Notes)
	return scanCustomer(row)
}

const getCustomer = `
SELECT ` + customerColumns + `
FROM customers
WHERE id = $1
`

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	return scanCustomer(s.db.QueryRow(ctx, getCustomer, id))
}

const getCustomerByPhone = `
SELECT ` + customerColumns + `
FROM customers
WHERE phone = $1
`

// GetCustomerByPhone looks a customer up by normalized phone, the natural key
// used by order intake.
func (s *Store) GetCustomerByPhone(ctx context.Context, phone string) (Customer, error) {
	return scanCustomer(s.db.QueryRow(ctx, getCustomerByPhone, phone))
}

const listCustomers = `
SELECT ` + customerColumns + `
FROM customers
WHERE ($1::text = '' OR status = $1)
  AND status <> 'deleted'
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

// ListCustomersParams filters the customer listing. Empty Status means all
// non-deleted customers.
type ListCustomersParams struct {
	Status string
	Limit  int32
	Offset int32
}

func (s *Store) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := s.db.Query(ctx, listCustomers, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

const updateCustomer = `
UPDATE customers
SET name = $2, phone = $3, second_phone = $4, email = $5, governorate = $6,
	city = $7, land_mark = $8, full_address = $9, notes = $10, updated_at = now()
WHERE id = $1
RETURNING ` + customerColumns

// UpdateCustomerParams replaces every editable customer field.
type UpdateCustomerParams struct {
	ID          uuid.UUID
	Name        string
	Phone       string
	SecondPhone pgtype.Text
	Email       pgtype.Text
	Governorate pgtype.Text
	City        pgtype.Text
	LandMark    pgtype.Text
	FullAddress pgtype.Text
	Notes       pgtype.Text
}

func (s *Store) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (Customer, error) {
	row := s.db.QueryRow(ctx, updateCustomer, arg.ID, arg.Name, arg.Phone,
		arg.SecondPhone, arg.Email, arg.Governorate, arg.City, arg.LandMark,
		arg.FullAddress, arg.Notes)
	return scanCustomer(row)
}

const setCustomerStatus = `
UPDATE customers
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING ` + customerColumns

// SetCustomerStatus moves a customer between active/archived/deleted.
// Deletion is soft: the row stays for order history.
func (s *Store) SetCustomerStatus(ctx context.Context, id uuid.UUID, status string) (Customer, error) {
	return scanCustomer(s.db.QueryRow(ctx, setCustomerStatus, id, status))
}
