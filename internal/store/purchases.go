package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const purchaseColumns = `id, item_name, supplier, purchase_date, quantity, unit,
unit_cost, total_cost, shipping_cost, notes, invoice_url, created_at, updated_at`

func scanPurchase(row interface{ Scan(dest ...any) error }) (RawMaterialPurchase, error) {
	var p RawMaterialPurchase
	err := row.Scan(&p.ID, &p.ItemName, &p.Supplier, &p.PurchaseDate, &p.Quantity,
		&p.Unit, &p.UnitCost, &p.TotalCost, &p.ShippingCost, &p.Notes,
		&p.InvoiceUrl, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createPurchase = `
INSERT INTO raw_material_purchases (item_name, supplier, purchase_date, quantity,
	unit, unit_cost, total_cost, shipping_cost, notes, invoice_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + purchaseColumns

// CreatePurchaseParams are the fields for a raw-material purchase record.
// TotalCost is derived by the handler, never taken from the client.
type CreatePurchaseParams struct {
	ItemName     string
	Supplier     pgtype.Text
	PurchaseDate pgtype.Date
	Quantity     pgtype.Numeric
	Unit         string
	UnitCost     pgtype.Numeric
	TotalCost    pgtype.Numeric
	ShippingCost pgtype.Numeric
	Notes        pgtype.Text
	InvoiceUrl   pgtype.Text
}

func (s *Store) CreatePurchase(ctx context.Context, arg CreatePurchaseParams) (RawMaterialPurchase, error) {
	row := s.db.QueryRow(ctx, createPurchase, arg.ItemName, arg.Supplier,
		arg.PurchaseDate, arg.Quantity, arg.Unit, arg.UnitCost, arg.TotalCost,
		arg.ShippingCost, arg.Notes, arg.InvoiceUrl)
	return scanPurchase(row)
}

const getPurchase = `
SELECT ` + purchaseColumns + `
FROM raw_material_purchases
WHERE id = $1
`

func (s *Store) GetPurchase(ctx context.Context, id uuid.UUID) (RawMaterialPurchase, error) {
	return scanPurchase(s.db.QueryRow(ctx, getPurchase, id))
}

const listPurchases = `
SELECT ` + purchaseColumns + `
FROM raw_material_purchases
ORDER BY purchase_date DESC, created_at DESC
`

func (s *Store) ListPurchases(ctx context.Context) ([]RawMaterialPurchase, error) {
	rows, err := s.db.Query(ctx, listPurchases)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []RawMaterialPurchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

const updatePurchase = `
UPDATE raw_material_purchases
SET item_name = $2, supplier = $3, purchase_date = $4, quantity = $5, unit = $6,
	unit_cost = $7, total_cost = $8, shipping_cost = $9, notes = $10,
	invoice_url = $11, updated_at = now()
WHERE id = $1
RETURNING ` + purchaseColumns

// UpdatePurchaseParams replaces every editable purchase field.
type UpdatePurchaseParams struct {
	ID           uuid.UUID
	ItemName     string
	Supplier     pgtype.Text
	PurchaseDate pgtype.Date
	Quantity     pgtype.Numeric
	Unit         string
	UnitCost     pgtype.Numeric
	TotalCost    pgtype.Numeric
	ShippingCost pgtype.Numeric
	Notes        pgtype.Text
	InvoiceUrl   pgtype.Text
}

func (s *Store) UpdatePurchase(ctx context.Context, arg UpdatePurchaseParams) (RawMaterialPurchase, error) {
	row := s.db.QueryRow(ctx, updatePurchase, arg.ID, arg.ItemName, arg.Supplier,
		arg.PurchaseDate, arg.Quantity, arg.Unit, arg.UnitCost, arg.TotalCost,
		arg.ShippingCost, arg.Notes, arg.InvoiceUrl)
	return scanPurchase(row)
}

const deletePurchase = `
DELETE FROM raw_material_purchases
WHERE id = $1
`

func (s *Store) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, deletePurchase, id)
	return err
}
