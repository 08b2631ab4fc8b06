package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, name, description, price, sale_price, on_sale,
free_delivery, image_url, in_stock, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.SalePrice,
		&p.OnSale, &p.FreeDelivery, &p.ImageUrl, &p.InStock,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const createProduct = `
INSERT INTO products (name, description, price, sale_price, on_sale,
	free_delivery, image_url, in_stock)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + productColumns

// CreateProductParams are the fields for a new catalog entry.
type CreateProductParams struct {
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	SalePrice    pgtype.Numeric
	OnSale       bool
	FreeDelivery bool
	ImageUrl     pgtype.Text
	InStock      bool
}

func (s *Store) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := s.db.QueryRow(ctx, createProduct, arg.Name, arg.Description, arg.Price,
		arg.SalePrice, arg.OnSale, arg.FreeDelivery, arg.ImageUrl, arg.InStock)
	return scanProduct(row)
}

const getProduct = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(s.db.QueryRow(ctx, getProduct, id))
}

const listProducts = `
SELECT ` + productColumns + `
FROM products
ORDER BY name
`

func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const updateProduct = `
UPDATE products
SET name = $2, description = $3, price = $4, sale_price = $5, on_sale = $6,
	free_delivery = $7, image_url = $8, in_stock = $9, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns

// UpdateProductParams replaces every editable product field.
type UpdateProductParams struct {
	ID           uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	SalePrice    pgtype.Numeric
	OnSale       bool
	FreeDelivery bool
	ImageUrl     pgtype.Text
	InStock      bool
}

func (s *Store) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := s.db.QueryRow(ctx, updateProduct, arg.ID, arg.Name, arg.Description,
		arg.Price, arg.SalePrice, arg.OnSale, arg.FreeDelivery, arg.ImageUrl, arg.InStock)
	return scanProduct(row)
}

const deleteProduct = `
DELETE FROM products
WHERE id = $1
`

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, deleteProduct, id)
	return err
}
