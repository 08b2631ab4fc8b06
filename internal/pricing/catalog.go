package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry as the pricing engine sees it: prices are
// already typed decimals (display parsing happens at the store boundary).
type Product struct {
	ID           uuid.UUID
	Name         string
	Price        decimal.Decimal
	SalePrice    decimal.Decimal
	OnSale       bool
	FreeDelivery bool
}

// Catalog is a point-in-time snapshot of the product catalog, fetched once
// per editing session. It is never subscribed to for live updates.
type Catalog map[uuid.UUID]Product

// NewCatalog builds a snapshot from a product list.
func NewCatalog(products []Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Product returns the snapshot entry for an id.
func (c Catalog) Product(id uuid.UUID) (Product, bool) {
	p, ok := c[id]
	return p, ok
}

// saleApplies reports whether the sale price is actually in effect:
// the flag alone is not enough, the sale price must be a positive amount.
func saleApplies(p Product) bool {
	return p.OnSale && p.SalePrice.IsPositive()
}

// EffectivePrice is the unit price a new line item is charged: the sale
// price when the sale applies, the list price otherwise.
func EffectivePrice(p Product) decimal.Decimal {
	if saleApplies(p) {
		return p.SalePrice
	}
	return p.Price
}
