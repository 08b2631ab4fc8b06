package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// User is a staff account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Customer is a shop customer, keyed in practice by normalized phone.
type Customer struct {
	ID          uuid.UUID
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a catalog entry. Prices are NUMERIC in the schema; display
// formatting happens at the API boundary.
type Product struct {
	ID           uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	SalePrice    pgtype.Numeric
	OnSale       bool
	FreeDelivery bool
	ImageUrl     pgtype.Text
	InStock      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Order is an order header. subtotal + shipping_fee = total_amount is
// maintained by the service layer on every write.
type Order struct {
	ID          uuid.UUID
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
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem is one line of an order with its price snapshots.
type OrderItem struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int32
	OriginalPrice   pgtype.Numeric
	PriceAtPurchase pgtype.Numeric
	WasOnSale       bool
	Position        int32
}

// InternalNote is one entry of an order's append-only audit log.
type InternalNote struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Seq       int32
	Title     string
	Content   string
	CreatedBy string
	CreatedAt time.Time
}

// RawMaterialPurchase records an inbound stock purchase.
type RawMaterialPurchase struct {
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
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BlogPost is a published or draft article.
type BlogPost struct {
	ID            uuid.UUID
	Title         string
	Slug          string
	Excerpt       pgtype.Text
	Content       string
	CoverImageUrl pgtype.Text
	Published     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
