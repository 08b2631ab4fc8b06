package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one order line. Name and prices are snapshots captured when
// the product was added, so historical orders display consistently even
// after the catalog changes.
type LineItem struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int32
	OriginalPrice   decimal.Decimal
	PriceAtPurchase decimal.Decimal
	WasOnSale       bool
}

// Address is a shipping destination. Fee lookup needs governorate and
// city; the rest is for the courier.
type Address struct {
	Governorate string
	City        string
	LandMark    string
	FullAddress string
}

// FeeMode tracks who owns the shipping fee field.
//
// In FeeAuto the resolver recomputes the fee on every relevant change.
// The moment staff edit the fee directly the draft switches to FeeManual
// and recomputation stops until an explicit reset.
type FeeMode int

const (
	FeeAuto FeeMode = iota
	FeeManual
)

// Draft is the in-memory, not-yet-persisted state of an order being
// created or edited. All reconciler operations take a draft by value and
// return a new one; a draft is never shared between control flows.
type Draft struct {
	CustomerID      string
	Items           []LineItem
	Status          string
	ShippingAddress Address
	ShippingFee     decimal.Decimal
	FeeMode         FeeMode
	TotalAmount     decimal.Decimal
	Notes           string
}

// Subtotal sums priceAtPurchase × quantity over all lines. An empty item
// set is simply zero; the "at least one item" rule belongs to the
// submission boundary, not here.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.PriceAtPurchase.Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return total
}

// cloneItems copies the line slice so operations stay pure.
func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
