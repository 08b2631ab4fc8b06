package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pestaway/backoffice/internal/money"
	"github.com/pestaway/backoffice/internal/rates"
)

// Reconciler owns the order-total invariant: after every operation,
// totalAmount == subtotal(items) + shippingFee. Operations are pure state
// transitions over a Draft; none of them can fail. Bad input degrades
// (clamping, no-ops, fallback fees) instead of erroring, because the
// draft must stay usable while a user is mid-edit.
type Reconciler struct {
	catalog Catalog
	table   *rates.Table
}

// NewReconciler binds a catalog snapshot and the shipping rate table.
func NewReconciler(catalog Catalog, table *rates.Table) *Reconciler {
	return &Reconciler{catalog: catalog, table: table}
}

// NewDraft returns an empty draft with the fee in auto mode and the
// invariant already established (subtotal 0 + default fee).
func (r *Reconciler) NewDraft() Draft {
	return r.reconcile(Draft{FeeMode: FeeAuto})
}

// AddItem appends a line for the product, or increments the quantity when
// a line for it already exists. Prices are fixed at first-add time; an
// increment never re-reads the catalog. Unknown products are a no-op.
func (r *Reconciler) AddItem(d Draft, productID uuid.UUID) Draft {
	p, ok := r.catalog.Product(productID)
	if !ok {
		return d
	}

	items := cloneItems(d.Items)
	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, LineItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        1,
			OriginalPrice:   p.Price,
			PriceAtPurchase: EffectivePrice(p),
			WasOnSale:       saleApplies(p),
		})
	}

	d.Items = items
	return r.reconcile(d)
}

// RemoveItem drops the line for the product entirely. Quantity edits never
// remove a line; removal is always this explicit action.
func (r *Reconciler) RemoveItem(d Draft, productID uuid.UUID) Draft {
	items := make([]LineItem, 0, len(d.Items))
	for _, it := range d.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	d.Items = items
	return r.reconcile(d)
}

// SetQuantity sets a line's quantity, clamped to a minimum of 1. Zero or
// negative input keeps the line at quantity 1 rather than removing it.
func (r *Reconciler) SetQuantity(d Draft, productID uuid.UUID, quantity int32) Draft {
	if quantity < 1 {
		quantity = 1
	}
	items := cloneItems(d.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	d.Items = items
	return r.reconcile(d)
}

// SubstituteProduct replaces the product on an existing line, re-deriving
// all price snapshots from the new product's current catalog state. This
// is the one path where a line's price is re-evaluated after first add,
// because the user explicitly chose a different product for that line.
// Quantity carries over.
func (r *Reconciler) SubstituteProduct(d Draft, index int, newProductID uuid.UUID) Draft {
	if index < 0 || index >= len(d.Items) {
		return d
	}
	p, ok := r.catalog.Product(newProductID)
	if !ok {
		return d
	}

	items := cloneItems(d.Items)
	items[index] = LineItem{
		ProductID:       p.ID,
		ProductName:     p.Name,
		Quantity:        items[index].Quantity,
		OriginalPrice:   p.Price,
		PriceAtPurchase: EffectivePrice(p),
		WasOnSale:       saleApplies(p),
	}
	d.Items = items
	return r.reconcile(d)
}

// SetItemPrice overrides a line's unit price directly (staff edit in the
// order form). Negative input is floored to zero.
func (r *Reconciler) SetItemPrice(d Draft, index int, price decimal.Decimal) Draft {
	if index < 0 || index >= len(d.Items) {
		return d
	}
	items := cloneItems(d.Items)
	items[index].PriceAtPurchase = money.ClampNonNegative(price)
	d.Items = items
	return r.reconcile(d)
}

// SetShippingFee records a manual fee override, floored to zero, and
// switches the draft to FeeManual so later recomputation triggers leave
// the override alone.
func (r *Reconciler) SetShippingFee(d Draft, fee decimal.Decimal) Draft {
	d.ShippingFee = money.ClampNonNegative(fee)
	d.FeeMode = FeeManual
	return r.reconcile(d)
}

// ResetShippingFee returns the fee to auto mode; the next reconcile
// recomputes it from the current cart and destination.
func (r *Reconciler) ResetShippingFee(d Draft) Draft {
	d.FeeMode = FeeAuto
	return r.reconcile(d)
}

// SetDestination updates the shipping destination. A governorate change
// resets the city in the same transition: a city from the old governorate
// is never valid for the new one.
func (r *Reconciler) SetDestination(d Draft, governorate, city string) Draft {
	if governorate != d.ShippingAddress.Governorate {
		d.ShippingAddress.Governorate = governorate
		d.ShippingAddress.City = ""
	} else {
		d.ShippingAddress.City = city
	}
	return r.reconcile(d)
}

// SetStatus records a status choice. The edit form offers a free-choice
// selector, so no transition validation happens here; the state machine
// is enforced at the service boundary for the single-step status endpoint.
func (r *Reconciler) SetStatus(d Draft, status string) Draft {
	d.Status = status
	return r.reconcile(d)
}

// ResolveFee computes the suggested shipping fee for a cart and
// destination, evaluated in this order:
//
//  1. any cart product flagged free-delivery → 0, unconditionally
//  2. exact city match in the rate table → that city's fee
//  3. otherwise → the default fee
func (r *Reconciler) ResolveFee(items []LineItem, dest Address) decimal.Decimal {
	for _, it := range items {
		if p, ok := r.catalog.Product(it.ProductID); ok && p.FreeDelivery {
			return decimal.Zero
		}
	}
	return r.table.Fee(dest.Governorate, dest.City)
}

// reconcile is the final step of every operation: refresh the suggested
// fee when in auto mode, then re-derive the total. No operation may
// return a draft with a stale totalAmount.
func (r *Reconciler) reconcile(d Draft) Draft {
	if d.FeeMode == FeeAuto {
		d.ShippingFee = r.ResolveFee(d.Items, d.ShippingAddress)
	}
	d.TotalAmount = Subtotal(d.Items).Add(d.ShippingFee)
	return d
}
