package enum

// ── Order status state machine (CHECK constrained in DB) ──
//
// pending -> processing -> shipped -> delivered is the only forward path.
// cancelled is reachable from pending, processing or shipped.
// delivered and cancelled are terminal.

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Shipping fee ownership: auto fees are recomputed whenever the cart or
// destination changes; manual fees were set by staff and stay put until an
// explicit reset.
const (
	FeeModeAuto   = "auto"
	FeeModeManual = "manual"
)

const (
	CustomerStatusActive   = "active"
	CustomerStatusArchived = "archived"
	CustomerStatusDeleted  = "deleted"
)

const (
	UserRoleAdmin = "ADMIN"
	UserRoleStaff = "STAFF"
)

// ── Configurable labels (no DB constraint) ──

const (
	UnitLiter = "Liter"
	UnitKg    = "Kg"
	UnitPiece = "Piece"
)
