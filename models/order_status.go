package models

// OrderStatus represents the fulfillment state of a QR order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusPrinted   OrderStatus = "impreso"
	OrderStatusShipped   OrderStatus = "enviado"
	OrderStatusCancelled OrderStatus = "cancelado"
)

// IsValid reports whether s is one of the known status values.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPrinted, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to target is allowed.
// The pipeline only moves forward (pendiente -> impreso -> enviado);
// cancelado is reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !target.IsValid() {
		return false
	}
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPrinted || target == OrderStatusCancelled
	case OrderStatusPrinted:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	default:
		return false
	}
}

// AllowsAddressEdit reports whether the owner may still change the
// shipping address. The address is locked once the order leaves
// pendiente, including on cancellation.
func (s OrderStatus) AllowsAddressEdit() bool {
	return s == OrderStatusPending
}
