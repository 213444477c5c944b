package authz

import (
	"errors"

	"github.com/meridianscm/meridian/pkg/auth"
)

// Action represents an action gated by the permission matrix
type Action string

const (
	ActionView   Action = "can_view"
	ActionEdit   Action = "can_edit"
	ActionDelete Action = "can_delete"
)

// Permission entity names. These are the keys of the permission matrix; they
// are close to, but not the same thing as, physical table names (payment is
// governed by the orders permission entity — see the scm registry).
const (
	EntitySupplier     = "supplier"
	EntityManufacturer = "manufacturer"
	EntityWarehouse    = "warehouse"
	EntityCustomer     = "customer"
	EntityProduct      = "product"
	EntityShipment     = "shipment"
	EntityPayment      = "payment"
	EntityOrders       = "orders"
)

// PermissionEntities returns the entity names that carry permission records
func PermissionEntities() []string {
	return []string{
		EntitySupplier, EntityManufacturer, EntityWarehouse, EntityCustomer,
		EntityProduct, EntityShipment, EntityOrders,
	}
}

// ErrDenied is returned when an identity lacks permission for an action or
// does not own the target row. It is terminal for the request and maps to
// HTTP 403.
var ErrDenied = errors.New("permission denied")

// PermissionRecord is one row of the permission matrix, unique per
// (role, entity_name). Mutated only through the admin endpoint; read on
// every authorization check so admin changes take effect immediately.
type PermissionRecord struct {
	Role       auth.Role `json:"role"`
	EntityName string    `json:"entity_name"`
	CanView    bool      `json:"can_view"`
	CanEdit    bool      `json:"can_edit"`
	CanDelete  bool      `json:"can_delete"`
}

// Allows reports whether the record grants the given action
func (p PermissionRecord) Allows(action Action) bool {
	switch action {
	case ActionView:
		return p.CanView
	case ActionEdit:
		return p.CanEdit
	case ActionDelete:
		return p.CanDelete
	}
	return false
}
