package authz

import "github.com/meridianscm/meridian/pkg/auth"

// Filter is a row predicate: rows where Column equals Value. A nil *Filter
// means no restriction.
type Filter struct {
	Column string
	Value  string
}

// ownerColumns maps (role, table) to the column that must equal the
// identity's entity id. Pairs not listed here are unrestricted: roles see
// the full table. That loose default is deliberate — suppliers may browse
// warehouses, customers may browse products, and so on.
var ownerColumns = map[auth.Role]map[string]string{
	auth.RoleSupplier: {
		EntitySupplier: "supplier_id",
		EntityProduct:  "supplier_id",
	},
	auth.RoleManufacturer: {
		EntityManufacturer: "manufacturer_id",
		EntityProduct:      "manufacturer_id",
	},
	auth.RoleWarehouse: {
		EntityWarehouse: "warehouse_id",
		EntityShipment:  "warehouse_id",
	},
	auth.RoleCustomer: {
		EntityCustomer: "customer_id",
		EntityOrders:   "customer_id",
	},
}

// ScopeFilter computes the row predicate for an identity reading or mutating
// a table. It is a pure function of (role, table): admin and identities
// without an entity id are unrestricted, owner roles are pinned to rows whose
// owner column matches their entity id.
//
// Every operation that touches rows — list, get, update, delete — must apply
// the same filter; out-of-scope ids read as absent, not as forbidden.
func ScopeFilter(identity auth.Identity, table string) *Filter {
	if identity.IsAdmin() || identity.EntityID == "" {
		return nil
	}
	column, ok := ownerColumns[identity.Role][table]
	if !ok {
		return nil
	}
	return &Filter{Column: column, Value: identity.EntityID}
}

// OwnerColumn returns the owner-reference column a role controls on a table,
// if any. Used by create to stamp ownership and by update to keep it sticky.
func OwnerColumn(role auth.Role, table string) (string, bool) {
	column, ok := ownerColumns[role][table]
	return column, ok
}
