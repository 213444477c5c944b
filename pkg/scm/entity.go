package scm

import (
	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/authz"
)

// ColumnKind is the storage type of an entity column
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInt
	KindReal
)

// Column describes one column of an entity table
type Column struct {
	Name string
	Kind ColumnKind
}

// Entity is the metadata for one of the eight domain entities. The set of
// entities is closed: queries are assembled only from these definitions, so
// no table or column name ever comes from request input.
type Entity struct {
	// Name is the route segment and registry key, e.g. "product".
	Name string
	// Table is the physical table name.
	Table string
	// IDColumn is the primary key column.
	IDColumn string
	// PermissionEntity is the permission matrix key governing this entity.
	// Usually equal to Name; payment is governed by orders.
	PermissionEntity string
	// Columns are the non-key columns.
	Columns []Column
	// SelfRole is set for profile entities where the row id itself is the
	// owner reference: a supplier identity may only mutate the supplier
	// row whose id equals its entity id.
	SelfRole auth.Role
	// Owners maps an owner role to the owner-reference column it controls
	// on this entity. Set only for dependent entities.
	Owners map[auth.Role]string
}

// HasColumn reports whether name is a known non-key column of the entity
func (e *Entity) HasColumn(name string) bool {
	for _, c := range e.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the id column followed by the non-key columns
func (e *Entity) ColumnNames() []string {
	names := make([]string, 0, len(e.Columns)+1)
	names = append(names, e.IDColumn)
	for _, c := range e.Columns {
		names = append(names, c.Name)
	}
	return names
}

// OwnerColumns returns the owner-reference columns of a dependent entity
func (e *Entity) OwnerColumns() []string {
	if len(e.Owners) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var cols []string
	for _, role := range auth.AllRoles() {
		col, ok := e.Owners[role]
		if ok && !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	return cols
}

// entities is the registry, keyed by Name. Column shapes follow the
// relational schema: string keys, numeric measures.
var entities = map[string]*Entity{
	authz.EntitySupplier: {
		Name:             authz.EntitySupplier,
		Table:            "supplier",
		IDColumn:         "supplier_id",
		PermissionEntity: authz.EntitySupplier,
		SelfRole:         auth.RoleSupplier,
		Columns: []Column{
			{Name: "supplier_name", Kind: KindText},
			{Name: "phone_number", Kind: KindText},
			{Name: "contact_person", Kind: KindText},
			{Name: "city", Kind: KindText},
			{Name: "postal_code", Kind: KindText},
			{Name: "rating", Kind: KindReal},
		},
	},
	authz.EntityManufacturer: {
		Name:             authz.EntityManufacturer,
		Table:            "manufacturer",
		IDColumn:         "manufacturer_id",
		PermissionEntity: authz.EntityManufacturer,
		SelfRole:         auth.RoleManufacturer,
		Columns: []Column{
			{Name: "manufacturer_name", Kind: KindText},
			{Name: "phone_number", Kind: KindText},
			{Name: "city", Kind: KindText},
			{Name: "postal_code", Kind: KindText},
			{Name: "production_capacity", Kind: KindInt},
			{Name: "license_number", Kind: KindText},
		},
	},
	authz.EntityWarehouse: {
		Name:             authz.EntityWarehouse,
		Table:            "warehouse",
		IDColumn:         "warehouse_id",
		PermissionEntity: authz.EntityWarehouse,
		SelfRole:         auth.RoleWarehouse,
		Columns: []Column{
			{Name: "warehouse_name", Kind: KindText},
			{Name: "city", Kind: KindText},
			{Name: "postal_code", Kind: KindText},
			{Name: "capacity", Kind: KindInt},
			{Name: "current_utilization", Kind: KindInt},
		},
	},
	authz.EntityCustomer: {
		Name:             authz.EntityCustomer,
		Table:            "customer",
		IDColumn:         "customer_id",
		PermissionEntity: authz.EntityCustomer,
		SelfRole:         auth.RoleCustomer,
		Columns: []Column{
			{Name: "customer_name", Kind: KindText},
			{Name: "phone_number", Kind: KindText},
			{Name: "customer_type", Kind: KindText},
			{Name: "city", Kind: KindText},
			{Name: "postal_code", Kind: KindText},
		},
	},
	authz.EntityProduct: {
		Name:             authz.EntityProduct,
		Table:            "product",
		IDColumn:         "product_id",
		PermissionEntity: authz.EntityProduct,
		Columns: []Column{
			{Name: "product_name", Kind: KindText},
			{Name: "product_desc", Kind: KindText},
			{Name: "unit_price", Kind: KindReal},
			{Name: "quantity_available", Kind: KindInt},
			{Name: "category", Kind: KindText},
			{Name: "supplier_id", Kind: KindText},
			{Name: "manufacturer_id", Kind: KindText},
		},
		Owners: map[auth.Role]string{
			auth.RoleSupplier:     "supplier_id",
			auth.RoleManufacturer: "manufacturer_id",
		},
	},
	authz.EntityShipment: {
		Name:             authz.EntityShipment,
		Table:            "shipment",
		IDColumn:         "shipment_id",
		PermissionEntity: authz.EntityShipment,
		Columns: []Column{
			{Name: "carrier_name", Kind: KindText},
			{Name: "transport_mode", Kind: KindText},
			{Name: "shipping_cost", Kind: KindReal},
			{Name: "status", Kind: KindText},
			{Name: "warehouse_id", Kind: KindText},
		},
		Owners: map[auth.Role]string{
			auth.RoleWarehouse: "warehouse_id",
		},
	},
	authz.EntityPayment: {
		Name:             authz.EntityPayment,
		Table:            "payment",
		IDColumn:         "payment_id",
		PermissionEntity: authz.EntityOrders,
		Columns: []Column{
			{Name: "payment_mode", Kind: KindText},
			{Name: "status", Kind: KindText},
		},
	},
	authz.EntityOrders: {
		Name:             authz.EntityOrders,
		Table:            "orders",
		IDColumn:         "order_id",
		PermissionEntity: authz.EntityOrders,
		Columns: []Column{
			{Name: "total_amount", Kind: KindReal},
			{Name: "ordered_item", Kind: KindText},
			{Name: "customer_id", Kind: KindText},
			{Name: "shipment_id", Kind: KindText},
			{Name: "payment_id", Kind: KindText},
		},
		Owners: map[auth.Role]string{
			auth.RoleCustomer: "customer_id",
		},
	},
}

// LookupEntity resolves an entity by registry name
func LookupEntity(name string) (*Entity, bool) {
	e, ok := entities[name]
	return e, ok
}

// AllEntities returns the registry entries in a stable order
func AllEntities() []*Entity {
	names := []string{
		authz.EntitySupplier, authz.EntityManufacturer, authz.EntityWarehouse,
		authz.EntityCustomer, authz.EntityProduct, authz.EntityShipment,
		authz.EntityPayment, authz.EntityOrders,
	}
	out := make([]*Entity, 0, len(names))
	for _, n := range names {
		out = append(out, entities[n])
	}
	return out
}
