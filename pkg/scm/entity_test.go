package scm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/authz"
)

func TestRegistryIsClosed(t *testing.T) {
	all := AllEntities()
	require.Len(t, all, 8)

	_, ok := LookupEntity("users")
	assert.False(t, ok, "accounts are not a generic entity")
	_, ok = LookupEntity("role_permissions")
	assert.False(t, ok)
}

func TestPaymentGovernedByOrders(t *testing.T) {
	payment, ok := LookupEntity(authz.EntityPayment)
	require.True(t, ok)
	assert.Equal(t, authz.EntityOrders, payment.PermissionEntity)

	orders, ok := LookupEntity(authz.EntityOrders)
	require.True(t, ok)
	assert.Equal(t, authz.EntityOrders, orders.PermissionEntity)
}

func TestProfileEntitiesAreSelfOwned(t *testing.T) {
	cases := map[string]auth.Role{
		authz.EntitySupplier:     auth.RoleSupplier,
		authz.EntityManufacturer: auth.RoleManufacturer,
		authz.EntityWarehouse:    auth.RoleWarehouse,
		authz.EntityCustomer:     auth.RoleCustomer,
	}
	for name, role := range cases {
		e, ok := LookupEntity(name)
		require.True(t, ok)
		assert.Equal(t, role, e.SelfRole, name)
		assert.Empty(t, e.Owners, name)
	}
}

func TestDependentEntityOwners(t *testing.T) {
	product, _ := LookupEntity(authz.EntityProduct)
	assert.Equal(t, "supplier_id", product.Owners[auth.RoleSupplier])
	assert.Equal(t, "manufacturer_id", product.Owners[auth.RoleManufacturer])
	assert.ElementsMatch(t, []string{"supplier_id", "manufacturer_id"}, product.OwnerColumns())

	shipment, _ := LookupEntity(authz.EntityShipment)
	assert.Equal(t, "warehouse_id", shipment.Owners[auth.RoleWarehouse])

	orders, _ := LookupEntity(authz.EntityOrders)
	assert.Equal(t, "customer_id", orders.Owners[auth.RoleCustomer])
}

func TestScopeMatchesOwnerColumns(t *testing.T) {
	// The row scope and the ownership stamp must agree on columns, or a
	// creator could write rows it cannot read back.
	for _, e := range AllEntities() {
		for role, col := range e.Owners {
			scopeCol, ok := authz.OwnerColumn(role, e.Name)
			require.True(t, ok, "%s/%s", role, e.Name)
			assert.Equal(t, col, scopeCol, "%s/%s", role, e.Name)
		}
	}
}

func TestColumnNames(t *testing.T) {
	e, _ := LookupEntity(authz.EntityPayment)
	assert.Equal(t, []string{"payment_id", "payment_mode", "status"}, e.ColumnNames())
	assert.True(t, e.HasColumn("status"))
	assert.False(t, e.HasColumn("payment_id"))
	assert.False(t, e.HasColumn("amount"))
}
