package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianscm/meridian/pkg/auth"
)

func TestScopeFilter(t *testing.T) {
	t.Run("admin is unrestricted on every table", func(t *testing.T) {
		admin := auth.Identity{UserID: "a1", Role: auth.RoleAdmin}
		for _, table := range PermissionEntities() {
			assert.Nil(t, ScopeFilter(admin, table))
		}
	})

	t.Run("supplier pinned to own rows", func(t *testing.T) {
		supplier := auth.Identity{UserID: "u1", Role: auth.RoleSupplier, EntityID: "S1"}

		f := ScopeFilter(supplier, EntitySupplier)
		require.NotNil(t, f)
		assert.Equal(t, "supplier_id", f.Column)
		assert.Equal(t, "S1", f.Value)

		f = ScopeFilter(supplier, EntityProduct)
		require.NotNil(t, f)
		assert.Equal(t, "supplier_id", f.Column)
		assert.Equal(t, "S1", f.Value)
	})

	t.Run("unlisted pairs are unrestricted", func(t *testing.T) {
		supplier := auth.Identity{UserID: "u1", Role: auth.RoleSupplier, EntityID: "S1"}
		assert.Nil(t, ScopeFilter(supplier, EntityWarehouse))
		assert.Nil(t, ScopeFilter(supplier, EntityShipment))

		customer := auth.Identity{UserID: "u2", Role: auth.RoleCustomer, EntityID: "C1"}
		assert.Nil(t, ScopeFilter(customer, EntityProduct))
	})

	t.Run("warehouse scoped to own shipments", func(t *testing.T) {
		wh := auth.Identity{UserID: "u3", Role: auth.RoleWarehouse, EntityID: "W1"}
		f := ScopeFilter(wh, EntityShipment)
		require.NotNil(t, f)
		assert.Equal(t, "warehouse_id", f.Column)
		assert.Equal(t, "W1", f.Value)
	})

	t.Run("customer scoped to own orders", func(t *testing.T) {
		c := auth.Identity{UserID: "u4", Role: auth.RoleCustomer, EntityID: "C7"}
		f := ScopeFilter(c, EntityOrders)
		require.NotNil(t, f)
		assert.Equal(t, "customer_id", f.Column)
		assert.Equal(t, "C7", f.Value)
	})

	t.Run("missing entity id means no filter", func(t *testing.T) {
		supplier := auth.Identity{UserID: "u5", Role: auth.RoleSupplier}
		assert.Nil(t, ScopeFilter(supplier, EntitySupplier))
	})
}

func TestOwnerColumn(t *testing.T) {
	col, ok := OwnerColumn(auth.RoleManufacturer, EntityProduct)
	require.True(t, ok)
	assert.Equal(t, "manufacturer_id", col)

	_, ok = OwnerColumn(auth.RoleSupplier, EntityOrders)
	assert.False(t, ok)

	_, ok = OwnerColumn(auth.RoleAdmin, EntityProduct)
	assert.False(t, ok)
}
