package authz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianscm/meridian/pkg/auth"
)

func TestDefaultPermissions(t *testing.T) {
	records := DefaultPermissions()
	require.NotEmpty(t, records)

	known := make(map[string]bool)
	for _, name := range PermissionEntities() {
		known[name] = true
	}
	for _, rec := range records {
		assert.True(t, rec.Role.Valid(), "role %q", rec.Role)
		assert.NotEqual(t, auth.RoleAdmin, rec.Role, "admin needs no records")
		assert.True(t, known[rec.EntityName], "entity %q", rec.EntityName)
	}

	// Owner roles can manage what they own.
	byKey := make(map[string]PermissionRecord)
	for _, rec := range records {
		byKey[string(rec.Role)+"/"+rec.EntityName] = rec
	}
	assert.True(t, byKey["supplier/product"].CanEdit)
	assert.True(t, byKey["warehouse/shipment"].CanDelete)
	assert.True(t, byKey["customer/orders"].CanEdit)
	assert.False(t, byKey["customer/orders"].CanDelete)
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "permissions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := writeSeedFile(t, `
permissions:
  - role: supplier
    entity: product
    can_view: true
    can_edit: true
  - role: customer
    entity: orders
    can_view: true
`)
		records, err := LoadSeedFile(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, auth.RoleSupplier, records[0].Role)
		assert.True(t, records[0].CanEdit)
		assert.False(t, records[1].CanEdit)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		path := writeSeedFile(t, `
permissions:
  - role: superuser
    entity: product
    can_view: true
`)
		_, err := LoadSeedFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown role")
	})

	t.Run("unknown entity rejected", func(t *testing.T) {
		path := writeSeedFile(t, `
permissions:
  - role: supplier
    entity: invoices
    can_view: true
`)
		_, err := LoadSeedFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown entity")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
