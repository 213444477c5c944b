package authz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/meridianscm/meridian/pkg/auth"
)

// DefaultPermissions returns the permission matrix seeded at setup. Each
// owner role can view and edit its own profile entity and manage the
// dependent entity it owns; browse access to related catalogs is view-only.
// Admin carries no records — the gate short-circuits it.
func DefaultPermissions() []PermissionRecord {
	return []PermissionRecord{
		{Role: auth.RoleSupplier, EntityName: EntitySupplier, CanView: true, CanEdit: true},
		{Role: auth.RoleSupplier, EntityName: EntityProduct, CanView: true, CanEdit: true, CanDelete: true},
		{Role: auth.RoleSupplier, EntityName: EntityManufacturer, CanView: true},
		{Role: auth.RoleSupplier, EntityName: EntityWarehouse, CanView: true},
		{Role: auth.RoleSupplier, EntityName: EntityShipment, CanView: true},

		{Role: auth.RoleManufacturer, EntityName: EntityManufacturer, CanView: true, CanEdit: true},
		{Role: auth.RoleManufacturer, EntityName: EntityProduct, CanView: true, CanEdit: true, CanDelete: true},
		{Role: auth.RoleManufacturer, EntityName: EntitySupplier, CanView: true},
		{Role: auth.RoleManufacturer, EntityName: EntityWarehouse, CanView: true},

		{Role: auth.RoleWarehouse, EntityName: EntityWarehouse, CanView: true, CanEdit: true},
		{Role: auth.RoleWarehouse, EntityName: EntityShipment, CanView: true, CanEdit: true, CanDelete: true},
		{Role: auth.RoleWarehouse, EntityName: EntityProduct, CanView: true},

		{Role: auth.RoleCustomer, EntityName: EntityCustomer, CanView: true, CanEdit: true},
		{Role: auth.RoleCustomer, EntityName: EntityOrders, CanView: true, CanEdit: true},
		{Role: auth.RoleCustomer, EntityName: EntityProduct, CanView: true},
	}
}

// seedFile is the on-disk shape of a permission seed file
type seedFile struct {
	Permissions []seedRecord `yaml:"permissions"`
}

type seedRecord struct {
	Role      string `yaml:"role"`
	Entity    string `yaml:"entity"`
	CanView   bool   `yaml:"can_view"`
	CanEdit   bool   `yaml:"can_edit"`
	CanDelete bool   `yaml:"can_delete"`
}

// LoadSeedFile reads a YAML permission matrix, used by deployments that want
// something other than the built-in defaults. Unknown roles or entities are
// rejected so a typo cannot open a silent policy gap.
func LoadSeedFile(path string) ([]PermissionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	known := make(map[string]bool)
	for _, name := range PermissionEntities() {
		known[name] = true
	}

	records := make([]PermissionRecord, 0, len(f.Permissions))
	for i, sr := range f.Permissions {
		role := auth.Role(sr.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("seed entry %d: unknown role %q", i, sr.Role)
		}
		if !known[sr.Entity] {
			return nil, fmt.Errorf("seed entry %d: unknown entity %q", i, sr.Entity)
		}
		records = append(records, PermissionRecord{
			Role:       role,
			EntityName: sr.Entity,
			CanView:    sr.CanView,
			CanEdit:    sr.CanEdit,
			CanDelete:  sr.CanDelete,
		})
	}
	return records, nil
}
