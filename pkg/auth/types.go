package auth

import "time"

// Role represents an account role in the system
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleSupplier     Role = "supplier"
	RoleManufacturer Role = "manufacturer"
	RoleWarehouse    Role = "warehouse"
	RoleCustomer     Role = "customer"
)

// AllRoles returns the closed set of known roles
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleSupplier, RoleManufacturer, RoleWarehouse, RoleCustomer}
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupplier, RoleManufacturer, RoleWarehouse, RoleCustomer:
		return true
	}
	return false
}

// Identity is the verified (user, role, entity) triple attached to every
// authenticated request. EntityID references the row in the role's profile
// table (a supplier identity carries that supplier's row key); it is empty
// for admin. Identifiers are canonical strings everywhere — they are never
// compared as numbers.
type Identity struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
	EntityID string `json:"entity_id,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// User represents a stored account
type User struct {
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	Role           Role      `json:"role"`
	LinkedEntityID string    `json:"linked_entity_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Registration carries the fields accepted by the register endpoint: the
// account triple plus the union of the role-profile columns. Unused fields
// are ignored for roles that do not have them.
type Registration struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`

	Name          string `json:"name"`
	Phone         string `json:"phone"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	ContactPerson string `json:"contact_person"`

	Type               string  `json:"type"`
	Rating             float64 `json:"rating"`
	Capacity           int     `json:"capacity"`
	ProductionCapacity int     `json:"production_capacity"`
	LicenseNumber      string  `json:"license_number"`
}
