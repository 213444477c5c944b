package authz

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meridianscm/meridian/pkg/auth"
)

// Store handles permission matrix persistence. Lookups are point reads on
// every request; there is intentionally no cache in front of this table, so
// an admin toggling a flag is effective on the very next request.
type Store struct {
	db *sql.DB
}

// NewStore creates a new permission store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the role_permissions table if it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS role_permissions (
			role TEXT NOT NULL,
			entity_name TEXT NOT NULL,
			can_view BOOLEAN NOT NULL DEFAULT FALSE,
			can_edit BOOLEAN NOT NULL DEFAULT FALSE,
			can_delete BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (role, entity_name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure role_permissions table: %w", err)
	}
	return nil
}

// Get retrieves the permission record for (role, entity). A missing record
// is not an error: it returns (nil, nil) and the gate treats it as deny.
func (s *Store) Get(ctx context.Context, role auth.Role, entityName string) (*PermissionRecord, error) {
	var rec PermissionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT role, entity_name, can_view, can_edit, can_delete
		FROM role_permissions
		WHERE role = $1 AND entity_name = $2
	`, role, entityName).Scan(&rec.Role, &rec.EntityName, &rec.CanView, &rec.CanEdit, &rec.CanDelete)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get permission record: %w", err)
	}
	return &rec, nil
}

// List returns the whole permission matrix
func (s *Store) List(ctx context.Context) ([]PermissionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, entity_name, can_view, can_edit, can_delete
		FROM role_permissions
		ORDER BY role, entity_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission records: %w", err)
	}
	defer rows.Close()

	var records []PermissionRecord
	for rows.Next() {
		var rec PermissionRecord
		if err := rows.Scan(&rec.Role, &rec.EntityName, &rec.CanView, &rec.CanEdit, &rec.CanDelete); err != nil {
			return nil, fmt.Errorf("failed to scan permission record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListForRole returns the permission records of a single role
func (s *Store) ListForRole(ctx context.Context, role auth.Role) ([]PermissionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, entity_name, can_view, can_edit, can_delete
		FROM role_permissions
		WHERE role = $1
		ORDER BY entity_name
	`, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission records: %w", err)
	}
	defer rows.Close()

	var records []PermissionRecord
	for rows.Next() {
		var rec PermissionRecord
		if err := rows.Scan(&rec.Role, &rec.EntityName, &rec.CanView, &rec.CanEdit, &rec.CanDelete); err != nil {
			return nil, fmt.Errorf("failed to scan permission record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert writes a permission record, replacing the flags of an existing
// (role, entity_name) pair
func (s *Store) Upsert(ctx context.Context, rec PermissionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO role_permissions (role, entity_name, can_view, can_edit, can_delete)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (role, entity_name)
		DO UPDATE SET can_view = EXCLUDED.can_view, can_edit = EXCLUDED.can_edit, can_delete = EXCLUDED.can_delete
	`, rec.Role, rec.EntityName, rec.CanView, rec.CanEdit, rec.CanDelete)
	if err != nil {
		return fmt.Errorf("failed to upsert permission record: %w", err)
	}
	return nil
}

// Seed inserts records that are not present yet, leaving existing rows
// untouched so admin edits survive restarts
func (s *Store) Seed(ctx context.Context, records []PermissionRecord) error {
	for _, rec := range records {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO role_permissions (role, entity_name, can_view, can_edit, can_delete)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (role, entity_name) DO NOTHING
		`, rec.Role, rec.EntityName, rec.CanView, rec.CanEdit, rec.CanDelete)
		if err != nil {
			return fmt.Errorf("failed to seed permission record (%s, %s): %w", rec.Role, rec.EntityName, err)
		}
	}
	return nil
}
