package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UserStore handles account persistence
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// EnsureSchema creates the users table if it does not exist
func (s *UserStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			linked_entity_id TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure users table: %w", err)
	}
	return nil
}

// storedUser is User plus the password hash, which never leaves this package
type storedUser struct {
	User
	PasswordHash string
}

// Register creates the account row and exactly one role-profile row in a
// single transaction. Either both inserts commit or neither does; a duplicate
// profile key rolls back the account row too.
func (s *UserStore) Register(ctx context.Context, reg Registration, passwordHash string) error {
	if !reg.Role.Valid() {
		return fmt.Errorf("unknown role: %s", reg.Role)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin registration transaction: %w", err)
	}
	defer tx.Rollback()

	// The account links to its own profile row: linked_entity_id = user_id.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (user_id, username, password_hash, role, linked_entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, reg.UserID, reg.Username, passwordHash, reg.Role, reg.UserID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := insertProfile(ctx, tx, reg); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}
	return nil
}

// insertProfile inserts the role-specific profile row sharing the account id.
// Admin accounts have no profile table.
func insertProfile(ctx context.Context, tx *sql.Tx, reg Registration) error {
	switch reg.Role {
	case RoleSupplier:
		rating := reg.Rating
		if rating == 0 {
			rating = 5.0
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO supplier (supplier_id, supplier_name, phone_number, contact_person, city, postal_code, rating)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, reg.UserID, reg.Name, reg.Phone, reg.ContactPerson, reg.City, reg.PostalCode, rating)
		if err != nil {
			return fmt.Errorf("failed to insert supplier profile: %w", err)
		}
	case RoleManufacturer:
		license := reg.LicenseNumber
		if license == "" {
			license = "PENDING"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO manufacturer (manufacturer_id, manufacturer_name, phone_number, city, postal_code, production_capacity, license_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, reg.UserID, reg.Name, reg.Phone, reg.City, reg.PostalCode, reg.ProductionCapacity, license)
		if err != nil {
			return fmt.Errorf("failed to insert manufacturer profile: %w", err)
		}
	case RoleWarehouse:
		capacity := reg.Capacity
		if capacity == 0 {
			capacity = 1000
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO warehouse (warehouse_id, warehouse_name, city, postal_code, capacity, current_utilization)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, reg.UserID, reg.Name, reg.City, reg.PostalCode, capacity, 0)
		if err != nil {
			return fmt.Errorf("failed to insert warehouse profile: %w", err)
		}
	case RoleCustomer:
		custType := reg.Type
		if custType == "" {
			custType = "Retail"
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO customer (customer_id, customer_name, phone_number, customer_type, city, postal_code)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, reg.UserID, reg.Name, reg.Phone, custType, reg.City, reg.PostalCode)
		if err != nil {
			return fmt.Errorf("failed to insert customer profile: %w", err)
		}
	case RoleAdmin:
		// no profile table
	}
	return nil
}

// GetByUsername retrieves an account and its password hash for login.
// Returns (nil, nil) when the username is unknown so callers can answer
// with the same message as a bad password.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*User, string, error) {
	var u storedUser
	var linked sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, password_hash, role, linked_entity_id, created_at
		FROM users WHERE username = $1
	`, username).Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.Role, &linked, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if linked.Valid {
		u.LinkedEntityID = linked.String
	}
	return &u.User, u.PasswordHash, nil
}

// GetByID retrieves an account by its primary key
func (s *UserStore) GetByID(ctx context.Context, userID string) (*User, error) {
	var u User
	var linked sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, role, linked_entity_id, created_at
		FROM users WHERE user_id = $1
	`, userID).Scan(&u.UserID, &u.Username, &u.Role, &linked, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if linked.Valid {
		u.LinkedEntityID = linked.String
	}
	return &u, nil
}

// ListUsers returns all accounts without password hashes
func (s *UserStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, username, role, linked_entity_id, created_at
		FROM users ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var linked sql.NullString
		if err := rows.Scan(&u.UserID, &u.Username, &u.Role, &linked, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if linked.Valid {
			u.LinkedEntityID = linked.String
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
