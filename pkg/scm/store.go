package scm

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/authz"
)

// Row is a single entity row keyed by column name. Values are string, int64,
// float64, or nil after normalization.
type Row map[string]interface{}

// Store serves the generic entity operations. Every read and mutation runs
// through the same scope and ownership rules; there is one policy, queried
// by all five operations.
type Store struct {
	db *sql.DB
}

// NewStore creates an entity store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for report queries
func (s *Store) DB() *sql.DB {
	return s.db
}

// List returns the rows of an entity visible to the identity
func (s *Store) List(ctx context.Context, identity auth.Identity, e *Entity) ([]Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(e.ColumnNames(), ", "), e.Table)
	var args []interface{}
	if filter := authz.ScopeFilter(identity, e.Name); filter != nil {
		query += fmt.Sprintf(" WHERE %s = $1", filter.Column)
		args = append(args, filter.Value)
	}
	query += fmt.Sprintf(" ORDER BY %s", e.IDColumn)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", e.Name, err)
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		targets, assemble := scanTargets(e)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", e.Name, err)
		}
		result = append(result, assemble())
	}
	return result, rows.Err()
}

// Get returns one row by id. The caller's scope applies exactly as on List:
// an id outside scope reads as absent, so probing ids reveals nothing.
func (s *Store) Get(ctx context.Context, identity auth.Identity, e *Entity, id string) (Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		strings.Join(e.ColumnNames(), ", "), e.Table, e.IDColumn)
	args := []interface{}{id}
	if filter := authz.ScopeFilter(identity, e.Name); filter != nil {
		query += fmt.Sprintf(" AND %s = $2", filter.Column)
		args = append(args, filter.Value)
	}

	targets, assemble := scanTargets(e)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(targets...)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", e.Name, id, err)
	}
	return assemble(), nil
}

// Create inserts a new row. For an owner role the owner reference is stamped
// from the identity, overriding whatever the client sent, so a row can never
// be created attributed to someone else. A missing id is generated.
func (s *Store) Create(ctx context.Context, identity auth.Identity, e *Entity, payload Row) (string, error) {
	values, err := normalizePayload(e, payload)
	if err != nil {
		return "", err
	}

	id, err := payloadID(e, payload)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}

	stampOwner(identity, e, values)
	if err := validateOwners(e, values); err != nil {
		return "", err
	}

	columns := []string{e.IDColumn}
	args := []interface{}{id}
	for _, c := range e.Columns {
		v, ok := values[c.Name]
		if !ok {
			continue
		}
		columns = append(columns, c.Name)
		args = append(args, v)
	}

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", e.Name, err)
	}
	return id, nil
}

// Update mutates the given columns of a row after the ownership check. For
// non-admin owner roles the owner reference stays pinned to the identity, so
// an update cannot move a row to another owner.
func (s *Store) Update(ctx context.Context, identity auth.Identity, e *Entity, id string, payload Row) error {
	if err := s.checkOwnership(ctx, identity, e, id); err != nil {
		return err
	}

	values, err := normalizePayload(e, payload)
	if err != nil {
		return err
	}
	delete(values, e.IDColumn)
	stampOwner(identity, e, values)
	if err := validateOwners(e, values); err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: no updatable fields", ErrInvalidInput)
	}

	var assignments []string
	var args []interface{}
	for _, c := range e.Columns {
		v, ok := values[c.Name]
		if !ok {
			continue
		}
		args = append(args, v)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", c.Name, len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		e.Table, strings.Join(assignments, ", "), e.IDColumn, len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", e.Name, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", e.Name, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a row after the ownership check. The check is uniform
// across all dependent entities, not just products.
func (s *Store) Delete(ctx context.Context, identity auth.Identity, e *Entity, id string) error {
	if err := s.checkOwnership(ctx, identity, e, id); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", e.Table, e.IDColumn)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", e.Name, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", e.Name, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateShipmentStatus changes only the status column of a shipment, with
// the same ownership rule as a full shipment update
func (s *Store) UpdateShipmentStatus(ctx context.Context, identity auth.Identity, id, status string) error {
	e := entities[authz.EntityShipment]
	if err := s.checkOwnership(ctx, identity, e, id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET status = $1 WHERE %s = $2", e.Table, e.IDColumn), status, id)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// checkOwnership verifies an identity may mutate a specific row. Profile
// entities compare the row id against the identity's entity id; dependent
// entities look up the stored owner reference. A row owned by someone else
// is a deny, a missing row is not found, and a lookup failure surfaces as a
// storage error.
func (s *Store) checkOwnership(ctx context.Context, identity auth.Identity, e *Entity, id string) error {
	if identity.IsAdmin() || identity.EntityID == "" {
		return nil
	}

	if e.SelfRole != "" && identity.Role == e.SelfRole {
		if id != identity.EntityID {
			return authz.ErrDenied
		}
		return nil
	}

	ownerCol, ok := e.Owners[identity.Role]
	if !ok {
		return nil
	}

	var owner sql.NullString
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", ownerCol, e.Table, e.IDColumn)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed ownership lookup for %s %s: %w", e.Name, id, err)
	}
	if !owner.Valid || owner.String != identity.EntityID {
		return authz.ErrDenied
	}
	return nil
}

// stampOwner pins the owner reference of a dependent entity to the identity
func stampOwner(identity auth.Identity, e *Entity, values Row) {
	if identity.IsAdmin() || identity.EntityID == "" {
		return
	}
	if col, ok := e.Owners[identity.Role]; ok {
		values[col] = identity.EntityID
	}
}

// validateOwners rejects payloads that populate more than one owner
// reference. Exactly one owner is expected per dependent row.
func validateOwners(e *Entity, values Row) error {
	populated := 0
	for _, col := range e.OwnerColumns() {
		if v, ok := values[col]; ok && v != nil && v != "" {
			populated++
		}
	}
	if populated > 1 {
		return fmt.Errorf("%w: more than one owner reference populated", ErrInvalidInput)
	}
	return nil
}

// payloadID extracts the primary key from a payload, requiring a string
func payloadID(e *Entity, payload Row) (string, error) {
	v, ok := payload[e.IDColumn]
	if !ok || v == nil {
		return "", nil
	}
	id, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidInput, e.IDColumn)
	}
	return id, nil
}

// normalizePayload validates a payload against the registry: unknown columns
// are rejected and each value is coerced to the column's canonical type.
func normalizePayload(e *Entity, payload Row) (Row, error) {
	values := make(Row, len(payload))
	for name, v := range payload {
		if name == e.IDColumn {
			continue
		}
		var col *Column
		for i := range e.Columns {
			if e.Columns[i].Name == name {
				col = &e.Columns[i]
				break
			}
		}
		if col == nil {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, name)
		}
		normalized, err := normalizeValue(*col, v)
		if err != nil {
			return nil, err
		}
		values[name] = normalized
	}
	return values, nil
}

// normalizeValue coerces a JSON-decoded value to the column's storage type
func normalizeValue(col Column, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch col.Kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidInput, col.Name)
		}
		return s, nil
	case KindInt:
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, col.Name)
		}
		return int64(f), nil
	case KindReal:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, col.Name)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: unsupported column kind for %s", ErrInvalidInput, col.Name)
}

// scanTargets builds scan destinations for the entity's columns and a
// closure assembling the scanned values into a Row
func scanTargets(e *Entity) ([]interface{}, func() Row) {
	var id sql.NullString
	targets := []interface{}{&id}

	type slot struct {
		col  Column
		text *sql.NullString
		num  *sql.NullInt64
		real *sql.NullFloat64
	}
	slots := make([]slot, 0, len(e.Columns))
	for _, c := range e.Columns {
		sl := slot{col: c}
		switch c.Kind {
		case KindInt:
			sl.num = new(sql.NullInt64)
			targets = append(targets, sl.num)
		case KindReal:
			sl.real = new(sql.NullFloat64)
			targets = append(targets, sl.real)
		default:
			sl.text = new(sql.NullString)
			targets = append(targets, sl.text)
		}
		slots = append(slots, sl)
	}

	assemble := func() Row {
		row := make(Row, len(slots)+1)
		if id.Valid {
			row[e.IDColumn] = id.String
		} else {
			row[e.IDColumn] = nil
		}
		for _, sl := range slots {
			switch {
			case sl.num != nil:
				if sl.num.Valid {
					row[sl.col.Name] = sl.num.Int64
				} else {
					row[sl.col.Name] = nil
				}
			case sl.real != nil:
				if sl.real.Valid {
					row[sl.col.Name] = sl.real.Float64
				} else {
					row[sl.col.Name] = nil
				}
			default:
				if sl.text.Valid {
					row[sl.col.Name] = sl.text.String
				} else {
					row[sl.col.Name] = nil
				}
			}
		}
		return row
	}
	return targets, assemble
}
