package authz

import (
	"context"
	"fmt"

	"github.com/meridianscm/meridian/pkg/auth"
)

// Gate decides whether an identity may perform an action on an entity at
// all. It runs before row scoping and before any storage mutation, so a
// denied request has no partial side effects.
type Gate struct {
	store *Store
}

// NewGate creates a gate over the given permission store
func NewGate(store *Store) *Gate {
	return &Gate{store: store}
}

// Authorize allows or rejects (identity, entity, action).
//
// Admin is allowed unconditionally. For every other role the decision comes
// from the permission record for (role, entity): allow iff the record exists
// and its action flag is set. A missing record is a plain deny. A storage
// failure is returned as a wrapped error distinct from ErrDenied — it must
// surface as a server fault, never as a silent deny.
func (g *Gate) Authorize(ctx context.Context, identity auth.Identity, entityName string, action Action) error {
	if identity.IsAdmin() {
		return nil
	}

	rec, err := g.store.Get(ctx, identity.Role, entityName)
	if err != nil {
		return fmt.Errorf("permission lookup for (%s, %s): %w", identity.Role, entityName, err)
	}
	if rec == nil || !rec.Allows(action) {
		return ErrDenied
	}
	return nil
}

// EnsureAdmin rejects any identity that is not admin
func (g *Gate) EnsureAdmin(identity auth.Identity) error {
	if !identity.IsAdmin() {
		return ErrDenied
	}
	return nil
}
