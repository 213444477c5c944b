package authz

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/meridianscm/meridian/pkg/httputil"
	"github.com/meridianscm/meridian/pkg/middleware"
)

// Middleware wires the gate into the HTTP layer. It assumes the
// authentication middleware already ran: a request without an identity in
// context is a 401, never a panic.
type Middleware struct {
	gate       *Gate
	logger     *logrus.Logger
	onDecision func(role, entity, action, outcome string)
}

// NewMiddleware creates authorization middleware over a gate
func NewMiddleware(gate *Gate, logger *logrus.Logger) *Middleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Middleware{gate: gate, logger: logger}
}

// WithDecisionHook registers a callback invoked with every gate outcome,
// used for metrics
func (m *Middleware) WithDecisionHook(fn func(role, entity, action, outcome string)) *Middleware {
	m.onDecision = fn
	return m
}

func (m *Middleware) recordDecision(role, entity, action, outcome string) {
	if m.onDecision != nil {
		m.onDecision(role, entity, action, outcome)
	}
}

// RequirePermission gates a handler on (entity, action). Denials are 403,
// permission-store failures are 500 with the cause logged server-side only.
func (m *Middleware) RequirePermission(entityName string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := middleware.GetIdentity(r)
			if !ok {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			if err := m.gate.Authorize(r.Context(), identity, entityName, action); err != nil {
				if errors.Is(err, ErrDenied) {
					m.recordDecision(string(identity.Role), entityName, string(action), "deny")
					httputil.WriteForbidden(w, "permission denied")
					return
				}
				m.logger.WithError(err).WithFields(logrus.Fields{
					"role":   identity.Role,
					"entity": entityName,
					"action": action,
				}).Error("Permission check failed")
				m.recordDecision(string(identity.Role), entityName, string(action), "error")
				httputil.WriteStorageFault(w)
				return
			}

			m.recordDecision(string(identity.Role), entityName, string(action), "allow")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a handler on the admin role
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.GetIdentity(r)
		if !ok {
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}
		if err := m.gate.EnsureAdmin(identity); err != nil {
			httputil.WriteForbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
