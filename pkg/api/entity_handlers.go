package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/authz"
	"github.com/meridianscm/meridian/pkg/httputil"
	"github.com/meridianscm/meridian/pkg/middleware"
	"github.com/meridianscm/meridian/pkg/scm"
)

// identity pulls the verified identity out of the request. The permission
// middleware already rejected requests without one, so absence here means a
// wiring mistake; answer 401 rather than panic.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
	}
	return identity, ok
}

// writeEntityError maps store errors onto the response taxonomy. Storage
// faults keep their detail in the server log only.
func (s *Server) writeEntityError(w http.ResponseWriter, entityName, op string, err error) {
	switch {
	case errors.Is(err, authz.ErrDenied):
		httputil.WriteForbidden(w, "you do not own this "+entityName)
	case errors.Is(err, scm.ErrNotFound):
		httputil.WriteNotFound(w, entityName+" not found")
	case errors.Is(err, scm.ErrInvalidInput):
		httputil.WriteBadRequest(w, err.Error())
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"entity":    entityName,
			"operation": op,
		}).Error("Entity operation failed")
		if s.metrics != nil {
			s.metrics.StorageErrorsTotal.WithLabelValues(op).Inc()
		}
		httputil.WriteStorageFault(w)
	}
}

func (s *Server) listHandler(e *scm.Entity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.identity(w, r)
		if !ok {
			return
		}
		rows, err := s.entities.List(r.Context(), identity, e)
		if err != nil {
			s.writeEntityError(w, e.Name, "list", err)
			return
		}
		if rows == nil {
			rows = []scm.Row{}
		}
		httputil.WriteSuccess(w, rows)
	})
}

func (s *Server) getHandler(e *scm.Entity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.identity(w, r)
		if !ok {
			return
		}
		id, ok := httputil.PathVarOrError(w, r, "id")
		if !ok {
			return
		}
		row, err := s.entities.Get(r.Context(), identity, e, id)
		if err != nil {
			s.writeEntityError(w, e.Name, "get", err)
			return
		}
		httputil.WriteSuccess(w, row)
	})
}

func (s *Server) createHandler(e *scm.Entity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.identity(w, r)
		if !ok {
			return
		}
		var payload scm.Row
		if !httputil.ParseJSONOrError(w, r, &payload) {
			return
		}
		id, err := s.entities.Create(r.Context(), identity, e, payload)
		if err != nil {
			s.writeEntityError(w, e.Name, "create", err)
			return
		}
		httputil.WriteCreated(w, map[string]string{
			"message":  e.Name + " created successfully",
			e.IDColumn: id,
		})
	})
}

func (s *Server) updateHandler(e *scm.Entity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.identity(w, r)
		if !ok {
			return
		}
		id, ok := httputil.PathVarOrError(w, r, "id")
		if !ok {
			return
		}
		var payload scm.Row
		if !httputil.ParseJSONOrError(w, r, &payload) {
			return
		}
		if err := s.entities.Update(r.Context(), identity, e, id, payload); err != nil {
			s.writeEntityError(w, e.Name, "update", err)
			return
		}
		httputil.WriteMessage(w, e.Name+" updated successfully")
	})
}

func (s *Server) deleteHandler(e *scm.Entity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := s.identity(w, r)
		if !ok {
			return
		}
		id, ok := httputil.PathVarOrError(w, r, "id")
		if !ok {
			return
		}
		if err := s.entities.Delete(r.Context(), identity, e, id); err != nil {
			s.writeEntityError(w, e.Name, "delete", err)
			return
		}
		httputil.WriteMessage(w, e.Name+" deleted successfully")
	})
}

// UpdateShipmentStatus changes a shipment's status column only
func (s *Server) UpdateShipmentStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	id, ok := httputil.PathVarOrError(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Status, "status") {
		return
	}
	if err := s.entities.UpdateShipmentStatus(r.Context(), identity, id, req.Status); err != nil {
		s.writeEntityError(w, authz.EntityShipment, "update_status", err)
		return
	}
	httputil.WriteMessage(w, "shipment status updated")
}
