package authz

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/httputil"
)

// Handlers exposes the permission matrix over HTTP. Both endpoints are
// admin-only; route registration wraps them with RequireAdmin.
type Handlers struct {
	store  *Store
	logger *logrus.Logger
}

// NewHandlers creates permission matrix handlers
func NewHandlers(store *Store, logger *logrus.Logger) *Handlers {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handlers{store: store, logger: logger}
}

// RegisterRoutes registers the permission endpoints under /api/permissions,
// each wrapped by the given admin guard
func (h *Handlers) RegisterRoutes(router *mux.Router, requireAdmin func(http.Handler) http.Handler) {
	router.Handle("/api/permissions", requireAdmin(http.HandlerFunc(h.ListPermissions))).Methods(http.MethodGet)
	router.Handle("/api/permissions", requireAdmin(http.HandlerFunc(h.UpdatePermission))).Methods(http.MethodPut)
}

// ListPermissions returns the whole permission matrix
func (h *Handlers) ListPermissions(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list permissions")
		httputil.WriteStorageFault(w)
		return
	}
	if records == nil {
		records = []PermissionRecord{}
	}
	httputil.WriteSuccess(w, map[string]interface{}{"permissions": records})
}

// updatePermissionRequest is the body of a permission update
type updatePermissionRequest struct {
	Role       string `json:"role"`
	EntityName string `json:"entity_name"`
	CanView    bool   `json:"can_view"`
	CanEdit    bool   `json:"can_edit"`
	CanDelete  bool   `json:"can_delete"`
}

// UpdatePermission upserts one (role, entity) record. The change is live on
// the next request; there is no cache to invalidate.
func (h *Handlers) UpdatePermission(w http.ResponseWriter, r *http.Request) {
	var req updatePermissionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	role := auth.Role(req.Role)
	if !role.Valid() {
		httputil.WriteBadRequest(w, "unknown role: "+req.Role)
		return
	}
	if role == auth.RoleAdmin {
		httputil.WriteBadRequest(w, "admin permissions are implicit and cannot be edited")
		return
	}
	known := false
	for _, name := range PermissionEntities() {
		if name == req.EntityName {
			known = true
			break
		}
	}
	if !known {
		httputil.WriteBadRequest(w, "unknown entity: "+req.EntityName)
		return
	}

	rec := PermissionRecord{
		Role:       role,
		EntityName: req.EntityName,
		CanView:    req.CanView,
		CanEdit:    req.CanEdit,
		CanDelete:  req.CanDelete,
	}
	if err := h.store.Upsert(r.Context(), rec); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"role":   rec.Role,
			"entity": rec.EntityName,
		}).Error("Failed to update permission")
		httputil.WriteStorageFault(w)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"role":       rec.Role,
		"entity":     rec.EntityName,
		"can_view":   rec.CanView,
		"can_edit":   rec.CanEdit,
		"can_delete": rec.CanDelete,
	}).Info("Permission record updated")
	httputil.WriteSuccess(w, rec)
}
