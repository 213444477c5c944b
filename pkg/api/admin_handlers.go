package api

import (
	"net/http"

	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/httputil"
)

// ListUsers returns all accounts. Admin only; password hashes never leave
// the user store.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list users")
		httputil.WriteStorageFault(w)
		return
	}
	if users == nil {
		users = []auth.User{}
	}
	httputil.WriteSuccess(w, map[string]interface{}{"users": users})
}
