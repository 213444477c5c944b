package api

import (
	"net/http"

	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/authz"
	"github.com/meridianscm/meridian/pkg/httputil"
)

// Register creates an account plus its role profile in one transaction
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var reg auth.Registration
	if !httputil.ParseJSONOrError(w, r, &reg) {
		return
	}
	if !httputil.RequireNonEmpty(w, reg.UserID, "user_id") ||
		!httputil.RequireNonEmpty(w, reg.Username, "username") ||
		!httputil.RequireNonEmpty(w, reg.Password, "password") {
		return
	}
	if !reg.Role.Valid() {
		httputil.WriteBadRequest(w, "unknown role: "+string(reg.Role))
		return
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		s.logger.WithError(err).Error("Failed to hash password")
		httputil.WriteStorageFault(w)
		return
	}

	if err := s.users.Register(r.Context(), reg, hash); err != nil {
		s.logger.WithError(err).WithField("username", reg.Username).Error("Registration failed")
		// Duplicate ids and usernames land here too; the message stays
		// generic to avoid probing registered names.
		httputil.WriteErrorMessage(w, http.StatusInternalServerError,
			"registration failed, ensure the id and username are unique")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": reg.UserID,
		"role":    reg.Role,
	}).Info("Account registered")
	httputil.WriteCreated(w, map[string]string{
		"message": "user and " + string(reg.Role) + " profile created successfully",
	})
}

// loginRequest is the body of a login attempt
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a signed token. Unknown usernames
// and wrong passwords answer identically.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, hash, err := s.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		s.logger.WithError(err).Error("Login lookup failed")
		httputil.WriteStorageFault(w)
		return
	}
	if user == nil || !auth.CheckPassword(hash, req.Password) {
		s.recordLogin("failure")
		httputil.WriteUnauthorized(w, "invalid credentials")
		return
	}

	identity := auth.Identity{
		UserID:   user.UserID,
		Role:     user.Role,
		EntityID: user.LinkedEntityID,
	}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		s.logger.WithError(err).Error("Token issuance failed")
		httputil.WriteStorageFault(w)
		return
	}

	s.recordLogin("success")
	httputil.WriteSuccess(w, map[string]interface{}{
		"token": token,
		"role":  user.Role,
	})
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	}
}

// Me returns the caller's account and the permission records of its role
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteNotFound(w, "user not found")
		return
	}

	perms, err := s.permissions.ListForRole(r.Context(), identity.Role)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list role permissions")
		httputil.WriteStorageFault(w)
		return
	}
	if perms == nil {
		perms = []authz.PermissionRecord{}
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"user":        user,
		"permissions": perms,
	})
}
