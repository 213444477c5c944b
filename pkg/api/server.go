package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/authz"
	"github.com/meridianscm/meridian/pkg/middleware"
	"github.com/meridianscm/meridian/pkg/observability"
	"github.com/meridianscm/meridian/pkg/scm"
)

// Server is the HTTP API server
type Server struct {
	router *mux.Router
	logger *logrus.Logger

	users       *auth.UserStore
	tokens      *auth.TokenManager
	permissions *authz.Store
	entities    *scm.Store
	metrics     *observability.Metrics

	authMW       *middleware.AuthMiddleware
	authzMW      *authz.Middleware
	loginLimiter *middleware.RateLimiter
}

// Options carries the server's collaborators. Metrics and LoginLimiter are
// optional.
type Options struct {
	Logger       *logrus.Logger
	Users        *auth.UserStore
	Tokens       *auth.TokenManager
	Permissions  *authz.Store
	Gate         *authz.Gate
	Entities     *scm.Store
	Metrics      *observability.Metrics
	LoginLimiter *middleware.RateLimiter
}

// NewServer creates the API server and registers all routes
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		router:       mux.NewRouter(),
		logger:       logger,
		users:        opts.Users,
		tokens:       opts.Tokens,
		permissions:  opts.Permissions,
		entities:     opts.Entities,
		metrics:      opts.Metrics,
		authMW:       middleware.NewAuthMiddleware(opts.Tokens),
		authzMW:      authz.NewMiddleware(opts.Gate, logger),
		loginLimiter: opts.LoginLimiter,
	}

	if s.metrics != nil {
		s.authzMW.WithDecisionHook(func(role, entity, action, outcome string) {
			s.metrics.AuthDecisionsTotal.WithLabelValues(role, entity, action, outcome).Inc()
		})
	}

	s.setupRoutes()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	var h http.Handler = s.router
	if s.metrics != nil {
		h = observability.HTTPMetricsMiddleware(s.metrics)(h)
	}
	return observability.RequestIDMiddleware(h)
}

func (s *Server) setupRoutes() {
	// Public endpoints
	s.router.HandleFunc("/api/register", s.Register).Methods(http.MethodPost)
	login := http.HandlerFunc(s.Login)
	s.router.Handle("/api/login", s.loginLimiter.Handler(login)).Methods(http.MethodPost)

	// Everything below requires a verified credential
	authed := s.router.NewRoute().Subrouter()
	authed.Use(s.authMW.Handler)

	authed.HandleFunc("/api/auth/me", s.Me).Methods(http.MethodGet)

	s.registerEntityRoutes(authed)
	s.registerReportRoutes(authed)

	// Admin surface
	authed.Handle("/api/users", s.authzMW.RequireAdmin(http.HandlerFunc(s.ListUsers))).Methods(http.MethodGet)
	authz.NewHandlers(s.permissions, s.logger).RegisterRoutes(authed, s.authzMW.RequireAdmin)
}

// registerEntityRoutes registers the five generic operations for every
// entity in the registry, each behind the permission gate for the entity's
// governing permission key
func (s *Server) registerEntityRoutes(router *mux.Router) {
	for _, e := range scm.AllEntities() {
		e := e
		base := "/api/" + entityPath(e)
		item := base + "/{id}"

		view := s.authzMW.RequirePermission(e.PermissionEntity, authz.ActionView)
		edit := s.authzMW.RequirePermission(e.PermissionEntity, authz.ActionEdit)
		del := s.authzMW.RequirePermission(e.PermissionEntity, authz.ActionDelete)

		router.Handle(base, view(s.listHandler(e))).Methods(http.MethodGet)
		router.Handle(item, view(s.getHandler(e))).Methods(http.MethodGet)
		router.Handle(base, edit(s.createHandler(e))).Methods(http.MethodPost)
		router.Handle(item, edit(s.updateHandler(e))).Methods(http.MethodPut)
		router.Handle(item, del(s.deleteHandler(e))).Methods(http.MethodDelete)
	}

	// Dedicated status transition for shipments
	statusGuard := s.authzMW.RequirePermission(authz.EntityShipment, authz.ActionEdit)
	s.routerHandleShipmentStatus(router, statusGuard)
}

func (s *Server) routerHandleShipmentStatus(router *mux.Router, guard func(http.Handler) http.Handler) {
	router.Handle("/api/shipments/{id}/status", guard(http.HandlerFunc(s.UpdateShipmentStatus))).Methods(http.MethodPut)
}

// entityPath returns the route segment for an entity
func entityPath(e *scm.Entity) string {
	if e.Name == authz.EntityOrders {
		return e.Name
	}
	return e.Name + "s"
}
