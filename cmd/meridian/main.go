package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/meridianscm/meridian/pkg/api"
	"github.com/meridianscm/meridian/pkg/auth"
	"github.com/meridianscm/meridian/pkg/authz"
	"github.com/meridianscm/meridian/pkg/config"
	"github.com/meridianscm/meridian/pkg/middleware"
	"github.com/meridianscm/meridian/pkg/observability"
	"github.com/meridianscm/meridian/pkg/scm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	logger.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
		"port":   cfg.Server.Port,
	}).Info("Starting meridian")

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		logger.WithError(err).Fatal("Failed to ping database")
	}
	cancel()

	userStore := auth.NewUserStore(db)
	permStore := authz.NewStore(db)
	entityStore := scm.NewStore(db)

	if err := ensureSchemas(context.Background(), userStore, permStore, entityStore); err != nil {
		logger.WithError(err).Fatal("Failed to ensure schema")
	}
	if err := seedPermissions(context.Background(), cfg, permStore, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed permissions")
	}

	var redisClient *redis.Client
	var limiter *middleware.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.URL,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, login throttling degraded to fail-open")
		}
		limiter = middleware.NewRateLimiter(redisClient, middleware.DefaultLoginRateLimitConfig(), "meridian:login")
		defer redisClient.Close()
	} else {
		logger.Info("Redis not configured, login throttling disabled")
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	gate := authz.NewGate(permStore)

	server := api.NewServer(api.Options{
		Logger:       logger,
		Users:        userStore,
		Tokens:       tokens,
		Permissions:  permStore,
		Gate:         gate,
		Entities:     entityStore,
		Metrics:      metrics,
		LoginLimiter: limiter,
	})

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		auditPermissionMatrix(context.Background(), permStore, metrics, logger)
	}); err != nil {
		logger.WithError(err).Fatal("Failed to schedule permission audit")
	}
	scheduler.Start()
	defer scheduler.Stop()
	auditPermissionMatrix(context.Background(), permStore, metrics, logger)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient))
	observability.RegisterMetricsEndpoint(healthMux, registry)
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)
	group.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("API server shutdown failed")
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Health server shutdown failed")
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
	logger.Info("Stopped")
}

func ensureSchemas(ctx context.Context, users *auth.UserStore, perms *authz.Store, entities *scm.Store) error {
	if err := users.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := perms.EnsureSchema(ctx); err != nil {
		return err
	}
	return entities.EnsureSchema(ctx)
}

// seedPermissions inserts the permission matrix, from a YAML file when
// configured, otherwise the built-in defaults. Existing records are left
// untouched so admin edits survive restarts.
func seedPermissions(ctx context.Context, cfg *config.Config, perms *authz.Store, logger *logrus.Logger) error {
	records := authz.DefaultPermissions()
	if cfg.Auth.PermissionSeedFile != "" {
		loaded, err := authz.LoadSeedFile(cfg.Auth.PermissionSeedFile)
		if err != nil {
			return err
		}
		records = loaded
		logger.WithField("file", cfg.Auth.PermissionSeedFile).Info("Loaded permission seed file")
	}
	return perms.Seed(ctx, records)
}

// auditPermissionMatrix logs (role, entity) pairs missing a permission
// record. A missing record is a plain deny at request time, so gaps are
// policy decisions worth surfacing, not failures.
func auditPermissionMatrix(ctx context.Context, perms *authz.Store, metrics *observability.Metrics, logger *logrus.Logger) {
	records, err := perms.List(ctx)
	if err != nil {
		logger.WithError(err).Error("Permission audit failed")
		return
	}
	metrics.PermissionRecordsTotal.Set(float64(len(records)))

	present := make(map[string]bool, len(records))
	for _, rec := range records {
		present[string(rec.Role)+"/"+rec.EntityName] = true
	}
	for _, role := range auth.AllRoles() {
		if role == auth.RoleAdmin {
			continue
		}
		for _, entity := range authz.PermissionEntities() {
			if !present[string(role)+"/"+entity] {
				logger.WithFields(logrus.Fields{
					"role":   role,
					"entity": entity,
				}).Debug("No permission record, requests will be denied")
			}
		}
	}
}
