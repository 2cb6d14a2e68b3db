package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Karama2000/kara-app-sub001/api/swagger"
	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/handler"
	"github.com/Karama2000/kara-app-sub001/internal/middleware"
	"github.com/Karama2000/kara-app-sub001/internal/repository"
	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/cache"
	"github.com/Karama2000/kara-app-sub001/pkg/config"
	"github.com/Karama2000/kara-app-sub001/pkg/database"
	"github.com/Karama2000/kara-app-sub001/pkg/logger"
	corsmiddleware "github.com/Karama2000/kara-app-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/Karama2000/kara-app-sub001/pkg/middleware/requestid"
	"github.com/Karama2000/kara-app-sub001/pkg/validation"
)

// @title KaraScolaire Admin Gateway
// @version 1.0.0
// @description Session, screen state and dashboards of the KaraScolaire administration.
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Pinger{}
	metrics := service.NewMetricsService()
	validate := validation.New()
	bus := session.NewBus()
	bus.Subscribe(func(e session.Event) { metrics.RecordSessionEnded(e.Reason) })

	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Store == config.SessionStoreRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("redis unavailable", zap.Error(err))
		}
		repo := repository.NewSessionRepository(client, cfg.Session.KeyPrefix, logr)
		defer repo.Close() //nolint:errcheck
		store = repo
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	manager := session.NewManager(store, bus, validate.Engine(), logr, session.ManagerConfig{TTL: cfg.Session.TTL})

	var auditStore *repository.AuditRepository
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("audit database unavailable", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		auditStore = repository.NewAuditRepository(db)
		checks["postgres"] = db.PingContext
	}
	auditSvc := newAuditService(auditStore, bus, metrics, logr, cfg.Audit)
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	api := backend.New(cfg.Backend,
		backend.WithUnauthorizedHook(manager.HandleUnauthorized),
		backend.WithObserver(metrics),
		backend.WithLogger(logr),
	)

	workspaces := service.NewWorkspaceService(api, validate, bus, metrics, logr)
	dashboards := service.NewDashboardService(api, bus, metrics, logr, service.DashboardServiceConfig{PollInterval: cfg.Dashboard.PollInterval})
	defer dashboards.Close()

	handlers := handler.Handlers{
		Session:      handler.NewSessionHandler(manager, cfg.Session, cfg.Env == config.EnvProduction),
		Workspace:    handler.NewWorkspaceHandler(workspaces),
		User:         handler.NewUserHandler(service.NewUserService(api, validate, workspaces, logr)),
		Class:        handler.NewClassHandler(service.NewClassService(api, validate, workspaces, logr)),
		Curriculum:   handler.NewCurriculumHandler(workspaces),
		Notification: handler.NewNotificationHandler(service.NewNotificationService(api, workspaces, logr)),
		Parent:       handler.NewParentHandler(service.NewParentService(api, logr)),
		Dashboard:    handler.NewDashboardHandler(dashboards),
		Audit:        handler.NewAuditHandler(auditSvc),
	}
	health := handler.NewHealthHandler(metrics, checks, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.Session.HeaderName))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := r.Group(cfg.APIPrefix, middleware.BodyLimit(cfg.Backend.MaxUploadBytes))
	handler.RegisterRoutes(apiGroup, handlers, handler.Guards{
		Session: middleware.Session(manager, cfg.Session),
		Audit: func(action, resource string) gin.HandlerFunc {
			return middleware.Audit(auditSvc, action, resource)
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// newAuditService keeps a nil repository from becoming a non-nil interface.
func newAuditService(repo *repository.AuditRepository, bus *session.Bus, metrics *service.MetricsService, logr *zap.Logger, cfg config.AuditConfig) *service.AuditService {
	svcCfg := service.AuditServiceConfig{Workers: cfg.Workers, MaxRetries: cfg.MaxRetries, RetryDelay: cfg.RetryDelay}
	if repo == nil {
		return service.NewAuditService(nil, bus, metrics, logr, svcCfg)
	}
	return service.NewAuditService(repo, bus, metrics, logr, svcCfg)
}
