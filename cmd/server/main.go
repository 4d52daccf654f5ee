package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apprecon "github.com/packhouse/backend/internal/application/reconciliation"
	"github.com/packhouse/backend/internal/domain/reconciliation"
	"github.com/packhouse/backend/internal/infrastructure/config"
	"github.com/packhouse/backend/internal/infrastructure/lock"
	"github.com/packhouse/backend/internal/infrastructure/logger"
	"github.com/packhouse/backend/internal/infrastructure/persistence"
	"github.com/packhouse/backend/internal/infrastructure/persistence/tenant"
	"github.com/packhouse/backend/internal/infrastructure/scheduler"
	"github.com/packhouse/backend/internal/interfaces/http/handler"
	"github.com/packhouse/backend/internal/interfaces/http/middleware"
	"github.com/packhouse/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting packhouse reconciliation backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Per-tenant run lock: Redis-backed when available, otherwise in-process
	var runLocker apprecon.RunLocker
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = rdb.Close()
		}()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		runLocker = lock.NewRedisRunLocker(rdb, cfg.Reconciliation.LockTTL)
		log.Info("Redis run lock enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		runLocker = lock.NewLocalRunLocker()
		log.Warn("Redis disabled, using in-process run lock")
	}

	// Tenant-scoped persistence
	schemaRouter := tenant.NewSchemaRouter(db.DB, cfg.Database.BaseSchema)
	workspaceRunner := persistence.NewTenantWorkspaceRunner(schemaRouter)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)

	// Application services
	pipeline := reconciliation.DefaultPipeline()
	runService := apprecon.NewRunService(workspaceRunner, runLocker, pipeline, cfg.Reconciliation.RunTimeout, log)
	alertService := apprecon.NewAlertService(workspaceRunner, log)

	// Daily sweep
	sched := scheduler.NewReconciliationScheduler(runService, tenantRepo, scheduler.Config{
		Hour:   cfg.Reconciliation.CronHour,
		Minute: cfg.Reconciliation.CronMinute,
	}, log)
	if cfg.Reconciliation.SchedulerEnabled {
		if err := sched.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	} else {
		log.Info("Reconciliation scheduler disabled")
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	router.Setup(engine, tenantRepo, router.Handlers{
		System:    handler.NewSystemHandler(db),
		Alerts:    handler.NewAlertHandler(alertService),
		Runs:      handler.NewRunHandler(runService),
		Scheduler: handler.NewSchedulerHandler(sched),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Reconciliation.SchedulerEnabled {
		if err := sched.Stop(ctx); err != nil {
			log.Error("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
