package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/handler"
	"github.com/noah-isme/student-complaints/internal/repository"
	"github.com/noah-isme/student-complaints/internal/router"
	"github.com/noah-isme/student-complaints/internal/service"
	"github.com/noah-isme/student-complaints/pkg/cache"
	"github.com/noah-isme/student-complaints/pkg/config"
	"github.com/noah-isme/student-complaints/pkg/database"
	"github.com/noah-isme/student-complaints/pkg/logger"
)

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
	if cfg.Session.Ephemeral {
		logr.Warn("SESSION_SECRET not set; using a per-process secret, sessions will not survive restarts")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	schemaRepo := repository.NewSchemaRepository(db)
	bootstrapper := service.NewBootstrapper(schemaRepo, logr, metrics)

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapper.Ensure(startupCtx); err != nil {
		logr.Warn("schema bootstrap deferred to first request", zap.Error(err))
	}
	cancel()

	throttle := newLoginThrottle(cfg, logr)

	validate := validator.New()
	authSvc := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewAdminRepository(db),
		throttle,
		metrics,
		validate,
		logr,
		service.AuthConfig{},
	)
	complaintSvc := service.NewComplaintService(
		repository.NewStudentRepository(db),
		repository.NewComplaintRepository(db),
		metrics,
		validate,
		logr,
	)
	exportSvc := service.NewExportService(complaintSvc, logr, nil, nil)

	engine, err := router.New(router.Deps{
		Config:     cfg,
		Logger:     logr,
		Metrics:    metrics,
		Bootstrap:  bootstrapper,
		Auth:       handler.NewAuthHandler(authSvc, logr),
		Complaints: handler.NewComplaintHandler(complaintSvc, logr),
		Admin:      handler.NewAdminHandler(complaintSvc, exportSvc, logr),
		Ops:        handler.NewMetricsHandler(metrics, schemaRepo, bootstrapper),
	})
	if err != nil {
		logr.Fatal("failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logr.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newLoginThrottle returns nil when throttling is off or Redis cannot be reached.
func newLoginThrottle(cfg *config.Config, logr *zap.Logger) *service.LoginThrottle {
	if !cfg.Login.ThrottleEnabled {
		return nil
	}
	if !cfg.Redis.Enabled() {
		logr.Warn("LOGIN_THROTTLE_ENABLED is set but REDIS_HOST is empty; login throttling disabled")
		return nil
	}

	client, err := cache.NewRedis(context.Background(), cfg.Redis, 3*time.Second)
	if err != nil {
		logr.Warn("redis unavailable; login throttling disabled", zap.Error(err))
		return nil
	}

	return service.NewLoginThrottle(repository.NewLoginAttemptRepository(client), cfg.Login.MaxAttempts, cfg.Login.Window, logr)
}
