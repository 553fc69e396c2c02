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
	"go.uber.org/zap"

	_ "github.com/noah-isme/civic-complaint-api/api/swagger"
	"github.com/noah-isme/civic-complaint-api/internal/handler"
	"github.com/noah-isme/civic-complaint-api/internal/repository"
	"github.com/noah-isme/civic-complaint-api/internal/routes"
	"github.com/noah-isme/civic-complaint-api/internal/service"
	"github.com/noah-isme/civic-complaint-api/pkg/cache"
	"github.com/noah-isme/civic-complaint-api/pkg/config"
	"github.com/noah-isme/civic-complaint-api/pkg/database"
	"github.com/noah-isme/civic-complaint-api/pkg/export"
	"github.com/noah-isme/civic-complaint-api/pkg/logger"
	"github.com/noah-isme/civic-complaint-api/pkg/middleware/recovery"
	"github.com/noah-isme/civic-complaint-api/pkg/storage"
	"github.com/noah-isme/civic-complaint-api/pkg/validation"
)

// @title Civic Complaint API
// @version 1.0.0
// @description Citizens report geotagged civic issues; officials triage, assign and resolve them.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	flushSentry, err := recovery.InitSentry(cfg.Sentry.DSN, cfg.Env)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flushSentry()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(context.Background(), cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validation.New()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client, "civic", logr)
		}
	}
	var cacheStore service.CacheRepository
	metricsHandler := handler.NewMetricsHandler(metrics, db, logr)
	if cacheRepo != nil {
		cacheStore = cacheRepo
		metricsHandler.WithCache(cacheRepo)
	}
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Cache.TTL, logr, cacheStore != nil)

	images, uploadsDir, err := newBlobStore(cfg.Images, logr)
	if err != nil {
		logr.Fatal("failed to init image storage", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	audit := service.NewAuditService(userRepo, logr)
	authSvc := service.NewAuthService(userRepo, audit, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, audit, validate, logr)
	complaintSvc := service.NewComplaintService(complaintRepo, userRepo, images, audit, cacheSvc, metrics, validate, logr, service.ComplaintConfig{
		RewardMin:     cfg.Complaints.RewardMin,
		RewardMax:     cfg.Complaints.RewardMax,
		MaxImageBytes: cfg.Images.MaxSizeBytes,
	})
	dashboardSvc := service.NewDashboardService(analyticsRepo, complaintRepo, cacheSvc, metrics, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metrics, logr)
	exportSvc := service.NewExportService(analyticsRepo, export.NewCSVExporter(), export.NewPDFExporter(cfg.Export.PDFMaxRows), audit, metrics, logr)

	handlers := routes.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Complaints: handler.NewComplaintHandler(complaintSvc, cfg.Images.MaxSizeBytes),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Users:      handler.NewUserHandler(userSvc),
		Analytics:  handler.NewAnalyticsHandler(analyticsSvc, exportSvc),
		Metrics:    metricsHandler,
	}

	opts := routes.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}
	if uploadsDir != "" {
		opts.UploadsPath = cfg.Images.LocalBaseURL
		opts.UploadsDir = uploadsDir
	}
	r := routes.New(opts, handlers, authSvc, metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "imageStorage", cfg.Images.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown error", zap.Error(err))
	}
}

// newBlobStore picks the image backend. With no backend configured, images are inlined as data URIs.
// The returned directory is non-empty only for the local backend, which the router serves statically.
func newBlobStore(cfg config.ImageConfig, logr *zap.Logger) (storage.BlobStore, string, error) {
	switch cfg.Storage {
	case config.ImageStorageCloud:
		store, err := storage.NewCloudStore(storage.CloudConfig{
			BaseURL: cfg.CloudURL,
			Key:     cfg.CloudKey,
			Secret:  cfg.CloudSecret,
			Folder:  cfg.CloudFolder,
			Timeout: cfg.CloudTimeout,
		}, logr)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case config.ImageStorageLocal:
		store, err := storage.NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	case config.ImageStorageNone:
		return nil, "", nil
	default:
		return nil, "", fmt.Errorf("unknown IMAGE_STORAGE %q", cfg.Storage)
	}
}
