package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecowaste/internal/config"
	"ecowaste/internal/handlers"
	"ecowaste/internal/middleware"
	"ecowaste/internal/repositories/mongodb"
	"ecowaste/internal/services"
	"ecowaste/pkg/cache"
	"ecowaste/pkg/database"
	"ecowaste/pkg/logger"
	"ecowaste/pkg/metrics"
	"ecowaste/pkg/sms"
	"ecowaste/pkg/storage"
	"ecowaste/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	migrateDown := flag.Int("migrate-down", -1, "revert migrations down to this version and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     cfg.App.LogOutput,
		TimeFormat: time.RFC3339,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}

	ctx := context.Background()

	// Database
	mongoDB, err := database.NewMongoDB(cfg.Database.ToDatabaseConfig())
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoDB.Close(); err != nil {
			appLogger.WithError(err).Warn("Closing MongoDB failed")
		}
	}()

	migrator := database.NewMigrator(mongoDB.Database, appLogger.Infof)
	if *migrateDown >= 0 {
		if err := migrator.Down(ctx, *migrateDown); err != nil {
			appLogger.WithError(err).Fatal("Failed to revert migrations")
		}
		appLogger.Infof("Migrations reverted to version %d", *migrateDown)
		return
	}
	if err := migrator.Up(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}

	healthChecks := map[string]handlers.HealthCheck{
		"mongodb": mongoDB.Ping,
	}

	// Cache
	var cacheSvc services.CacheService
	var userCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis.ToCacheConfig())
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisCache.Close()

		cacheSvc = services.NewCacheService(redisCache, appLogger, "ecowaste", cfg.Redis.TestimonialTTL)
		userCache = cacheSvc
		healthChecks["redis"] = redisCache.Ping
	}

	// Image storage
	storageProvider, err := storage.NewProvider(ctx, cfg.Storage.ToStorageConfig())
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise storage provider")
	}
	var uploadsDir string
	if local, ok := storageProvider.(*storage.LocalStorage); ok {
		uploadsDir = local.BasePath()
	}

	// SMS
	smsProvider, err := sms.NewProvider(ctx, cfg.SMS.ToSMSConfig())
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise SMS provider")
	}

	appMetrics := metrics.New()

	// Repositories
	userRepo := mongodb.NewUserRepository(mongoDB.Database, userCache, cfg.Redis.UserTTL, appMetrics)
	wasteRepo := mongodb.NewWasteRequestRepository(mongoDB.Database)

	// Services
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, appLogger)
	uploadService := services.NewUploadService(storageProvider, services.UploadConfig{
		MaxSize:   cfg.Storage.MaxUploadSize,
		MaxWidth:  uint(cfg.Storage.MaxImageWidth),
		MaxHeight: uint(cfg.Storage.MaxImageHeight),
	}, appLogger)
	notificationService := services.NewNotificationService(smsProvider, cfg.App.Name, appLogger)
	wasteService := services.NewWasteService(wasteRepo, userRepo, uploadService, notificationService, cacheSvc, appMetrics, appLogger)
	feedbackService := services.NewFeedbackService(wasteRepo, cacheSvc, cfg.Redis.TestimonialTTL, appMetrics, appLogger)

	if admin := cfg.Security.Admin; admin.Enabled() {
		err := authService.EnsureAdmin(ctx, &services.AdminAccount{
			Name:     admin.Name,
			Email:    admin.Email,
			Phone:    admin.Phone,
			Password: admin.Password,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to seed admin account")
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	wasteHandler := handlers.NewWasteHandler(wasteService, feedbackService)
	healthHandler := handlers.NewHealthHandler(healthChecks, appLogger)
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.Logging(appLogger))
	router.Use(middleware.Metrics(appMetrics))
	router.Use(middleware.CORS(cfg.Security.CORSAllowedOrigins))

	api := router.Group(cfg.App.APIPrefix)
	{
		routes.SetupAuthRoutes(api, authHandler, authMiddleware)
		routes.SetupWasteRoutes(api, wasteHandler, authMiddleware)
	}
	routes.SetupSystemRoutes(router, api, healthHandler, appMetrics, uploadsDir)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Infof("Starting %s on %s", cfg.App.Name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Infof("Received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			appLogger.WithError(err).Error("Server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}
