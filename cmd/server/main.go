package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/storybook-backend/config"
	"github.com/ikkim/storybook-backend/internal/app/controller"
	"github.com/ikkim/storybook-backend/internal/app/repository"
	"github.com/ikkim/storybook-backend/internal/app/service"
	"github.com/ikkim/storybook-backend/internal/db"
	"github.com/ikkim/storybook-backend/internal/fixture"
	"github.com/ikkim/storybook-backend/internal/middleware"
	"github.com/ikkim/storybook-backend/internal/router"
	"github.com/ikkim/storybook-backend/internal/scheduler"
	"github.com/ikkim/storybook-backend/internal/storage"
	"github.com/ikkim/storybook-backend/pkg/logger"
	"github.com/ikkim/storybook-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Server.LogLevel
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.LogFormat == "console",
	})

	logger.Info("Starting story catalogue server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"db_driver":   cfg.Database.Driver,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if cfg.Seed.OnStart {
		seedCatalog(cfg.Seed.FixturePath)
	}

	// Initialize repositories
	ageGroupRepo := repository.NewAgeGroupRepository(db.GetDB())
	themeRepo := repository.NewThemeRepository(db.GetDB())
	storyRepo := repository.NewStoryRepository(db.GetDB())
	adminUserRepo := repository.NewAdminUserRepository(db.GetDB())

	// Logged-out sessions are only tracked when redis is available.
	var revoker service.SessionRevoker
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, admin logout will only clear the cookie", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
			revoker = redis.NewSessionStore(redis.GetClient())
		}
	}

	// Initialize services
	catalogService := service.NewCatalogService(ageGroupRepo, themeRepo, storyRepo)
	reportService := service.NewReportService(ageGroupRepo, themeRepo, storyRepo)
	adminService := service.NewAdminService(ageGroupRepo, themeRepo, storyRepo, reportService)
	authService := service.NewAdminAuthService(
		adminUserRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
	)

	created, err := authService.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		logger.Fatal("Failed to provision admin account", err)
	}
	if created && cfg.Admin.Password == config.DefaultAdminPassword {
		logger.Warn("Admin account created with the default password, change ADMIN_PASSWORD", map[string]interface{}{
			"username": cfg.Admin.Username,
		})
	}

	var presigner controller.ImagePresigner
	if cfg.S3.Configured() {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			logger.Warn("S3 storage unavailable, image uploads disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			presigner = s3Storage
		}
	}

	// Initialize controllers
	pageController := controller.NewPageController(catalogService)
	apiController := controller.NewAPIController(catalogService)
	adminController := controller.NewAdminController(adminService, authService, presigner != nil)
	uploadController := controller.NewUploadController(presigner)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	if schedule := cfg.Scheduler.OrphanReportSchedule; schedule != "" {
		orphanScheduler := scheduler.NewOrphanReportScheduler(reportService, schedule)
		if err := orphanScheduler.Start(); err != nil {
			logger.Error("Failed to start orphan report scheduler", err, map[string]interface{}{
				"schedule": schedule,
			})
		} else {
			defer orphanScheduler.Stop()
		}
	}

	// Setup router
	r := router.NewRouter(
		pageController,
		apiController,
		adminController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine, err := r.Setup()
	if err != nil {
		logger.Fatal("Failed to set up router", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	logger.Info("Server stopped successfully")
}

// seedCatalog loads the fixture into an empty catalogue. Failures are logged
// and the server keeps starting.
func seedCatalog(path string) {
	var (
		fx  *fixture.Fixture
		err error
	)
	if path != "" {
		fx, err = fixture.LoadFile(path)
	} else {
		fx, err = fixture.Default()
	}
	if err != nil {
		logger.Warn("Failed to read seed fixture", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}

	if _, err := db.SeedIfEmpty(db.GetDB(), fx); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
