package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MauroRinelli/Solship/config"
	"github.com/MauroRinelli/Solship/internal/app/controller"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/db"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/MauroRinelli/Solship/internal/router"
	"github.com/MauroRinelli/Solship/internal/scheduler"
	"github.com/MauroRinelli/Solship/internal/storage"
	"github.com/MauroRinelli/Solship/internal/websocket"
	"github.com/MauroRinelli/Solship/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Solship API Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
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

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Event bus feeds the websocket update stream
	bus := events.NewBus()
	hub := websocket.NewHub()
	eventCh, cancelEvents := bus.Subscribe()
	defer cancelEvents()
	go hub.Run(eventCh)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	destinationRepo := repository.NewDestinationRepository(db.GetDB())
	shipmentRepo := repository.NewShipmentRepository(db.GetDB())
	settingsRepo := repository.NewSettingsRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	destinationService := service.NewDestinationService(destinationRepo, bus)
	shipmentService := service.NewShipmentService(shipmentRepo, destinationRepo, bus)
	settingsService := service.NewSettingsService(settingsRepo, bus)
	exportService := service.NewExportService(destinationRepo, shipmentRepo, settingsRepo, bus)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	destinationController := controller.NewDestinationController(destinationService)
	shipmentController := controller.NewShipmentController(shipmentService)
	settingsController := controller.NewSettingsController(settingsService)
	exportController := controller.NewExportController(exportService)
	wsController := controller.NewWSController(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Nightly snapshot backup, enabled when a bucket is configured
	if cfg.Backup.Bucket != "" {
		s3Store := storage.NewS3Storage(
			cfg.Backup.Region,
			cfg.Backup.Bucket,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Prefix,
		)
		backupScheduler := scheduler.NewBackupScheduler(exportService, s3Store, cfg.Backup.Schedule)
		if err := backupScheduler.Start(); err != nil {
			logger.Fatal("Failed to start backup scheduler", err)
		}
		defer backupScheduler.Stop()
	}

	// Setup router
	r := router.NewRouter(
		authController,
		destinationController,
		shipmentController,
		settingsController,
		exportController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
