package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/agricoop/api/internal/auth"
	"github.com/stwalsh4118/agricoop/api/internal/cache"
	"github.com/stwalsh4118/agricoop/api/internal/config"
	"github.com/stwalsh4118/agricoop/api/internal/database"
	"github.com/stwalsh4118/agricoop/api/internal/handlers"
	"github.com/stwalsh4118/agricoop/api/internal/logger"
	"github.com/stwalsh4118/agricoop/api/internal/metrics"
	"github.com/stwalsh4118/agricoop/api/internal/middleware"
	"github.com/stwalsh4118/agricoop/api/internal/repository"
	"github.com/stwalsh4118/agricoop/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.NewWithLevel(cfg.Server.Env, cfg.Server.LogLevel)
	log.Info("Starting Agricoop API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.Migrate {
		applied, err := database.NewMigrator(db, log).Run(ctx)
		if err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
		log.Info("Migrations up to date", map[string]interface{}{"applied": applied})
	}

	// Reference cache; an unreachable redis degrades to no caching
	store, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Cache unavailable, continuing without it", map[string]interface{}{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
		store = cache.NoopStore{}
	}
	defer store.Close()

	var cachePinger handlers.Pinger
	if cfg.Redis.Enabled {
		cachePinger = store
	}

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.Auth)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Metrics -> Authenticate
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))
	router.Use(middleware.Metrics(m))
	router.Use(middleware.Authenticate(jwtManager))

	// Register health check and metrics routes
	healthHandler := handlers.NewHealthHandler(db, cachePinger, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Initialize repository and service layers
	userRepo := repository.NewUserRepository(db)
	producerRepo := repository.NewProducerRepository(db)
	parcelRepo := repository.NewParcelRepository(db)
	harvestRepo := repository.NewHarvestRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authService := services.NewAuthService(userRepo, jwtManager, auth.VerifyPassword, log)
	referenceService := services.NewReferenceService(referenceRepo, store, cfg.Redis.TTL, log)
	inventoryService := services.NewInventoryService(warehouseRepo, referenceRepo, m, log)
	harvestService := services.NewHarvestService(producerRepo, parcelRepo, harvestRepo, referenceRepo, m, log)
	parcelService := services.NewParcelService(parcelRepo, producerRepo, referenceRepo, store, log)
	reportService := services.NewReportService(reportRepo, producerRepo, harvestRepo, inventoryService, log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	homeHandler := handlers.NewHomeHandler(reportService)
	referenceHandler := handlers.NewReferenceHandler(referenceService)
	producerHandler := handlers.NewProducerHandler(reportService, harvestService)
	managerHandler := handlers.NewManagerHandler(reportService, inventoryService, harvestService)
	parcelHandler := handlers.NewParcelHandler(parcelService, harvestService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/home", homeHandler.Home)

		reference := v1.Group("/reference")
		{
			reference.GET("/crop-types", referenceHandler.CropTypes)
			reference.GET("/districts", referenceHandler.Districts)
			reference.GET("/communes", referenceHandler.Communes)
		}

		producer := v1.Group("/producer")
		{
			producer.GET("/dashboard", producerHandler.Dashboard)
			producer.GET("/parcels", parcelHandler.ProducerParcels)
			producer.GET("/harvests", producerHandler.Harvests)
			producer.POST("/harvests", producerHandler.RecordHarvest)
		}

		manager := v1.Group("/manager")
		{
			manager.GET("/dashboard", managerHandler.Dashboard)
			manager.GET("/warehouses", managerHandler.Warehouses)
			manager.POST("/warehouses", managerHandler.CreateWarehouse)
			manager.GET("/warehouses/:id", managerHandler.Warehouse)
			manager.PUT("/warehouses/:id/stock", managerHandler.UpsertStock)
			manager.GET("/harvests", managerHandler.Harvests)
			manager.GET("/harvests/export", managerHandler.ExportHarvests)
			manager.POST("/parcels", parcelHandler.Create)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
