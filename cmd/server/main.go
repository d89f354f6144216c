package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"carmarket-backend/internal/config"
	"carmarket-backend/internal/database"
	"carmarket-backend/internal/handlers"
	"carmarket-backend/internal/middleware"
	"carmarket-backend/internal/services"
	"carmarket-backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var zl *zap.Logger
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		zl, err = zap.NewProduction()
	} else {
		zl, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	// Run migrations
	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to initialize migrator", "error", err)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		logger.Fatalw("migration failed", "error", err)
	}
	migrator.Close()

	store, err := database.NewStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}
	defer store.Close()

	var blobs storage.BlobStore
	switch cfg.StorageBackend {
	case "supabase":
		blobs, err = storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket)
	default:
		blobs, err = storage.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	}
	if err != nil {
		logger.Fatalw("failed to initialize storage", "backend", cfg.StorageBackend, "error", err)
	}

	authService := services.NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL, logger)
	carService := services.NewCarService(store, blobs, logger)

	authHandler := handlers.NewAuthHandler(authService)
	carsHandler := handlers.NewCarsHandler(carService, store, blobs)
	lookupsHandler := handlers.NewLookupsHandler(store)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", handlers.Health)

	if cfg.StorageBackend == "local" {
		router.Static("/media", cfg.MediaDir)
	}

	api := router.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/cars", carsHandler.ListCars)
	api.GET("/cars/:car_id", carsHandler.GetCar)
	api.GET("/lookups", lookupsHandler.GetLookups)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret))
	authed.GET("/my/cars", carsHandler.MyCars)
	authed.POST("/cars", carsHandler.CreateCar)
	authed.PUT("/cars/:car_id", carsHandler.UpdateCar)
	authed.DELETE("/cars/:car_id", carsHandler.DeleteCar)

	logger.Infow("server starting", "port", cfg.Port, "storage_backend", cfg.StorageBackend)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatalw("server failed", "error", err)
	}
}
