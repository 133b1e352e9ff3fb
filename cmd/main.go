package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"bakeshop/internal/caching"
	"bakeshop/internal/config"
	"bakeshop/internal/handlers"
	"bakeshop/internal/jobs/background"
	"bakeshop/internal/middleware"
	"bakeshop/internal/repositories"
	"bakeshop/internal/services"
	"bakeshop/internal/validation"
	"bakeshop/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Cache and object storage
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	storageSvc, err := services.NewMinioStorageService(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background(), cfg.PhotoBucket); err != nil {
		log.Printf("WARN: could not ensure photo bucket exists: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	locationRepo := repositories.NewPickupLocationRepo(pool)
	orderRepo := repositories.NewOrderRepo(pool)

	// Services
	userSvc := services.NewUserService(userRepo)
	authSvc := services.NewAuthService(cacheSvc, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	productSvc := services.NewProductService(productRepo, cacheSvc, storageSvc, cfg.PhotoBucket)
	locationSvc := services.NewPickupLocationService(locationRepo)
	orderSvc := services.NewOrderService(orderRepo, productRepo, locationRepo, cacheSvc)

	// Bootstrap admin account
	if cfg.AdminPassword != "" {
		if err := userSvc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to bootstrap admin account: %v", err)
		}
	} else {
		log.Printf("WARNING: ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	// Handlers
	authHandlers := handlers.NewAuthHandlers(userSvc, authSvc, cacheSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	locationHandlers := handlers.NewPickupLocationHandlers(locationSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	dashboardHandlers := handlers.NewDashboardHandlers(orderSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storageSvc, cfg.PhotoBucket)

	// Background jobs
	scheduler := background.NewJobScheduler(orderSvc, authSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()
	jobHandlers := handlers.NewJobHandlers(scheduler, cacheSvc)

	// Create Echo instance
	e := echo.New()
	e.Validator = validation.EchoValidator{}

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(cfg.JWTSecret))

	protected.GET("/auth/me", authHandlers.Me)
	protected.POST("/auth/logout", authHandlers.Logout)

	// User administration (admin only)
	admin := protected.Group("/users", middleware.RequireAdmin())
	admin.GET("", userHandlers.ListUsers)
	admin.POST("", userHandlers.CreateUser)
	admin.GET("/:id", userHandlers.GetUser)
	admin.PUT("/:id", userHandlers.UpdateUser)
	admin.PUT("/:id/password", userHandlers.UpdatePassword)
	admin.DELETE("/:id", userHandlers.DeleteUser)

	// Product catalog
	protected.GET("/products", productHandlers.ListProducts)
	protected.POST("/products", productHandlers.CreateProduct, middleware.RequireAdmin())
	protected.GET("/products/:id", productHandlers.GetProduct)
	protected.PUT("/products/:id", productHandlers.UpdateProduct, middleware.RequireAdmin())
	protected.DELETE("/products/:id", productHandlers.DeleteProduct, middleware.RequireAdmin())
	protected.POST("/products/:id/photo", productHandlers.UploadPhoto, middleware.RequireAdmin())
	protected.GET("/products/:id/photo", productHandlers.GetPhotoURL)
	protected.DELETE("/products/:id/photo", productHandlers.DeletePhoto, middleware.RequireAdmin())

	// Pickup locations
	protected.GET("/pickup-locations", locationHandlers.ListLocations)
	protected.GET("/pickup-locations/default", locationHandlers.GetDefaultLocation)
	protected.GET("/pickup-locations/:id", locationHandlers.GetLocation)
	protected.POST("/pickup-locations", locationHandlers.CreateLocation, middleware.RequireAdmin())
	protected.PUT("/pickup-locations/:id", locationHandlers.UpdateLocation, middleware.RequireAdmin())
	protected.DELETE("/pickup-locations/:id", locationHandlers.DeleteLocation, middleware.RequireAdmin())

	// Orders
	protected.GET("/orders", orderHandlers.ListOrders)
	protected.POST("/orders", orderHandlers.CreateOrder)
	protected.GET("/orders/upcoming", orderHandlers.ListUpcoming)
	protected.GET("/orders/:id", orderHandlers.GetOrder)
	protected.PUT("/orders/:id", orderHandlers.UpdateOrder)
	protected.POST("/orders/:id/comments", orderHandlers.AddComment)
	protected.POST("/orders/:id/confirm", orderHandlers.ConfirmOrder)
	protected.POST("/orders/:id/ready", orderHandlers.MarkOrderReady)
	protected.POST("/orders/:id/deliver", orderHandlers.DeliverOrder)
	protected.POST("/orders/:id/problem", orderHandlers.MarkOrderProblem)
	protected.POST("/orders/:id/cancel", orderHandlers.CancelOrder)

	// Dashboard
	protected.GET("/dashboard", dashboardHandlers.GetDashboard)

	// Maintenance (admin only)
	protected.GET("/jobs", jobHandlers.GetJobStatus, middleware.RequireAdmin())
	protected.POST("/cache/invalidate", jobHandlers.InvalidateCache, middleware.RequireAdmin())

	log.Printf("Bakeshop server v%s starting on port %d", version, cfg.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Port)))
}
