package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"product-schema-service/internal/config"
	"product-schema-service/internal/events"
	"product-schema-service/internal/handlers"
	"product-schema-service/internal/middleware"
	"product-schema-service/internal/repository"
	"product-schema-service/internal/subscribers"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Product Schema API
// @version 1.0.0
// @description Structured data, link previews and global identifier import/export for catalog products
// @termsOfService http://swagger.io/terms/

// @contact.name Products API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8087
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	productsRepo := repository.NewProductsRepository(db, redisClient)
	identifiersRepo := repository.NewIdentifiersRepository(db, redisClient)

	// Identifier import events are published only if NATS_URL is set
	var identifierEvents handlers.IdentifierEventPublisher
	if cfg.NATSURL != "" {
		eventsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			identifierEvents = eventsPublisher
			defer eventsPublisher.Close()
			log.Println("✓ Events publisher initialized (NATS connected)")
		}

		// Evict cached products when the catalog changes them
		cacheSubscriber, err := subscribers.NewProductCacheSubscriber(cfg.NATSURL, productsRepo, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize product cache subscriber: %v", err)
		} else if err := cacheSubscriber.Start(context.Background()); err != nil {
			log.Printf("WARNING: Failed to start product cache subscriber: %v", err)
		} else {
			defer cacheSubscriber.Stop()
			log.Println("✓ Product cache subscriber started")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}

	// Initialize handlers
	schemaHandler := handlers.NewSchemaHandler(
		productsRepo,
		identifiersRepo,
		cfg.SchemaSettings(),
		cfg.SnapshotOptions(),
		cfg.PreviewConfig(),
		logger,
	)
	identifiersHandler := handlers.NewIdentifiersHandler(
		productsRepo,
		identifiersRepo,
		identifierEvents,
		handlers.ImportLimits{MaxRows: cfg.MaxImportRows, MaxFileSize: cfg.MaxImportFileSize},
		logger,
	)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("product-schema-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("product-schema-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "product_schema_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize RBAC middleware
	rbacMw := rbac.NewMiddlewareWithURL(cfg.StaffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("product-schema-service"))
	router.Use(gosharedmw.CompressionMiddleware())

	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health check endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(
		handlers.DatabaseDependency(db),
		handlers.RedisDependency(redisClient),
	)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// In development: DevelopmentAuthMiddleware + tenant header
	// In production: IstioAuth reads x-jwt-claim-* headers from Istio
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
	} else {
		istioAuthLogger := logrus.NewEntry(logger).WithField("component", "istio_auth")
		api.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
			RequireAuth:        true,
			AllowLegacyHeaders: true,
			Logger:             istioAuthLogger,
		}))
	}
	api.Use(middleware.TenantMiddleware())

	products := api.Group("/products")
	{
		// Structured data
		products.GET("/:id/schema", rbacMw.RequirePermission(rbac.PermissionProductsRead), schemaHandler.GetProductSchema)
		products.POST("/:id/schema", rbacMw.RequirePermission(rbac.PermissionProductsRead), schemaHandler.BuildProductSchema)
		products.POST("/:id/schema/webpage", rbacMw.RequirePermission(rbac.PermissionProductsRead), schemaHandler.FilterWebPage)
		products.GET("/:id/preview", rbacMw.RequirePermission(rbac.PermissionProductsRead), schemaHandler.GetProductPreview)

		// Global identifiers import/export
		products.GET("/identifiers/template", rbacMw.RequirePermission(rbac.PermissionProductsImport), identifiersHandler.GetImportTemplate)
		products.POST("/identifiers/import", rbacMw.RequirePermission(rbac.PermissionProductsImport), identifiersHandler.ImportIdentifiers)
		products.GET("/identifiers/export", rbacMw.RequirePermission(rbac.PermissionProductsExport), identifiersHandler.ExportIdentifiers)
	}

	// Public storefront endpoints (tenant context only)
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware())
	{
		storefront.GET("/products/:id/schema", schemaHandler.GetProductSchema)
		storefront.POST("/products/:id/schema", schemaHandler.BuildProductSchema)
		storefront.POST("/products/:id/schema/webpage", schemaHandler.FilterWebPage)
		storefront.GET("/products/:id/preview", schemaHandler.GetProductPreview)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Product schema service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down product-schema-service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Shutdown tracer provider
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Product schema service stopped")
}
