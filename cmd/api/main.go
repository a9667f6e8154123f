package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botivate/sheetsync/config"
	"github.com/botivate/sheetsync/internal/bootstrap"
	"github.com/botivate/sheetsync/internal/handlers"
	"github.com/botivate/sheetsync/internal/middleware"
	"github.com/botivate/sheetsync/internal/services"
	"github.com/botivate/sheetsync/internal/watcher"
	"github.com/botivate/sheetsync/pkg/jwt"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/botivate/sheetsync/pkg/metrics"
	"github.com/botivate/sheetsync/pkg/profiling"
	"github.com/botivate/sheetsync/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerSyncRoutes registers the publish and edit endpoints
func registerSyncRoutes(
	group *gin.RouterGroup,
	cfg *config.Config,
	publishRateLimiter, editRateLimiter *middleware.RateLimiter,
	sheetsHandler *handlers.SheetsHandler,
	editHandler *handlers.EditHandler,
) {
	group.GET("/sheets", publishRateLimiter.Middleware(), sheetsHandler.GetSheets)

	if cfg.Sync.EditSecret == "" {
		logger.Warn("Edit endpoint disabled: SYNC_EDIT_SECRET not configured")
		return
	}
	group.POST("/edits",
		editRateLimiter.Middleware(),
		middleware.WebhookSecretMiddleware(cfg.Sync.EditSecret),
		middleware.BodySizeLimitMiddleware(64*1024),
		editHandler.ReceiveEdit)
}

// registerAdminRoutes registers destination maintenance routes
func registerAdminRoutes(
	group *gin.RouterGroup,
	adminRateLimiter *middleware.RateLimiter,
	adminHandler *handlers.AdminHandler,
	tokenManager *jwt.TokenManager,
) {
	// Skip admin routes if the database or JWT is not configured
	if adminHandler == nil || tokenManager == nil {
		logger.Warn("Admin routes disabled: DATABASE_URL or ADMIN_JWT_SECRET not configured")
		return
	}

	admin := group.Group("/admin")
	admin.Use(adminRateLimiter.Middleware(), middleware.AdminJWTMiddleware(tokenManager))
	admin.POST("/tables/reset", middleware.BodySizeLimitMiddleware(1*1024*1024), adminHandler.ResetTable)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting sheetsync API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("source", cfg.Source.Kind),
		zap.Strings("allowed_sheets", cfg.Sync.AllowedSheets),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	metrics.RecordInfrastructureMetrics(stopMetrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sync pipeline
	extractService, err := bootstrap.NewExtractService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize spreadsheet source", zap.Error(err))
	}
	notifierService := services.NewNotifierService(cfg.Sync)
	editTrigger := services.NewEditTrigger(notifierService)
	if cfg.Sync.WebhookURL == "" {
		logger.Warn("SYNC_WEBHOOK_URL not configured: edits will not be forwarded")
	}

	// Destination database is optional; without it the reset route is disabled
	// NOTE: migrations run separately via the migrate command
	var (
		healthPinger handlers.Pinger
		adminHandler *handlers.AdminHandler
	)
	dbClient, err := bootstrap.NewDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	if dbClient != nil {
		defer dbClient.Close()
		healthPinger = dbClient
		adminHandler = handlers.NewAdminHandler(bootstrap.NewTableResetService(dbClient))
	}

	var tokenManager *jwt.TokenManager
	if cfg.Admin.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, cfg.Admin.TokenTTLHours)
	}

	// Watch the workbook on disk when requested
	if cfg.Source.Watch {
		workbookWatcher := watcher.New(cfg.Source.XLSXPath, editTrigger)
		go func() {
			if err := workbookWatcher.Run(ctx); err != nil {
				logger.Error("Workbook watcher stopped", zap.Error(err))
			}
		}()
	}

	// Initialize handlers
	handlers.UseJSONFieldNames()
	sheetsHandler := handlers.NewSheetsHandler(extractService)
	editHandler := handlers.NewEditHandler(editTrigger)
	healthHandler := handlers.NewHealthHandler(healthPinger)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	// Allow localhost in development
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  allowedOrigins,
			AllowMethods:  []string{"GET", "HEAD", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.WebhookSecretHeader, "traceparent", "tracestate"},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	// Rate limiters, per client IP
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	editRateLimiter := middleware.NewRateLimiter(20, 40)      // spreadsheet saves arrive in bursts
	adminRateLimiter := middleware.NewRateLimiter(1, 5)
	defer generalRateLimiter.Stop()
	defer editRateLimiter.Stop()
	defer adminRateLimiter.Stop()

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.HEAD("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	registerSyncRoutes(v1, cfg, generalRateLimiter, editRateLimiter, sheetsHandler, editHandler)
	registerAdminRoutes(v1, adminRateLimiter, adminHandler, tokenManager)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
