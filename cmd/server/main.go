package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsapp "github.com/recoverly/backend/internal/application/analytics"
	ledgerapp "github.com/recoverly/backend/internal/application/ledger"
	partnerapp "github.com/recoverly/backend/internal/application/partner"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/recoverly/backend/internal/infrastructure/config"
	"github.com/recoverly/backend/internal/infrastructure/event"
	"github.com/recoverly/backend/internal/infrastructure/logger"
	"github.com/recoverly/backend/internal/infrastructure/persistence"
	"github.com/recoverly/backend/internal/infrastructure/scheduler"
	"github.com/recoverly/backend/internal/infrastructure/telemetry"
	"github.com/recoverly/backend/internal/interfaces/http/handler"
	"github.com/recoverly/backend/internal/interfaces/http/middleware"
	"github.com/recoverly/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Recoverly Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Initialize database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Report cache: Redis when reachable, in-memory fallback unless the
	// deployment demands a shared cache
	cacheFactory := cache.NewReportCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Cache.RequireRedis),
	)
	reportCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize report cache", zap.Error(err))
	}
	defer func() {
		if err := reportCache.Close(); err != nil {
			log.Error("Error closing report cache", zap.Error(err))
		}
	}()

	// Domain event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationEntryRepository(db.DB)

	// Application services
	ledgerService := ledgerapp.NewLedgerService(invoiceRepo, receiptRepo, allocationRepo, customerRepo,
		ledgerapp.WithEventPublisher(eventBus),
		ledgerapp.WithReportCache(reportCache),
	)
	interestService := ledgerapp.NewInterestService(invoiceRepo)
	customerService := partnerapp.NewCustomerService(customerRepo, partnerapp.WithReportCache(reportCache))
	riskService := analyticsapp.NewRiskService(customerRepo, invoiceRepo, receiptRepo, reportCache, cfg.Cache.ReportTTL)
	forecastService := analyticsapp.NewForecastService(customerRepo, invoiceRepo, allocationRepo, reportCache, cfg.Cache.ReportTTL)
	healthService := analyticsapp.NewHealthService(invoiceRepo, allocationRepo, reportCache, cfg.Cache.ReportTTL)

	// Daily report warming keeps the analytics cache hot for every tenant
	var warmScheduler *scheduler.Scheduler
	var warmTrigger *scheduler.CronTrigger
	if cfg.Scheduler.Enabled {
		schedulerCfg := scheduler.DefaultSchedulerConfig()
		schedulerCfg.MaxConcurrentJobs = cfg.Scheduler.Workers

		executor := scheduler.NewReportWarmExecutor(riskService, forecastService, healthService, reportCache)
		warmScheduler = scheduler.NewScheduler(schedulerCfg, executor, log)
		if err := warmScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start report warm scheduler", zap.Error(err))
		}

		triggerCfg := scheduler.DefaultCronTriggerConfig()
		triggerCfg.WarmHour = cfg.Scheduler.WarmHour
		triggerCfg.WarmMinute = cfg.Scheduler.WarmMinute
		warmTrigger = scheduler.NewCronTrigger(triggerCfg, warmScheduler, customerRepo, log)
		if err := warmTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start report warm cron", zap.Error(err))
		}
	}

	// Handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	invoiceHandler := handler.NewInvoiceHandler(ledgerService, interestService)
	receiptHandler := handler.NewReceiptHandler(ledgerService)
	analyticsHandler := handler.NewAnalyticsHandler(riskService, forecastService, healthService)
	systemHandler := handler.NewSystemHandler(db)

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies configuration", zap.Error(err))
	}

	// Middleware chain: request ID first so recovery and logging can tag
	// their output, then tenant resolution, then tracing
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tenant())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())

	// Health check endpoint outside API versioning
	engine.GET("/health", systemHandler.Health)

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	customerRoutes := router.NewDomainGroup("customers", "/customers")
	customerRoutes.POST("", customerHandler.Create)
	customerRoutes.GET("", customerHandler.List)
	customerRoutes.GET("/:id", customerHandler.GetByID)
	customerRoutes.PUT("/:id", customerHandler.Update)
	customerRoutes.DELETE("/:id", customerHandler.Delete)
	r.Register(customerRoutes)

	invoiceRoutes := router.NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.POST("", invoiceHandler.Create)
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.POST("/import", invoiceHandler.Import)
	invoiceRoutes.GET("/interest", invoiceHandler.Interest)
	invoiceRoutes.GET("/:id", invoiceHandler.GetByID)
	invoiceRoutes.PUT("/:id", invoiceHandler.Update)
	invoiceRoutes.DELETE("/:id", invoiceHandler.Delete)
	r.Register(invoiceRoutes)

	receiptRoutes := router.NewDomainGroup("receipts", "/receipts")
	receiptRoutes.POST("", receiptHandler.Create)
	receiptRoutes.GET("", receiptHandler.List)
	receiptRoutes.PUT("/:id", receiptHandler.Update)
	receiptRoutes.DELETE("/:id", receiptHandler.Delete)
	r.Register(receiptRoutes)

	analyticsRoutes := router.NewDomainGroup("analytics", "/analytics")
	analyticsRoutes.GET("/risk", analyticsHandler.Risk)
	analyticsRoutes.GET("/forecast", analyticsHandler.Forecast)
	analyticsRoutes.GET("/health", analyticsHandler.Health)
	r.Register(analyticsRoutes)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.Info)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	r.Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if warmTrigger != nil {
		warmTrigger.Stop()
	}
	if warmScheduler != nil {
		if err := warmScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping report warm scheduler", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
