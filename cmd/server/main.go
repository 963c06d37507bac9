package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	eventapp "github.com/storefront/backend/internal/application/event"
	identityapp "github.com/storefront/backend/internal/application/identity"
	salesapp "github.com/storefront/backend/internal/application/sales"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/storefront/backend/docs"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Cart, checkout and sale history for the storefront.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	bootLog, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// The OTLP log bridge needs a logger of its own before the main one
	// can tee into it.
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log, err := logger.New(logger.FromAppConfig(cfg.Log), logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	taxRateRepo := persistence.NewGormTaxRateRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Refresh tokens
	shutdownCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	var refreshTokens identity.RefreshTokenStore
	if cfg.Redis.Host != "" {
		redisClient, err := auth.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		refreshTokens = auth.NewRedisRefreshTokenStore(redisClient)
		log.Info("Refresh tokens stored in Redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		memStore := auth.NewInMemoryRefreshTokenStore()
		memStore.StartCleanup(shutdownCtx, 10*time.Minute)
		refreshTokens = memStore
		log.Warn("Redis not configured, refresh tokens kept in memory")
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	// Product images
	imageStorage, err := storage.NewImageStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	imageOpts := []catalogapp.ImageResolverOption{catalogapp.WithImageLogger(log)}
	if imageStorage != nil {
		imageOpts = append(imageOpts, catalogapp.WithObjectStorage(imageStorage, cfg.Storage.PresignExpiration))
	}
	images := catalogapp.NewImageResolver(cfg.HTTP.PublicBaseURL, imageOpts...)

	// Application services
	taxLookup := catalogapp.NewTaxLookup(productRepo, taxRateRepo, log)
	cartService := salesapp.NewCartService(txScope, saleRepo, productRepo, taxLookup, images, log)
	checkoutService := salesapp.NewCheckoutService(txScope, salesapp.NewStockReconciler(), log)
	saleQueryService := salesapp.NewSaleQueryService(saleRepo, productRepo, userRepo, log)
	authService := identityapp.NewAuthService(userRepo, refreshTokens, jwtService, log)
	taxRateService := catalogapp.NewTaxRateService(taxRateRepo)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	salesMetrics, err := telemetry.NewSalesMetrics(meterProvider.Meter("storefront.sales"))
	if err != nil {
		log.Fatal("Failed to create sales metrics", zap.Error(err))
	}
	cartService.SetMetrics(salesMetrics)
	checkoutService.SetMetrics(salesMetrics)

	// Outbox relay
	publisher := event.NewPublisher(cfg.Events, log)
	var processor *event.OutboxProcessor
	if cfg.Events.RelayEnabled {
		processor = event.NewOutboxProcessor(outboxRepo, publisher, event.ProcessorConfigFrom(cfg.Events), log)
		processor.Start(shutdownCtx)
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.AllowedOrigins
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.App.IsProduction()

	var authLimiter *middleware.RateLimiter
	if cfg.HTTP.AuthRateLimitRequests > 0 {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		Logger:           log,
		JWTService:       jwtService,
		CORS:             corsConfig,
		Security:         securityConfig,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		AuthLimiter:      authLimiter,
		TracingEnabled:   tracerProvider.IsEnabled(),
		Meter:            meterProvider.Meter("storefront.http"),
		ProfilingEnabled: profiler.IsEnabled(),
		SwaggerEnabled:   cfg.Swagger.Enabled,
	}, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Cart:    handler.NewCartHandler(cartService, checkoutService),
		Sales:   handler.NewSalesHandler(saleQueryService),
		TaxRate: handler.NewTaxRateHandler(taxRateService),
		Outbox:  handler.NewOutboxHandler(outboxService),
		Health:  handler.NewHealthHandler(cfg.App.Name, version, db),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	stopBackground()
	if processor != nil {
		if err := processor.Stop(ctx); err != nil {
			log.Warn("Outbox processor did not stop cleanly", zap.Error(err))
		}
	}
	if err := publisher.Close(); err != nil {
		log.Warn("Failed to close event publisher", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(ctx); err != nil {
		log.Warn("Failed to flush logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
