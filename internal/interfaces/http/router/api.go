package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Auth    *handler.AuthHandler
	Cart    *handler.CartHandler
	Sales   *handler.SalesHandler
	TaxRate *handler.TaxRateHandler
	Outbox  *handler.OutboxHandler
	Health  *handler.HealthHandler
}

// EngineConfig configures the middleware chain
type EngineConfig struct {
	ServiceName      string
	Logger           *zap.Logger
	JWTService       *auth.JWTService
	CORS             middleware.CORSConfig
	Security         middleware.SecurityConfig
	MaxBodySize      int64
	AuthLimiter      *middleware.RateLimiter
	TracingEnabled   bool
	Meter            metric.Meter
	ProfilingEnabled bool
	SwaggerEnabled   bool
}

// NewEngine builds the gin engine with the full middleware chain and every
// storefront route.
//
// Order: Recovery, RequestID, request logger, tracing, span enrichment,
// HTTP metrics, profiling labels, security headers, CORS, body limit. JWT
// and role checks are applied per group.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanEnricher(),
		httpMetrics,
		middleware.Profiling(cfg.ProfilingEnabled),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", c.GetString(logger.GinRequestIDKey)))
	})

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
	engine.GET("/swagger/*any", middleware.SwaggerGate(cfg.SwaggerEnabled), ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwt := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: cfg.JWTService,
		Logger:     log,
	})
	admin := middleware.RequireRole(identity.RoleAdministrator)

	r := NewRouter(engine, WithAPIVersion("v1"))

	if h.Health != nil {
		r.Register(NewDomainGroup("health", "/health").GET("", h.Health.Health))
	}

	if h.Auth != nil {
		authRoutes := NewDomainGroup("auth", "/auth")
		if cfg.AuthLimiter != nil {
			authRoutes.Use(middleware.RateLimit(cfg.AuthLimiter))
		}
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/refresh", h.Auth.Refresh)
		authRoutes.POST("/logout", h.Auth.Logout)
		authRoutes.GET("/me", jwt, h.Auth.Me)
		r.Register(authRoutes)
	}

	if h.TaxRate != nil {
		catalogRoutes := NewDomainGroup("catalog", "/tax-rates")
		catalogRoutes.GET("", h.TaxRate.List)
		catalogRoutes.GET("/:id", h.TaxRate.Get)
		r.Register(catalogRoutes)
	}

	if h.Cart != nil {
		cartRoutes := NewDomainGroup("cart", "/cart").Use(jwt)
		cartRoutes.POST("", h.Cart.Submit)
		cartRoutes.PUT("", h.Cart.Replace)
		cartRoutes.GET("", h.Cart.Current)
		cartRoutes.DELETE("", h.Cart.Abandon)
		cartRoutes.PUT("/confirm", h.Cart.Confirm)
		r.Register(cartRoutes)
	}

	if h.Sales != nil {
		salesRoutes := NewDomainGroup("sales", "/sales").Use(jwt)
		salesRoutes.GET("", h.Sales.ListMine)
		salesRoutes.GET("/:id", h.Sales.Get)
		r.Register(salesRoutes)
	}

	adminRoutes := NewDomainGroup("admin", "/admin").Use(jwt, admin)
	if h.Sales != nil {
		adminRoutes.GET("/sales", h.Sales.ListAll)
	}
	if h.Outbox != nil {
		outbox := adminRoutes.Group("outbox", "/outbox")
		outbox.GET("/stats", h.Outbox.Stats)
		outbox.GET("/dead", h.Outbox.ListDead)
		outbox.POST("/dead/retry", h.Outbox.RetryAllDead)
		outbox.POST("/dead/:id/retry", h.Outbox.RetryDead)
	}
	r.Register(adminRoutes)

	r.Setup()
	return engine, nil
}
