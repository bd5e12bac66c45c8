package router

import (
	"github.com/gin-gonic/gin"
	"github.com/meterly/backend/internal/domain/identity"
	"github.com/meterly/backend/internal/infrastructure/auth"
	"github.com/meterly/backend/internal/infrastructure/config"
	"github.com/meterly/backend/internal/infrastructure/logger"
	"github.com/meterly/backend/internal/interfaces/http/handler"
	"github.com/meterly/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the engine.
// Payment may be nil when no gateway is configured.
type Handlers struct {
	Auth         *handler.AuthHandler
	Usage        *handler.UsageHandler
	Plan         *handler.PlanHandler
	Subscription *handler.SubscriptionHandler
	Payment      *handler.PaymentHandler
	Health       *handler.HealthHandler
}

// Dependencies is everything NewEngine needs to build the HTTP surface
type Dependencies struct {
	HTTP        config.HTTPConfig
	Swagger     bool
	Production  bool
	ServiceName string
	Tracing     bool

	Handlers   Handlers
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	// Limiter is nil when rate limiting is disabled
	Limiter middleware.Limiter
	// Meter is nil when metrics are disabled
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewEngine builds the gin engine with global middleware, the health and
// swagger endpoints and every API route group
func NewEngine(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(deps.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, ignoring", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: deps.ServiceName,
		Enabled:     deps.Tracing,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetricsWithMeter(deps.Meter))

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = deps.Production
	engine.Use(middleware.SecureWithConfig(security))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = deps.HTTP.CORSAllowOrigins
	if len(deps.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = deps.HTTP.CORSAllowMethods
	}
	if len(deps.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = deps.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))

	if deps.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.HTTP.MaxBodySize))
	}

	if deps.Handlers.Health != nil {
		engine.GET("/health", deps.Handlers.Health.Check)
	}
	if deps.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var opts []RouterOption
	if deps.Limiter != nil {
		opts = append(opts, WithMiddleware(middleware.RateLimit(deps.Limiter, log)))
	}
	r := NewRouter(engine, opts...)
	for _, group := range APIGroups(deps) {
		r.Register(group)
	}
	r.Setup()

	return engine
}

// APIGroups returns the versioned route groups. Authenticated groups run the
// JWT middleware first, then permission checks per route.
func APIGroups(deps Dependencies) []*DomainGroup {
	h := deps.Handlers
	authn := authenticated(deps)
	perm := func(p string) gin.HandlerFunc {
		return middleware.RequireAnyPermissionWithConfig(middleware.PermissionConfig{Logger: deps.Logger}, p)
	}

	groups := make([]*DomainGroup, 0, 6)

	if h.Auth != nil {
		authGroup := NewDomainGroup("auth", "/auth")
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
		session := authGroup.Group("auth-session", "").Use(authn...)
		session.POST("/logout", h.Auth.Logout)
		session.GET("/me", h.Auth.GetCurrentUser)
		groups = append(groups, authGroup)
	}

	if h.Usage != nil {
		usage := NewDomainGroup("usage", "/usage").Use(authn...)
		usage.POST("", perm(identity.PermUsageRecord), h.Usage.Record)
		usage.GET("", perm(identity.PermUsageReadAll), h.Usage.List)
		usage.GET("/statistics", h.Usage.Statistics)
		groups = append(groups, usage)

		users := NewDomainGroup("users", "/users").Use(authn...)
		users.GET("/:id/usage",
			middleware.RequireSelfOrPermissionWithConfig(
				middleware.PermissionConfig{Logger: deps.Logger}, "id", identity.PermUsageReadAll),
			h.Usage.ListForUser)
		groups = append(groups, users)
	}

	if h.Plan != nil {
		plans := NewDomainGroup("plans", "/plans").Use(authn...)
		plans.GET("", perm(identity.PermPlanRead), h.Plan.List)
		plans.GET("/:id", perm(identity.PermPlanRead), h.Plan.GetByID)
		plans.POST("", perm(identity.PermPlanWrite), h.Plan.Create)
		plans.PUT("/:id", perm(identity.PermPlanWrite), h.Plan.Update)
		plans.DELETE("/:id", perm(identity.PermPlanWrite), h.Plan.Delete)
		groups = append(groups, plans)
	}

	if h.Subscription != nil {
		subs := NewDomainGroup("subscriptions", "/subscriptions").Use(authn...)
		subs.GET("/me", h.Subscription.Me)
		subs.GET("", perm(identity.PermSubscriptionRead), h.Subscription.List)
		subs.GET("/:id", perm(identity.PermSubscriptionRead), h.Subscription.GetByID)
		subs.POST("", perm(identity.PermSubscriptionWrite), h.Subscription.Create)
		subs.POST("/renew", perm(identity.PermSubscriptionWrite), h.Subscription.Renew)
		subs.PUT("/:id", perm(identity.PermSubscriptionWrite), h.Subscription.Update)
		subs.DELETE("/:id", perm(identity.PermSubscriptionWrite), h.Subscription.Delete)
		groups = append(groups, subs)
	}

	if h.Payment != nil {
		payments := NewDomainGroup("payments", "/payments/paystack")
		payments.GET("/callback", h.Payment.Callback)
		payments.POST("/:plan_id", h.Payment.Initiate)
		groups = append(groups, payments)
	}

	return groups
}

func authenticated(deps Dependencies) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     deps.JWTService,
			TokenBlacklist: deps.Blacklist,
			Logger:         deps.Logger,
		}),
		middleware.TracingAttributeInjector(),
	}
}
