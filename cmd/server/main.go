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
	billingapp "github.com/meterly/backend/internal/application/billing"
	identityapp "github.com/meterly/backend/internal/application/identity"
	"github.com/meterly/backend/internal/infrastructure/auth"
	"github.com/meterly/backend/internal/infrastructure/cache"
	"github.com/meterly/backend/internal/infrastructure/config"
	"github.com/meterly/backend/internal/infrastructure/logger"
	"github.com/meterly/backend/internal/infrastructure/payment"
	"github.com/meterly/backend/internal/infrastructure/persistence"
	"github.com/meterly/backend/internal/infrastructure/telemetry"
	"github.com/meterly/backend/internal/interfaces/http/handler"
	"github.com/meterly/backend/internal/interfaces/http/middleware"
	"github.com/meterly/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	_ "github.com/meterly/backend/docs"
)

//	@title			Meterly API
//	@version		1.0
//	@description	Prepaid subscription and usage metering backend
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/meterly/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	baseLog, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		ServiceName: serviceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := telemetry.Bridge(baseLog, logProvider, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Meterly",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}

	var (
		meter        metric.Meter
		usageMetrics *telemetry.UsageMetrics
	)
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter(serviceName)
		usageMetrics, err = telemetry.NewUsageMetrics(meter)
		if err != nil {
			log.Warn("Usage metrics unavailable", zap.Error(err))
			usageMetrics = nil
		}
	}

	backends, err := cache.NewBackends(ctx, cfg.Redis, cfg.App.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist
	if backends.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(backends.Client)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Database.SlowThreshold,
	}, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	subRepo := persistence.NewGormSubscriptionRepository(db.DB)
	usageRepo := persistence.NewGormUsageRepository(db.DB)
	txnRepo := persistence.NewGormTransactionRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	planService := billingapp.NewPlanService(planRepo, log)
	subscriptionService := billingapp.NewSubscriptionService(subRepo, planRepo, userRepo, log)
	subscriptionService.SetMetrics(usageMetrics)
	usageRecorder := billingapp.NewUsageRecorder(userRepo, txScope, log)
	usageRecorder.SetMetrics(usageMetrics)
	usageReporter := billingapp.NewUsageReporter(subRepo, usageRepo, log)

	var paymentHandler *handler.PaymentHandler
	if cfg.Paystack.SecretKey != "" {
		gateway, err := payment.NewPaystackAdapter(&payment.PaystackConfig{
			SecretKey: cfg.Paystack.SecretKey,
			BaseURL:   cfg.Paystack.BaseURL,
			Timeout:   cfg.Paystack.Timeout,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize Paystack", zap.Error(err))
		}
		paymentService := billingapp.NewPaymentService(
			planRepo, userRepo, txnRepo, gateway, backends.Idempotency, txScope,
			billingapp.PaymentServiceConfig{
				CallbackURL:    cfg.Paystack.CallbackURL,
				IdempotencyTTL: cfg.Payment.IdempotencyTTL,
			},
			log,
		)
		paymentService.SetMetrics(usageMetrics)
		paymentHandler = handler.NewPaymentHandler(paymentService)
	} else {
		log.Warn("Paystack secret key not set, payment routes disabled")
	}

	healthChecks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if backends.Client != nil {
		healthChecks["redis"] = func(ctx context.Context) error {
			return backends.Client.Ping(ctx).Err()
		}
	}

	var limiter middleware.Limiter
	if cfg.HTTP.RateLimitEnabled {
		if backends.Client != nil {
			limiter = middleware.NewRedisRateLimiter(backends.Client, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewEngine(router.Dependencies{
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger.Enabled,
		Production:  cfg.App.IsProduction(),
		ServiceName: serviceName,
		Tracing:     tracerProvider.IsEnabled(),
		Handlers: router.Handlers{
			Auth:         handler.NewAuthHandler(authService),
			Usage:        handler.NewUsageHandler(usageRecorder, usageReporter),
			Plan:         handler.NewPlanHandler(planService),
			Subscription: handler.NewSubscriptionHandler(subscriptionService),
			Payment:      paymentHandler,
			Health:       handler.NewHealthHandler(healthChecks),
		},
		JWTService: jwtService,
		Blacklist:  blacklist,
		Limiter:    limiter,
		Meter:      meter,
		Logger:     log,
	})

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush telemetry last so shutdown spans and logs are exported
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
