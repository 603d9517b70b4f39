// Package app wires the modules together and owns the HTTP router.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/catalog"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/delivery"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/payment"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/payment/gateway"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/review"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/support"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/user"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/cache"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/config"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/database"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/logger"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/metrics"
	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired application.
type App struct {
	config  *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	redis   redis.UniversalClient
	router  *gin.Engine
	metrics *metrics.Metrics

	// Handlers
	userHandler     *user.Handler
	catalogHandler  *catalog.Handler
	orderHandler    *order.Handler
	paymentHandler  *payment.Handler
	webhookHandler  *payment.WebhookHandler
	reviewHandler   *review.Handler
	supportHandler  *support.Handler
	deliveryHandler *delivery.Handler

	// Cross-module services and infrastructure
	tokens         *user.TokenManager
	rateLimiter    *cache.RateLimiter
	eventStore     payment.ProcessedEventStore
	paymentService *payment.Service
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	zapLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{
		config:  cfg,
		logger:  zapLog,
		metrics: metrics.New(""),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			zapLog.Warn("redis connection failed, falling back to in-process state", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	}

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}
	app.router = app.setupRouter()

	return app, nil
}

func (a *App) initModules() error {
	cfg := a.config

	// Idempotency guard: shared via Redis when available, otherwise a
	// process-local cache. Either way the order state machine remains
	// the correctness backstop for duplicate deliveries.
	if a.redis != nil {
		a.eventStore = payment.NewRedisEventStore(a.redis, cfg.Gateway.EventCacheTTL, a.logger)
		a.rateLimiter = cache.NewRateLimiter(a.redis)
	} else {
		a.eventStore = payment.NewMemoryEventStore(cfg.Gateway.EventCacheTTL)
	}

	// Payment gateways
	registry := gateway.NewRegistry()
	registry.Register(gateway.NewRazorpay(&gateway.RazorpayConfig{
		KeyID:         cfg.Gateway.Razorpay.KeyID,
		KeySecret:     cfg.Gateway.Razorpay.KeySecret,
		WebhookSecret: cfg.Gateway.Razorpay.WebhookSecret,
		BaseURL:       cfg.Gateway.Razorpay.BaseURL,
		Timeout:       cfg.Gateway.Razorpay.Timeout,
	}))
	if cfg.Gateway.Stripe.APIKey != "" {
		registry.Register(gateway.NewStripe(&gateway.StripeConfig{
			APIKey:         cfg.Gateway.Stripe.APIKey,
			PublishableKey: cfg.Gateway.Stripe.PublishableKey,
			WebhookSecret:  cfg.Gateway.Stripe.WebhookSecret,
		}))
	}

	// User module
	a.tokens = user.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	userRepo := user.NewRepository(a.db)
	userService := user.NewService(userRepo, a.tokens, a.logger)
	a.userHandler = user.NewHandler(userService, a.logger)

	// Catalog module
	catalogRepo := catalog.NewRepository(a.db)
	catalogService := catalog.NewService(catalogRepo, a.logger)
	a.catalogHandler = catalog.NewHandler(catalogService, a.logger)

	// Order module
	orderRepo := order.NewRepository(a.db)
	orderService := order.NewService(orderRepo, catalogService, registry, a.logger)
	a.orderHandler = order.NewHandler(orderService, a.logger)

	// Delivery module: storage proxy, email sender, and the
	// confirmation notifier the payment pipeline fires.
	var sender delivery.EmailSender
	if cfg.SMTP.Host != "" {
		sender = delivery.NewSMTPEmailSender(&delivery.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			User:        cfg.SMTP.User,
			Password:    cfg.SMTP.Password,
			FromAddress: cfg.SMTP.FromAddress,
			FromName:    cfg.SMTP.FromName,
			SendTimeout: cfg.SMTP.SendTimeout,
		}, a.metrics, a.logger)
	} else {
		sender = delivery.NewNoOpEmailSender(a.logger)
	}

	notifier := delivery.NewNotifier(sender, userService, orderRepo, cfg.Server.BaseURL, a.logger)

	storage, err := delivery.NewStorage(&delivery.StorageConfig{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	deliveryService := delivery.NewService(orderRepo, catalogService, storage, notifier, cfg.Storage.DownloadExpiry, a.logger)
	a.deliveryHandler = delivery.NewHandler(deliveryService, a.logger)

	// Payment module: the webhook reconciliation pipeline.
	reconciler := payment.NewReconciler(orderRepo, catalogService, notifier, a.metrics, a.logger)
	paymentRepo := payment.NewRepository(a.db)
	a.paymentService = payment.NewService(
		paymentRepo,
		registry,
		a.eventStore,
		reconciler,
		orderRepo,
		cfg.Gateway.ProcessTimeout,
		a.metrics,
		a.logger,
	)
	a.paymentHandler = payment.NewHandler(a.paymentService, a.logger)
	a.webhookHandler = payment.NewWebhookHandler(a.paymentService, a.logger)

	// Review module
	reviewRepo := review.NewRepository(a.db)
	reviewService := review.NewService(reviewRepo, catalogService, orderService, a.logger)
	a.reviewHandler = review.NewHandler(reviewService, catalogService, a.logger)

	// Support module
	supportRepo := support.NewRepository(a.db)
	supportService := support.NewService(supportRepo, a.logger)
	a.supportHandler = support.NewHandler(supportService, a.logger)

	return nil
}

func (a *App) setupRouter() *gin.Engine {
	cfg := a.config

	router := gin.New()
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(a.logger))
	router.Use(middleware.Metrics(a.metrics))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhooks sit outside the API group: no auth, no rate limit, raw
	// body required for signature verification.
	webhooks := router.Group("/webhooks")
	a.webhookHandler.RegisterRoutes(webhooks)

	api := router.Group("/api/v1")
	api.Use(middleware.OptionalAuth(a.tokens))

	loginLimiter := a.loginRateLimit(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	a.userHandler.RegisterRoutes(api, middleware.RequireAuth(a.tokens), loginLimiter)
	a.catalogHandler.RegisterRoutes(api)
	a.orderHandler.RegisterRoutes(api, middleware.RequireAuth(a.tokens))
	a.paymentHandler.RegisterRoutes(api)
	a.reviewHandler.RegisterRoutes(api)
	a.supportHandler.RegisterRoutes(api)
	a.deliveryHandler.RegisterRoutes(api)

	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.RequireAuth(a.tokens), middleware.RequireAdmin())
	a.catalogHandler.RegisterAdminRoutes(admin)
	a.orderHandler.RegisterAdminRoutes(admin)
	a.paymentHandler.RegisterAdminRoutes(admin)
	a.reviewHandler.RegisterAdminRoutes(admin)
	a.supportHandler.RegisterAdminRoutes(admin)
	a.deliveryHandler.RegisterAdminRoutes(admin)

	return router
}

// loginRateLimit guards the credential endpoints. Without Redis the
// limiter is disabled rather than failing closed.
func (a *App) loginRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	if a.rateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(a.rateLimiter, middleware.RateLimitConfig{
		Limit:  limit,
		Window: window,
		KeyFunc: func(c *gin.Context) string {
			return "login:" + c.ClientIP()
		},
	})
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Migrate runs the schema migrations.
func (a *App) Migrate(ctx context.Context) error {
	return a.db.WithContext(ctx).AutoMigrate(
		&user.User{},
		&catalog.Product{},
		&order.Order{},
		&order.OrderItem{},
		&payment.WebhookEvent{},
		&review.Review{},
		&support.Ticket{},
		&support.TicketMessage{},
	)
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.paymentService != nil {
		a.paymentService.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("database close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
