// Package config wires configuration into a running llmonitor API server.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/api"
	"github.com/Egham-7/llmonitor-api/internal/config"
	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/observability"
	"github.com/Egham-7/llmonitor-api/internal/services/apps"
	"github.com/Egham-7/llmonitor-api/internal/services/appusers"
	"github.com/Egham-7/llmonitor-api/internal/services/auth"
	"github.com/Egham-7/llmonitor-api/internal/services/billing"
	"github.com/Egham-7/llmonitor-api/internal/services/cache"
	"github.com/Egham-7/llmonitor-api/internal/services/database"
	"github.com/Egham-7/llmonitor-api/internal/services/feedback"
	"github.com/Egham-7/llmonitor-api/internal/services/middleware"
	"github.com/Egham-7/llmonitor-api/internal/services/profiles"
	"github.com/Egham-7/llmonitor-api/internal/services/runs"
	"github.com/Egham-7/llmonitor-api/internal/services/usage"
	"github.com/Egham-7/llmonitor-api/pkg/builder"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/redis/go-redis/v9"
)

const (
	shutdownTimeout   = 30 * time.Second
	maxRequestTimeout = 2 * time.Minute
)

// Server represents an llmonitor API server instance.
type Server struct {
	config   *config.Config
	app      *fiber.App
	redis    *redis.Client
	db       *database.DB
	builder  *builder.Builder
	metrics  *observability.Metrics
	notifier *feedback.Notifier
}

type serverInfrastructure struct {
	redis *redis.Client
	db    *database.DB
}

// NewServer creates a new Server with the given configuration.
// The cfg parameter is required and must not be nil.
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() or the builder package to create config")
	}

	return &Server{
		config: cfg,
	}
}

// NewServerWithBuilder creates a Server from a configuration builder, which
// also carries custom middlewares, rate limit and timeout settings.
func NewServerWithBuilder(b *builder.Builder) *Server {
	return &Server{
		config:  b.Build(),
		builder: b,
	}
}

// Setup validates the configuration, connects infrastructure and builds the
// fiber app. Call Close to release what Setup acquired.
func (s *Server) Setup() (*fiber.App, error) {
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)

	s.app = createFiberApp(s.config)
	s.metrics = observability.NewMetrics()

	// === Infrastructure Setup ===
	infra, err := initializeInfrastructure(s.config)
	if err != nil {
		return nil, err
	}
	s.redis = infra.redis
	s.db = infra.db

	// === Services & Routes ===
	routes, requireAuth, err := s.initializeRoutes()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	// === Middleware Setup ===
	setupMiddleware(s.app, s.config, s.builder, s.metrics)

	routes.Register(s.app, requireAuth)
	s.app.Get("/", welcomeHandler())

	return s.app, nil
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	if _, err := s.Setup(); err != nil {
		return err
	}
	defer s.Close()

	listenAddr := ":" + s.config.Server.Port

	fmt.Printf("llmonitor API starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())
	fmt.Printf("   GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	}

	fiberlog.Info("Server shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	shutdownErrChan := make(chan error, 1)
	go func() {
		shutdownErrChan <- s.app.ShutdownWithTimeout(shutdownTimeout)
	}()

	select {
	case err := <-shutdownErrChan:
		if err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		fiberlog.Info("Server shutdown completed successfully")
	case <-shutdownCtx.Done():
		return fmt.Errorf("shutdown timeout exceeded")
	}

	return nil
}

// Close stops the feedback notifier and closes redis and the database.
func (s *Server) Close() {
	s.notifier.Stop()
	s.notifier = nil

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			fiberlog.Errorf("Failed to close Redis client: %v", err)
		}
		s.redis = nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			fiberlog.Errorf("Failed to close database connection: %v", err)
		}
		s.db = nil
	}
}

func (s *Server) initializeRoutes() (*api.Routes, fiber.Handler, error) {
	cfg := s.config

	queryCache, err := cache.NewFromConfig(cfg.Cache, s.redis, s.metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	verifier, err := newTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, nil, err
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier, nil)
	access := auth.NewOwnerAccessProvider(s.db.DB)

	profilesSvc := profiles.NewService(s.db.DB, queryCache)
	usageSvc := usage.NewService(s.db.DB, queryCache)

	s.notifier = feedback.NewNotifier(cfg.Feedback, s.metrics)
	if s.notifier == nil {
		fiberlog.Info("Feedback webhook not configured - notifications disabled")
	}

	routes := &api.Routes{
		Health:   api.NewHealthHandler(s.db, s.redis),
		Profile:  api.NewProfileHandler(profilesSvc),
		Apps:     api.NewAppsHandler(apps.NewService(s.db.DB, queryCache)),
		Runs:     api.NewRunsHandler(runs.NewService(s.db.DB, queryCache), access),
		Usage:    api.NewUsageHandler(usageSvc),
		AppUsers: api.NewAppUsersHandler(appusers.NewService(s.db.DB, queryCache, usageSvc), access),
		Feedback: api.NewFeedbackHandler(feedback.NewService(s.db.DB, s.notifier, s.metrics)),
		Metrics:  s.metrics,
		Access:   access,
	}

	if cfg.Billing != nil && cfg.Billing.SecretKey != "" {
		routes.Billing = api.NewBillingHandler(billing.NewService(*cfg.Billing, profilesSvc))
	} else {
		fiberlog.Info("Stripe not configured - billing routes disabled")
	}

	if cfg.Auth.ClerkConfig != nil && cfg.Auth.ClerkConfig.WebhookSecret != "" {
		clerkHandler, err := api.NewClerkWebhookHandler(cfg.Auth.ClerkConfig.WebhookSecret, profilesSvc)
		if err != nil {
			return nil, nil, err
		}
		routes.Clerk = clerkHandler
	}

	return routes, authMiddleware.RequireAuth(), nil
}

func newTokenVerifier(cfg *models.AuthConfig) (auth.TokenVerifier, error) {
	switch cfg.Provider {
	case models.AuthProviderClerk:
		return auth.NewClerkVerifier(cfg.ClerkConfig.SecretKey), nil
	case models.AuthProviderJWT:
		return auth.NewJWTVerifier(cfg.JWTConfig.Secret, cfg.JWTConfig.Issuer, cfg.JWTConfig.Audience), nil
	default:
		return nil, fmt.Errorf("unsupported auth provider: %s", cfg.Provider)
	}
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:           "llmonitor API v1.0",
		EnablePrintRoutes: !isProd,
		ReadTimeout:       maxRequestTimeout,
		WriteTimeout:      maxRequestTimeout,
		IdleTimeout:       5 * time.Minute,
		ReadBufferSize:    8192,
		WriteBufferSize:   8192,
		CaseSensitive:     true,
		StrictRouting:     false,
		Network:           "tcp",
		ServerHeader:      "llmonitor",
		ErrorHandler:      errorHandler,
	})
}

// errorHandler renders errors that escape handlers in the same
// {"error": ...} shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		err = models.NewTimeoutError(c.Path(), err)
	}

	appErr := models.SanitizeError(err)
	if appErr.GetStatusCode() >= fiber.StatusInternalServerError {
		fiberlog.Errorf("[%v] Unhandled error on %s: %v", c.Locals("requestid"), c.Path(), err)
	}
	return c.Status(appErr.GetStatusCode()).JSON(fiber.Map{"error": appErr.Message})
}

func setupMiddleware(app *fiber.App, cfg *config.Config, b *builder.Builder, metrics *observability.Metrics) {
	isProd := cfg.IsProduction()

	// Recover middleware (must be first)
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	app.Use(requestid.New())
	app.Use(metrics.Middleware())

	rlCfg := models.DefaultRateLimit()
	if b != nil && b.GetRateLimitConfig() != nil {
		rlCfg = b.GetRateLimitConfig()
	}
	keyFunc := rlCfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *fiber.Ctx) string {
			return c.IP()
		}
	}
	app.Use(limiter.New(limiter.Config{
		Max:               rlCfg.Max,
		Expiration:        rlCfg.Expiration,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      keyFunc,
		LimitReached: func(c *fiber.Ctx) error {
			appErr := models.NewRateLimitError(rlCfg.Describe())
			return c.Status(appErr.GetStatusCode()).JSON(fiber.Map{
				"error": appErr.Message,
				"code":  appErr.Code,
			})
		},
	}))

	if b != nil && b.GetTimeoutConfig() != nil {
		timeoutDuration := b.GetTimeoutConfig().Timeout
		app.Use(timeout.NewWithContext(func(c *fiber.Ctx) error {
			return c.Next()
		}, timeoutDuration))
	} else {
		app.Use(requestTimeout(cfg.Server.RequestTimeout))
	}

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	allowedHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization", "User-Agent",
		api.HeaderAppID, "X-Request-Timeout", fiber.HeaderXRequestID,
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowHeaders:     strings.Join(allowedHeaders, ", "),
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: cfg.Server.AllowedOrigins != "*",
		MaxAge:           86400,
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
	}))

	if b != nil {
		for _, mw := range b.GetMiddlewares() {
			app.Use(mw)
		}
	}

	// Profiler (dev only)
	if !isProd {
		app.Use(pprof.New())
	}
}

// requestTimeout bounds each request's context. Clients may ask for a
// different budget with X-Request-Timeout, capped at two minutes.
func requestTimeout(defaultTimeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		budget := defaultTimeout
		if customTimeout := c.Get("X-Request-Timeout"); customTimeout != "" {
			if d, err := time.ParseDuration(customTimeout); err == nil && d > 0 {
				budget = min(d, maxRequestTimeout)
			}
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), budget)
		defer cancel()
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info", "":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	case "panic":
		fiberlog.SetLevel(fiberlog.LevelPanic)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}

	fiberlog.Infof("Log level set to: %s", logLevel)
}

func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	redisURL := cfg.RedisURL()
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 50
	opt.MinIdleConns = 10
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ConnMaxLifetime = 30 * time.Minute
	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	fiberlog.Debugf("Redis client configuration: PoolSize=%d, MinIdle=%d", opt.PoolSize, opt.MinIdleConns)

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			fiberlog.Errorf("Failed to close Redis client: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func initializeInfrastructure(cfg *config.Config) (*serverInfrastructure, error) {
	infra := &serverInfrastructure{}

	redisClient, err := createRedisClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}
	infra.redis = redisClient

	if redisClient != nil {
		fiberlog.Info("Redis client initialized successfully")
	} else {
		fiberlog.Info("Redis not configured - using in-memory query cache")
	}

	db, err := database.New(*cfg.Database)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	infra.db = db
	fiberlog.Infof("Database (%s) initialized successfully", db.DriverName())

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	fiberlog.Info("Database migrations completed successfully")

	return infra, nil
}

func welcomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":    "llmonitor API",
			"version":    "1.0.0",
			"go_version": runtime.Version(),
			"status":     "running",
			"endpoints": fiber.Map{
				"apps":     "/v1/apps",
				"profile":  "/v1/profile",
				"feedback": "/api/user/feedback",
				"health":   "/health",
				"metrics":  "/metrics",
			},
		})
	}
}
