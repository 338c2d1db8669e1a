// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/avocado-market/avocado-api/internal/access"
	"github.com/avocado-market/avocado-api/internal/admin"
	"github.com/avocado-market/avocado-api/internal/auth"
	"github.com/avocado-market/avocado-api/internal/cart"
	"github.com/avocado-market/avocado-api/internal/category"
	"github.com/avocado-market/avocado-api/internal/config"
	"github.com/avocado-market/avocado-api/internal/core"
	"github.com/avocado-market/avocado-api/internal/dashboard"
	"github.com/avocado-market/avocado-api/internal/events"
	"github.com/avocado-market/avocado-api/internal/favorite"
	"github.com/avocado-market/avocado-api/internal/health"
	"github.com/avocado-market/avocado-api/internal/location"
	"github.com/avocado-market/avocado-api/internal/mail"
	"github.com/avocado-market/avocado-api/internal/middleware"
	"github.com/avocado-market/avocado-api/internal/order"
	"github.com/avocado-market/avocado-api/internal/product"
	"github.com/avocado-market/avocado-api/internal/rbac"
	"github.com/avocado-market/avocado-api/internal/server"
	"github.com/avocado-market/avocado-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(cfg.Database.URL, core.MigrateUp); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}

	profiles := access.NewCachedResolver(
		access.NewSQLResolver(db.DB),
		redis.Client,
		cfg.Access.CacheTTL,
	)
	guard := access.NewGuard(profiles)

	bus := events.NewBus(redis.Client)
	feed := order.NewFeed(cfg.CORS.AllowedOrigins)

	orderEvents, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	go feed.Run(ctx, orderEvents)

	cartSvc := cart.NewService(cart.NewRepository(db.DB), db, bus)
	userSvc := user.NewService(user.NewRepository(db.DB), db, cart.OpenBasket, profiles)

	authSvc := auth.NewService(userSvc, jwtManager, mail.New(cfg.SMTP, logger), auth.ServiceConfig{
		FrontendURL:      cfg.App.FrontendURL,
		ResetTokenExpire: cfg.JWT.ResetTokenExpire,
	})
	if cfg.Google.Enabled() {
		authSvc.WithGoogle(
			auth.NewGoogleOAuth(cfg.Google),
			auth.NewStateStore(redis.Client, cfg.Google.StateTTL),
		)
		logger.Info("google login enabled", "callback", cfg.Google.CallbackURL)
	}

	orderSvc := order.NewService(order.NewRepository(db.DB), cartSvc, bus)

	authHandler := auth.NewHandler(authSvc, guard)
	userHandler := user.NewHandler(userSvc)
	rbacHandler := rbac.NewHandler(rbac.NewService(rbac.NewRepository(db.DB), profiles))
	categoryHandler := category.NewHandler(category.NewService(category.NewRepository(db.DB)))
	productHandler := product.NewHandler(product.NewService(product.NewRepository(db.DB)))
	favoriteHandler := favorite.NewHandler(favorite.NewService(favorite.NewRepository(db.DB)), guard)
	locationHandler := location.NewHandler(location.NewService(location.NewRepository(db.DB)))
	cartHandler := cart.NewHandler(cartSvc, guard)
	orderHandler := order.NewHandler(orderSvc, guard, feed)
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(dashboard.NewRepository(db.DB)))

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.Sources{
		DBStats:     db.Stats,
		DBPing:      db.Ping,
		RedisStats:  redis.PoolStats,
		RedisPing:   redis.Ping,
		FeedClients: feed.Clients,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticated := chain(
		middleware.Authenticator(jwtManager),
		middleware.RequireActive(userSvc),
	)

	authMiddlewares := auth.Middlewares{
		Authenticated: authenticated,
		OptionalAuth:  middleware.OptionalAuth(jwtManager),
		LoginLimit: middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:    middleware.PerMinute(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthRequests),
			KeyFunc:  middleware.KeyByIPAndRoute("auth"),
			FailOpen: true,
		}).Handler,
		ResetLimit: middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:    middleware.PerHour(cfg.RateLimit.ResetRequests, cfg.RateLimit.ResetRequests),
			KeyFunc:  middleware.KeyByIPAndRoute("password-reset"),
			FailOpen: true,
		}).Handler,
	}

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authMiddlewares)
		userHandler.RegisterRoutes(r, authenticated, guard)
		rbacHandler.RegisterRoutes(r, authenticated, guard)
		categoryHandler.RegisterRoutes(r, authenticated, guard)
		productHandler.RegisterRoutes(r, authenticated, guard)
		favoriteHandler.RegisterRoutes(r, authenticated)
		locationHandler.RegisterRoutes(r, authenticated)
		cartHandler.RegisterRoutes(r, authenticated)
		orderHandler.RegisterRoutes(r, authenticated)
		dashboardHandler.RegisterRoutes(r, authenticated, guard)
		adminHandler.RegisterRoutes(r, authenticated, guard)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
