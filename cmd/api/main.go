// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/classifieds/internal/admin"
	"github.com/carterperez-dev/classifieds/internal/auth"
	"github.com/carterperez-dev/classifieds/internal/chat"
	"github.com/carterperez-dev/classifieds/internal/config"
	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/favorite"
	"github.com/carterperez-dev/classifieds/internal/health"
	"github.com/carterperez-dev/classifieds/internal/kyc"
	"github.com/carterperez-dev/classifieds/internal/listing"
	"github.com/carterperez-dev/classifieds/internal/middleware"
	"github.com/carterperez-dev/classifieds/internal/notification"
	"github.com/carterperez-dev/classifieds/internal/realtime"
	"github.com/carterperez-dev/classifieds/internal/report"
	"github.com/carterperez-dev/classifieds/internal/review"
	"github.com/carterperez-dev/classifieds/internal/screenshot"
	"github.com/carterperez-dev/classifieds/internal/server"
	"github.com/carterperez-dev/classifieds/internal/settings"
	"github.com/carterperez-dev/classifieds/internal/social"
	"github.com/carterperez-dev/classifieds/internal/storage"
	"github.com/carterperez-dev/classifieds/internal/user"
	"github.com/carterperez-dev/classifieds/internal/wallet"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"),
		"optional YAML config file layered under the environment")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("classifieds api exited", "error", err)
		os.Exit(1)
	}
}

// teardown closes resources in reverse order of acquisition.
type teardown struct {
	logger *slog.Logger
	steps  []step
}

type step struct {
	name  string
	close func(context.Context) error
}

func (t *teardown) add(name string, fn func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, close: fn})
}

func (t *teardown) run(ctx context.Context) {
	for i := len(t.steps) - 1; i >= 0; i-- {
		if err := t.steps[i].close(ctx); err != nil {
			t.logger.Error("close failed", "resource", t.steps[i].name, "error", err)
		}
	}
}

func ignoreCtx(fn func() error) func(context.Context) error {
	return func(context.Context) error { return fn() }
}

//nolint:funlen // one place wires every module
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

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	closers := &teardown{logger: logger}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		closers.run(ctx)
	}()

	logger.Info("starting classifieds api",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		// tracing is optional; the marketplace runs without it
		logger.Warn("telemetry disabled", "error", err)
		telemetry, _ = core.NewTelemetry(ctx, config.OtelConfig{}, cfg.App)
	}
	closers.add("telemetry", telemetry.Shutdown)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	closers.add("postgres", ignoreCtx(db.Close))
	logger.Info("postgres ready",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	closers.add("redis", ignoreCtx(redis.Close))
	logger.Info("redis ready",
		"pool_size", cfg.Redis.PoolSize,
	)

	if cfg.Database.AutoMigrate {
		applied, migErr := core.Migrate(ctx, db.DB)
		if migErr != nil {
			return migErr
		}
		logger.Info("migrations applied", "count", len(applied))
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("signing keys loaded", "key_id", jwtManager.KeyID())

	meter := telemetry.Meter

	broker := newBroker(cfg.Realtime, redis)
	closers.add("realtime broker", ignoreCtx(broker.Close))
	logger.Info("realtime broker ready", "driver", cfg.Realtime.Driver)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	closers.add("object storage", ignoreCtx(store.Close))
	logger.Info("object storage ready",
		"driver", cfg.Storage.Driver,
		"bucket", cfg.Storage.Bucket,
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, logger)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(
		authRepo,
		jwtManager,
		userSvc,
		auth.NewRedisBlacklist(redis.Client),
		auth.NewGoogleVerifier(cfg.OAuth),
	)
	authHandler := auth.NewHandler(authSvc)

	notifySvc := notification.NewService(
		notification.NewRepository(db.DB), broker, logger)
	notifyHandler := notification.NewHandler(notifySvc)

	settingsSvc := settings.NewService(
		settings.NewRepository(db.DB),
		settings.NewRedisCache(redis.Client),
		logger,
	)
	settingsHandler := settings.NewHandler(settingsSvc)

	walletSvc := wallet.NewService(wallet.Deps{
		DB:       db,
		Repo:     wallet.NewRepository(db.DB),
		Plans:    settingsSvc,
		Notifier: notifySvc,
		Broker:   broker,
		Meter:    meter,
		Logger:   logger,
		Period:   cfg.Wallet.SubscriptionPeriod,
	})
	walletHandler := wallet.NewHandler(walletSvc)

	listingSvc := listing.NewService(listing.Deps{
		DB:       db,
		Repo:     listing.NewRepository(db.DB),
		Limits:   settingsSvc,
		Charger:  walletSvc,
		Notifier: notifySvc,
		Logger:   logger,
	})
	listingHandler := listing.NewHandler(listingSvc)

	favoriteHandler := favorite.NewHandler(
		favorite.NewService(favorite.NewRepository(db.DB), logger))

	socialHandler := social.NewHandler(
		social.NewService(social.NewRepository(db.DB), notifySvc, logger))

	reviewHandler := review.NewHandler(
		review.NewService(review.NewRepository(db.DB), listingSvc, notifySvc, logger))

	reportSvc := report.NewService(report.NewRepository(db.DB), logger)
	reportHandler := report.NewHandler(reportSvc)

	kycSvc := kyc.NewService(db, kyc.NewRepository(db.DB), notifySvc, logger)
	kycHandler := kyc.NewHandler(kycSvc)

	chatHandler := chat.NewHandler(
		chat.NewService(db, chat.NewRepository(db.DB), listingSvc, broker, logger))

	uploadHandler := storage.NewHandler(
		storage.NewUploader(store, cfg.Storage.MaxUploadBytes, logger))

	corsPolicy := middleware.NewCORS(cfg.CORS)
	realtimeHandler := realtime.NewHandler(
		broker, cfg.Realtime, middleware.OriginCheck(corsPolicy), logger)

	var browser *screenshot.Browser
	guard := screenshot.NewGuard()
	if cfg.Screenshot.Enabled {
		browser = screenshot.NewBrowser(cfg.Screenshot, guard)
		closers.add("browser", ignoreCtx(browser.Close))
	}

	healthHandler := health.NewHandler().
		Register("database", db).
		Register("redis", redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Counters: admin.Counters{
			Users:           userSvc.CountUsers,
			ListingsByState: listingSvc.CountByStatus,
			PendingTx:       walletSvc.CountPending,
			PendingKYC:      kycSvc.CountPending,
			Reports:         reportSvc.Count,
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})
	srv.OnShutdown(realtimeHandler.Shutdown)

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	throttle := middleware.NewThrottle(redis.Client, logger)
	router.Use(throttle.Limit(middleware.Policy{
		Name: "global",
		Limit: middleware.Window(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		FailOpen: true,
	}))
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(corsPolicy.Handler)

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	adminOnly := middleware.RequireAdmin

	signInGuard := throttle.Limit(middleware.Policy{
		Name:  "auth",
		Limit: middleware.PerMinute(10, 5),
		Key:   middleware.ByIP,
	})
	sellerBudget := throttle.ByTier("media",
		middleware.TierBudgets(middleware.PerMinute(20, 5)))

	router.Route("/v1", func(r chi.Router) {
		r.Group(func(g chi.Router) {
			g.Use(signInGuard)
			authHandler.RegisterRoutes(g, authenticator)
		})

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		listingHandler.RegisterRoutes(r, authenticator, optionalAuth)
		listingHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		walletHandler.RegisterRoutes(r, authenticator)
		walletHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		kycHandler.RegisterRoutes(r, authenticator)
		kycHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		reportHandler.RegisterRoutes(r, authenticator)
		reportHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		settingsHandler.RegisterRoutes(r)
		settingsHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		favoriteHandler.RegisterRoutes(r, authenticator)
		socialHandler.RegisterRoutes(r, authenticator)
		reviewHandler.RegisterRoutes(r, authenticator)
		chatHandler.RegisterRoutes(r, authenticator)
		notifyHandler.RegisterRoutes(r, authenticator)
		realtimeHandler.RegisterRoutes(r, authenticator)

		r.Group(func(g chi.Router) {
			g.Use(optionalAuth, sellerBudget)
			uploadHandler.RegisterRoutes(g, authenticator)
			if browser != nil {
				screenshot.NewHandler(
					screenshot.NewService(browser, guard, cfg.Screenshot.Timeout, logger),
				).RegisterRoutes(g, authenticator)
			}
		})

		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
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
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("classifieds api stopped")
	return nil
}

func newBroker(cfg config.RealtimeConfig, redis *core.Redis) realtime.Broker {
	if cfg.Driver == "memory" {
		return realtime.NewMemoryBroker(cfg.BufferSize)
	}
	return realtime.NewRedisBroker(redis.Client, cfg.BufferSize)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
