// Landgrid | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cryptocountry/landgrid/internal/access"
	"github.com/cryptocountry/landgrid/internal/admin"
	"github.com/cryptocountry/landgrid/internal/auth"
	"github.com/cryptocountry/landgrid/internal/config"
	"github.com/cryptocountry/landgrid/internal/core"
	"github.com/cryptocountry/landgrid/internal/health"
	"github.com/cryptocountry/landgrid/internal/ledger"
	"github.com/cryptocountry/landgrid/internal/middleware"
	"github.com/cryptocountry/landgrid/internal/parcel"
	"github.com/cryptocountry/landgrid/internal/sales"
	"github.com/cryptocountry/landgrid/internal/server"
	"github.com/cryptocountry/landgrid/internal/token"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

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

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"driver", cfg.Database.Driver,
		"max_open_conns", cfg.Database.MaxOpenConns,
	)

	if err := ledger.Migrate(ctx, db.DB); err != nil {
		return err
	}

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
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	validate := validator.New()

	var publisher ledger.Publisher
	if cfg.Events.Publish {
		publisher = ledger.NewRedisPublisher(redis.Client, cfg.Events.Channel)
	}
	runner := ledger.NewRunner(db.DB, publisher, logger)

	accessSvc := access.NewService(runner, access.NewRepository(), logger)
	accessHandler := access.NewHandler(accessSvc, validate)

	parcelSvc := parcel.NewService(runner, parcel.NewRepository(), accessSvc, logger)
	parcelHandler := parcel.NewHandler(parcelSvc, validate)

	tokenSvc := token.NewService(runner, token.NewRepository(), accessSvc, logger)
	tokenHandler := token.NewHandler(tokenSvc, validate)

	salesSvc := sales.NewService(
		runner,
		sales.NewRepository(),
		parcelSvc,
		tokenSvc,
		accessSvc,
		cfg.SalesEngineAddress(),
		cfg.TreasuryAddress(),
		logger,
	)
	salesHandler := sales.NewHandler(salesSvc, validate)

	journal := ledger.NewJournal(db.DB)
	journalHandler := ledger.NewHandler(journal)

	authHandler := auth.NewHandler(jwtManager, validate, cfg.IsDevelopment())

	if err := bootstrapGenesis(ctx, cfg, runner, accessSvc, parcelSvc, logger); err != nil {
		return err
	}

	healthHandler := health.NewHandler()
	healthHandler.AddChecker("database", db)
	healthHandler.AddChecker("redis", redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:     db.Stats,
		RedisStats:  redis.PoolStats,
		DBPing:      db.Ping,
		RedisPing:   redis.Ping,
		LedgerStats: journal.Stats,
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
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	adminOnly := access.RequireRole(accessSvc, access.RoleAdmin)

	router.Route("/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/roles", accessHandler.Routes(authenticator))
		r.Mount("/parcels", parcelHandler.Routes(authenticator))
		r.Mount("/token", tokenHandler.Routes(authenticator))
		r.Mount("/sales", salesHandler.Routes(authenticator))
		r.Mount("/events", journalHandler.Routes())

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

// bootstrapGenesis seeds the role graph and registry settings exactly
// once per store. Reruns against an initialized store are a no-op.
func bootstrapGenesis(
	ctx context.Context,
	cfg *config.Config,
	runner *ledger.Runner,
	accessSvc *access.Service,
	parcelSvc *parcel.Service,
	logger *slog.Logger,
) error {
	transferFee, err := core.ParseAmount(cfg.Registry.TransferFee)
	if err != nil {
		return err
	}

	err = runner.RunGenesis(ctx, cfg.DeployerAddress(),
		func(ctx context.Context, uow *ledger.UnitOfWork) error {
			if err := accessSvc.Genesis(
				ctx, uow,
				cfg.DeployerAddress(),
				cfg.SalesEngineAddress(),
				cfg.Genesis.FixAdminRole,
			); err != nil {
				return err
			}
			return parcelSvc.Genesis(ctx, uow, cfg.Registry.BaseURI, transferFee)
		},
	)
	if errors.Is(err, core.ErrAlreadyInitialized) {
		logger.Info("genesis already applied")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("genesis applied",
		"deployer", cfg.Genesis.Deployer,
		"sales_engine", cfg.Genesis.SalesEngine,
		"fix_admin_role", cfg.Genesis.FixAdminRole,
	)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

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
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
