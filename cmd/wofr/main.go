package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vinaykumar231/WOFR-Backend/internal/access"
	"github.com/vinaykumar231/WOFR-Backend/internal/app"
	"github.com/vinaykumar231/WOFR-Backend/internal/assignments"
	"github.com/vinaykumar231/WOFR-Backend/internal/auth"
	"github.com/vinaykumar231/WOFR-Backend/internal/catalog"
	"github.com/vinaykumar231/WOFR-Backend/internal/mappings"
	"github.com/vinaykumar231/WOFR-Backend/internal/observability"
	"github.com/vinaykumar231/WOFR-Backend/internal/platform/cache"
	"github.com/vinaykumar231/WOFR-Backend/internal/platform/db"
	"github.com/vinaykumar231/WOFR-Backend/internal/rbac"
	"github.com/vinaykumar231/WOFR-Backend/internal/settings"
	"github.com/vinaykumar231/WOFR-Backend/internal/tenants"
	"github.com/vinaykumar231/WOFR-Backend/internal/users"
	"github.com/vinaykumar231/WOFR-Backend/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, dbpool, logger); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	settingsService, err := settings.Open(cfg.SettingsFile, logger)
	if err != nil {
		logger.Error("load settings", slog.Any("error", err))
		os.Exit(1)
	}
	if err := settingsService.Watch(ctx); err != nil {
		logger.Warn("settings watcher disabled", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()

	accessCache := access.NewCache(redisClient, cfg.AccessCacheTTL, logger, metrics.Registerer())
	if err := accessCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("access cache listener disabled", slog.Any("error", err))
	}
	resolver := access.NewResolver(access.NewRepository(dbpool), accessCache)
	rbacMiddleware := rbac.Middleware{Resolver: resolver, Logger: logger, Decisions: metrics}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("init tokens", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	usersService := users.NewService(users.NewRepository(dbpool))
	tenantsRepo := tenants.NewRepository(dbpool)
	tenantsService := tenants.NewService(tenantsRepo)

	authService := auth.NewService(
		usersService,
		auth.NewOTPStore(redisClient, "otp"),
		tokens,
		jobClient,
		settingsService,
		auth.Config{OTPTTL: cfg.OTPTTL, VerifiedTTL: cfg.VerifiedEmailTTL},
		logger,
	)

	catalogHandler := func(kind catalog.Kind) *catalog.Handler {
		svc := catalog.NewService(kind, catalog.NewRepository(dbpool, kind), accessCache)
		return catalog.NewHandler(logger, svc, rbacMiddleware)
	}

	mappingsService := mappings.NewService(mappings.NewRepository(dbpool), accessCache, logger)
	assignmentsService := assignments.NewService(
		assignments.NewRepository(dbpool),
		tenants.NewDirectory(usersService, tenantsRepo),
		accessCache,
		logger,
	)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Tokens:             tokens,
		Metrics:            metrics,
		AuthHandler:        auth.NewHandler(logger, authService),
		RolesHandler:       catalogHandler(catalog.KindRole),
		ModulesHandler:     catalogHandler(catalog.KindModule),
		ActionsHandler:     catalogHandler(catalog.KindAction),
		MappingsHandler:    mappings.NewHandler(logger, mappingsService, rbacMiddleware),
		AssignmentsHandler: assignments.NewHandler(logger, assignmentsService, rbacMiddleware),
		AccessHandler:      access.NewHandler(logger, resolver),
		TenantsHandler:     tenants.NewHandler(logger, tenantsService, rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, usersService, rbacMiddleware),
		SettingsHandler:    settings.NewHandler(logger, settingsService, rbacMiddleware),
		JobHandler:         jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
