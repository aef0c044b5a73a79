package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-console/config"
	httpHandler "wallet-console/internal/adapter/http/handler"
	"wallet-console/internal/adapter/http/middleware"
	"wallet-console/internal/adapter/storage/memory"
	pgStorage "wallet-console/internal/adapter/storage/postgres"
	redisStorage "wallet-console/internal/adapter/storage/redis"
	"wallet-console/internal/core/ports"
	"wallet-console/internal/service"
	"wallet-console/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	if cfg.Sandbox.JWT.Secret == "" {
		log.Fatal().Msg("sandbox.jwt.secret is required (WALLET_SANDBOX_JWT_SECRET)")
	}

	log.Info().
		Str("addr", cfg.Sandbox.Addr()).
		Str("store", cfg.Sandbox.Store).
		Bool("rate_limit", cfg.Sandbox.RateLimit.Enabled).
		Msg("Starting sandbox account service")

	ctx := context.Background()

	var healthCheckers []ports.HealthChecker

	// Accounts live in memory for the lifetime of the process unless
	// PostgreSQL is configured.
	var accountRepo ports.AccountRepository = memory.NewAccountRepo()
	if cfg.Sandbox.Store == config.StorePostgres {
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		if err := pgStorage.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database schema")
		}
		accountRepo = pgStorage.NewAccountRepo(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
		log.Info().Msg("PostgreSQL connected")
	}

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.Sandbox.JWT.Secret, cfg.Sandbox.JWT.Expiry, cfg.Sandbox.JWT.Issuer)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)
	bankSvc := service.NewBankService(accountRepo)

	if admin := cfg.Sandbox.Admin; admin.Password != "" {
		created, err := service.SeedAdmin(ctx, authSvc, admin.Username, admin.Email, admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed admin account")
		}
		log.Info().Str("email", admin.Email).Bool("created", created).Msg("Admin account ready")
	}

	// Redis is only needed for sign-in throttling.
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.Sandbox.RateLimit.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		rateLimitStore = redisStorage.NewRateLimitStore(rdb, "sandbox:")
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		BankSvc:        bankSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		LoginRule: middleware.RateLimitRule{
			Limit:  cfg.Sandbox.RateLimit.Login,
			Window: cfg.Sandbox.RateLimit.Window,
		},
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	srv := &http.Server{
		Addr:              cfg.Sandbox.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
