package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wallet-console/config"
	"wallet-console/internal/adapter/cli"
	"wallet-console/internal/adapter/storage/memory"
	redisStorage "wallet-console/internal/adapter/storage/redis"
	"wallet-console/internal/client"
	"wallet-console/internal/console"
	"wallet-console/internal/core/ports"
	"wallet-console/internal/gateway"
	"wallet-console/internal/session"
	"wallet-console/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().
		Str("service", cfg.Service.BaseURL).
		Str("session_store", cfg.Session.Store).
		Msg("Starting wallet console")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credential persistence
	var persister ports.CredentialPersister = memory.NewCredentialStore()
	if cfg.Session.Store == config.StoreRedis {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		persister = redisStorage.NewCredentialStore(rdb, cfg.Session.KeyPrefix)
	}

	store, err := session.NewStore(ctx, persister, logger.Component(log, "session"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to restore session")
	}

	// The expiry handler redirects through the app, so the app is bound last.
	terminal := cli.NewTerminal(os.Stdout)
	app := console.New(store, terminal, terminal, logger.Component(log, "console"))
	expiry := session.NewExpiryHandler(store, terminal, app, logger.Component(log, "expiry"))

	gw, err := gateway.New(cfg.Service.BaseURL, gateway.NewHTTPClient(cfg.Service.Timeout), store, expiry, logger.Component(log, "gateway"))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid account service address")
	}
	app.Bind(client.New(gw), expiry)

	ui := cli.NewUI(app, bufio.NewReader(os.Stdin), os.Stdout)
	if err := ui.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Console stopped")
		os.Exit(1)
	}
	log.Info().Msg("Console exited")
}
