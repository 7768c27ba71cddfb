package main

import (
	"context"
	"fmt"
	"os"

	"coin-ledger/config"
	"coin-ledger/internal/adapter/cli"
	pgStorage "coin-ledger/internal/adapter/storage/postgres"
	redisStorage "coin-ledger/internal/adapter/storage/redis"
	"coin-ledger/internal/core/ports"
	"coin-ledger/internal/service"
	"coin-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Console)

	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		log.Info().Msg("Schema migrated")
		return
	}

	// Redis is optional: the roster cache degrades to direct store reads.
	// The interface stays nil unless the connection succeeds.
	var rosterCache ports.RosterCache
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, roster cache disabled")
	} else {
		defer rdb.Close()
		rosterCache = redisStorage.NewRosterCache(rdb)
		log.Info().Msg("Redis connected")
	}

	adminRepo := pgStorage.NewAdminRepo(pool)
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	clientRepo := pgStorage.NewClientRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	hashSvc := service.NewCredentialHasher()

	registrySvc := service.NewRegistryService(
		adminRepo, merchantRepo, clientRepo,
		rosterCache, hashSvc, cfg.Redis.RosterTTL, log,
	)
	transferSvc := service.NewTransferService(
		adminRepo, merchantRepo, clientRepo, txRepo,
		transactor, rosterCache, log,
	)
	historySvc := service.NewHistoryService(txRepo, merchantRepo)

	menu := cli.NewMenu(registrySvc, transferSvc, historySvc, os.Stdin, os.Stdout)
	if err := menu.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Console loop failed")
	}
}
