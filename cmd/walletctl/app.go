package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"virtual-wallet/config"
	"virtual-wallet/internal/adapter/storage/memory"
	pgStorage "virtual-wallet/internal/adapter/storage/postgres"
	redisStorage "virtual-wallet/internal/adapter/storage/redis"
	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/internal/service"
	"virtual-wallet/pkg/logger"
)

// CLI-wide flags. Short lived process, globals are fine here.
var configPath = flag.String("config", "", "Path to the config file (defaults to ./config.yaml)")

// app bundles the wired services behind a selected store backend.
type app struct {
	cfg      *config.Config
	store    ports.SnapshotStore
	cards    *service.CardService
	accounts *service.AccountService
	wallets  *service.WalletService
	cleanup  func()
}

// newApp loads configuration and wires the service graph.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	a := &app{cfg: cfg, cleanup: func() {}}

	switch cfg.Store.Backend {
	case "redis":
		client, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		a.store = redisStorage.NewSnapshotStore(client)
		a.cleanup = func() { _ = client.Close() }
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		store := pgStorage.NewSnapshotStore(pool)
		if err := store.Init(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		a.store = store
		a.cleanup = pool.Close
	case "memory":
		a.store = memory.New()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	reporter := service.NewLogReporter(log)
	a.cards = service.NewCardService(a.store, reporter, log)
	a.accounts = service.NewAccountService(a.store, a.cards, reporter, log)
	a.wallets = service.NewWalletService(a.store, a.cards, a.accounts, service.NewArgon2PINHasher(), reporter, log)

	return a, nil
}

// loadWallet resolves a wallet by its string ID.
func (a *app) loadWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet id %q: %w", id, err)
	}
	w, err := a.wallets.Load(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("wallet %s not found", id)
	}
	return w, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
