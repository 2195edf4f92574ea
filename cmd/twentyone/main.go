package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/fadedpez/twentyone/internal/config"
	"github.com/fadedpez/twentyone/internal/logging"
	walletRepo "github.com/fadedpez/twentyone/pkg/repositories/wallet"
	walletService "github.com/fadedpez/twentyone/pkg/services/wallet"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	LogLevel string           `help:"Log level (debug|info|warn|error), overrides LOG_LEVEL"`
	Backend  string           `help:"Wallet backend (memory|sqlite), overrides WALLET_BACKEND"`

	Play    PlayCmd    `cmd:"" help:"Play automatic rounds of blackjack"`
	Wallet  WalletCmd  `cmd:"" help:"Show a player's balance and recent transactions"`
	Migrate MigrateCmd `cmd:"" help:"Apply the wallet schema to the sqlite database"`
}

// app carries what every command needs
type app struct {
	ctx    context.Context
	cfg    *config.Config
	logger *logging.Logger
	clock  quartz.Clock
	out    io.Writer
}

func newApp(cli *CLI) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cli.Backend != "" {
		cfg.WalletBackend = cli.Backend
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLoggerWithWriter(os.Stderr, level)
	logging.Default = logger

	return &app{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logger,
		clock:  quartz.NewReal(),
		out:    os.Stdout,
	}, nil
}

// openWallets opens the configured wallet store. The caller closes the repository.
func (a *app) openWallets(ctx context.Context) (walletRepo.Repository, *walletService.Service, error) {
	var repo walletRepo.Repository
	switch a.cfg.WalletBackend {
	case config.BackendSQLite:
		if err := a.cfg.EnsureDataDir(); err != nil {
			return nil, nil, err
		}
		sqliteRepo, err := walletRepo.NewSQLiteRepository(ctx, a.cfg.WalletDBPath, a.logger)
		if err != nil {
			return nil, nil, err
		}
		repo = sqliteRepo
	default:
		repo = walletRepo.NewMemoryRepository()
	}

	service := walletService.NewService(repo, a.cfg.StartingBalance, a.clock)
	service.SetLogger(a.logger)
	return repo, service, nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("twentyone"),
		kong.Description("Single-deck blackjack with persistent wallets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	a, err := newApp(&cli)
	kctx.FatalIfErrorf(err)

	err = kctx.Run(a)
	kctx.FatalIfErrorf(err)
}
