package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/internhub/internal/client/api"
	"github.com/iudanet/internhub/internal/client/auth"
	"github.com/iudanet/internhub/internal/client/checkout"
	"github.com/iudanet/internhub/internal/client/cli"
	"github.com/iudanet/internhub/internal/client/iocli"
	"github.com/iudanet/internhub/internal/client/payment"
	"github.com/iudanet/internhub/internal/client/session"
	"github.com/iudanet/internhub/internal/client/storage"
	"github.com/iudanet/internhub/internal/client/storage/boltdb"
	"github.com/iudanet/internhub/internal/client/storage/memory"
	"github.com/iudanet/internhub/internal/client/storage/sealed"
	"github.com/iudanet/internhub/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Глобальные флаги, значения из окружения - по умолчанию
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", cfg.ServerURL, "API base URL")
	dbPath := flag.String("db", cfg.DBPath, "Path to local session database")
	ephemeral := flag.Bool("ephemeral", false, "Keep the session in memory only")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Usage = func() { cli.PrintUsage(os.Stderr) }

	flag.Parse()

	if *showVersion {
		printVersion()
		return 0
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(os.Stderr)
		return 1
	}

	level := cfg.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokenStore, closeStore, err := openStorage(ctx, &cfg, *dbPath, *ephemeral)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer closeStore()

	sessionManager := session.NewManager(tokenStore, logger)
	if err := sessionManager.Init(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
		return 1
	}
	defer sessionManager.Teardown(ctx)

	apiClient := api.NewClient(*serverURL, sessionManager,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithRedirector(cli.NewRedirector(os.Stderr)),
		api.WithLogger(logger),
	)

	console := iocli.NewStdio()
	authService := auth.NewService(apiClient, sessionManager, logger)
	controller := payment.NewController(apiClient, checkout.Promise(checkout.NewTerminal(console)), logger)

	app := cli.New(console, authService, controller, logger)
	if err := app.Run(ctx, args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.PrintUsage(os.Stderr)
		}
		return 1
	}
	return 0
}

// openStorage выбирает хранилище токена: bbolt файл или память,
// с шифрованием, если задана passphrase
func openStorage(ctx context.Context, cfg *config.ClientConfig, path string, ephemeral bool) (storage.TokenStorage, func(), error) {
	var (
		tokens storage.TokenStorage
		meta   storage.MetadataStorage
		closer = func() {}
	)

	if ephemeral {
		mem := memory.New()
		tokens, meta = mem, mem
	} else {
		boltStorage, err := boltdb.New(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		tokens, meta = boltStorage, boltStorage
		closer = func() {
			if err := boltStorage.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}
	}

	if !cfg.EncryptionEnabled() {
		return tokens, closer, nil
	}

	sealedStorage, err := sealed.Open(ctx, tokens, meta, cfg.TokenPassphrase)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("failed to enable token encryption: %w", err)
	}
	return sealedStorage, closer, nil
}

func printVersion() {
	fmt.Printf("InternHub Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
