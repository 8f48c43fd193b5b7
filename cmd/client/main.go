package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lunabook/sessionkit/internal/client/api"
	"github.com/lunabook/sessionkit/internal/client/auth"
	"github.com/lunabook/sessionkit/internal/client/cli"
	"github.com/lunabook/sessionkit/internal/client/creds"
	"github.com/lunabook/sessionkit/internal/client/iocli"
	"github.com/lunabook/sessionkit/internal/client/push"
	"github.com/lunabook/sessionkit/internal/client/session"
	"github.com/lunabook/sessionkit/internal/client/storage"
	"github.com/lunabook/sessionkit/internal/client/storage/boltdb"
	"github.com/lunabook/sessionkit/internal/client/storage/sqlite"
	"github.com/lunabook/sessionkit/internal/config"
	"github.com/lunabook/sessionkit/internal/crypto"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "lunabook.yaml", "Path to config file")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*configPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, args []string) error {
	ctx := context.Background()
	io := iocli.NewStdio()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLogger(cfg.Log.Level)

	// Хранилище учетных данных
	credStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := credStorage.Close(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}()

	// Ключ шифрования хранилища из install secret
	secret, err := crypto.LoadOrCreateSecret(cfg.Storage.KeyPath)
	if err != nil {
		return fmt.Errorf("failed to load install secret: %w", err)
	}
	storageKey, err := crypto.DeriveStorageKey(secret)
	if err != nil {
		return fmt.Errorf("failed to derive storage key: %w", err)
	}

	credStore, err := creds.New(credStorage, storageKey)
	if err != nil {
		return fmt.Errorf("failed to create credential store: %w", err)
	}

	// Машина состояний сессии и HTTP клиент.
	// Терминальный провал обновления токенов сразу переводит сессию
	// в unauthenticated, чтобы состояние не разошлось с хранилищем.
	sessions := session.NewManager()
	apiClient := api.NewClient(cfg.Server.BaseURL, credStore,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithSessionExpiredHook(func(ctx context.Context) {
			sessions.SetUnauthenticated()
		}),
	)

	registrar := push.NewRegistrar(apiClient, pushTokenFromEnv, credStore, cfg.Push.Platform)
	authService := auth.NewService(apiClient, credStore, sessions, registrar)

	c := cli.New(io, authService, sessions)

	if len(args) == 0 {
		c.PrintUsage()
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "login":
		return c.RunLogin(ctx)
	case "register":
		return c.RunRegister(ctx)
	case "logout":
		return c.RunLogout(ctx)
	case "status":
		return c.RunStatus(ctx)
	case "me":
		return c.RunMe(ctx)
	case "verify":
		return c.RunVerify(ctx)
	case "resend":
		return c.RunResend(ctx)
	case "forgot":
		return c.RunForgot(ctx)
	case "reset":
		return c.RunReset(ctx)
	default:
		c.PrintUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// openStorage открывает бэкенд хранилища согласно конфигу
func openStorage(ctx context.Context, cfg *config.Config) (storage.CredentialStorage, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.New(ctx, cfg.Storage.Path)
	default:
		return boltdb.New(ctx, cfg.Storage.Path)
	}
}

// pushTokenFromEnv отдает push-токен из окружения.
// В мобильном приложении на его месте стоит платформенный провайдер FCM/APNS.
func pushTokenFromEnv(ctx context.Context) (string, error) {
	return os.Getenv("LUNABOOK_PUSH_TOKEN"), nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})))
}

func printVersion() {
	fmt.Printf("Lunabook Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
