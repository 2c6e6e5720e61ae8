// Command alphadesk is the backend entry point for the Alpha trading console.
// It loads configuration, validates it, wires dependencies, sets up signal
// handling, and starts the application in the configured mode.
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

	"github.com/alanyoungcy/alphadesk/internal/app"
	"github.com/alanyoungcy/alphadesk/internal/config"
	"github.com/alanyoungcy/alphadesk/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	encryptKey := flag.Bool("encrypt-key", false, "encrypt the wallet key from the environment, write it to -key-out, and exit")
	keyOut := flag.String("key-out", "wallet.key.json", "output path for -encrypt-key")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *encryptKey {
		if err := encryptKeyFile(*keyOut); err != nil {
			logger.Error("key encryption failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("encrypted key written", slog.String("path", *keyOut))
		return
	}

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("alphadesk starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	// Create the application.
	application := app.New(cfg, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application.
	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if err == context.Canceled {
			logger.Info("application shut down gracefully")
		} else {
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("alphadesk stopped")
}

// encryptKeyFile produces the encrypted key file the wallet loader consumes.
// The key and password come from the same environment variables the config
// loader reads, so neither appears in argv or shell history.
func encryptKeyFile(path string) error {
	key := os.Getenv("ALPHADESK_WALLET_PRIVATE_KEY")
	password := os.Getenv("ALPHADESK_WALLET_KEY_PASSWORD")
	if key == "" || password == "" {
		return errors.New("set ALPHADESK_WALLET_PRIVATE_KEY and ALPHADESK_WALLET_KEY_PASSWORD")
	}

	blob, err := wallet.EncryptKey(key, password)
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o600)
}
