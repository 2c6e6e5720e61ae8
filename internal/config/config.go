// Package config defines the top-level configuration for the trading console
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ALPHADESK_* environment variables.
type Config struct {
	Exchange   ExchangeConfig   `toml:"exchange"`
	Aggregator AggregatorConfig `toml:"aggregator"`
	Swap       SwapConfig       `toml:"swap"`
	Wallet     WalletConfig     `toml:"wallet"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Feed       FeedConfig       `toml:"feed"`
	Archive    ArchiveConfig    `toml:"archive"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// ExchangeConfig holds the exchange host. The session credential itself is
// never configured here; it arrives at runtime through the pasted curl
// command.
type ExchangeConfig struct {
	BaseURL    string `toml:"base_url"`
	QuoteAsset string `toml:"quote_asset"`
}

// AggregatorConfig holds the swap-route aggregator endpoint and API key.
type AggregatorConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// SwapConfig holds on-chain swap parameters: router addresses, the wrapped
// native token, and defaults applied when a request leaves them unset.
type SwapConfig struct {
	ProxyRouter        string `toml:"proxy_router"`
	DexRouter          string `toml:"dex_router"`
	WrappedNative      string `toml:"wrapped_native"`
	ChainID            int64  `toml:"chain_id"`
	DefaultSlippagePct string `toml:"default_slippage_pct"`
	DefaultVariant     string `toml:"default_variant"`
}

// WalletConfig holds the signing key material and RPC endpoint. A wallet is
// only required to execute swaps; quote and build work without one.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
	RPCURL           string `toml:"rpc_url"`
}

// Enabled reports whether any key source is configured.
func (w WalletConfig) Enabled() bool {
	return w.PrivateKey != "" || w.EncryptedKeyPath != ""
}

// PostgresConfig holds PostgreSQL connection parameters for the local order
// history store.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for order archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled         bool     `toml:"enabled"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// FeedConfig holds the price poller parameters.
type FeedConfig struct {
	Enabled  bool     `toml:"enabled"`
	Symbols  []string `toml:"symbols"`
	Interval duration `toml:"interval"`
}

// ArchiveConfig holds order-history archival parameters.
type ArchiveConfig struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
	Prune         bool `toml:"prune"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Exchange: ExchangeConfig{
			BaseURL:    "https://www.example-exchange.com",
			QuoteAsset: "USDT",
		},
		Aggregator: AggregatorConfig{
			BaseURL: "https://li.quest",
		},
		Swap: SwapConfig{
			ChainID:            56,
			DefaultSlippagePct: "0.5",
			DefaultVariant:     "swap",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "alphadesk",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "alphadesk-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       20,
			RateLimitWindow: duration{time.Second},
		},
		Feed: FeedConfig{
			Enabled:  true,
			Interval: duration{2 * time.Second},
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 90,
			Prune:         false,
		},
		Notify: NotifyConfig{
			Events: []string{"order.placed", "order.failed", "order.filled", "swap.submitted", "swap.failed", "credential.expired"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve": true,
	"feed":  true,
	"full":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, feed, full)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Exchange
	if c.Exchange.BaseURL == "" {
		errs = append(errs, "exchange: base_url must not be empty")
	}
	if c.Exchange.QuoteAsset == "" {
		errs = append(errs, "exchange: quote_asset must not be empty")
	}

	// Aggregator
	if c.Aggregator.BaseURL == "" {
		errs = append(errs, "aggregator: base_url must not be empty")
	}

	// Swap: router addresses are optional (the aggregator path works without
	// them) but must be valid hex addresses when set.
	if c.Swap.ChainID <= 0 {
		errs = append(errs, fmt.Sprintf("swap: chain_id must be positive, got %d", c.Swap.ChainID))
	}
	for name, addr := range map[string]string{
		"proxy_router":   c.Swap.ProxyRouter,
		"dex_router":     c.Swap.DexRouter,
		"wrapped_native": c.Swap.WrappedNative,
	} {
		if addr != "" && !common.IsHexAddress(addr) {
			errs = append(errs, fmt.Sprintf("swap: %s %q is not a valid address", name, addr))
		}
	}

	// Wallet: a password is only meaningful with an encrypted key file, and
	// execution requires an RPC endpoint.
	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}
	if c.Wallet.Enabled() && c.Wallet.RPCURL == "" {
		errs = append(errs, "wallet: rpc_url is required when a signing key is configured")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 is only needed when archival is on.
	if c.Archive.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	// Feed
	if c.Feed.Enabled && c.Feed.Interval.Duration <= 0 {
		errs = append(errs, "feed: interval must be positive when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
