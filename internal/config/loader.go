package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ALPHADESK_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ALPHADESK_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Exchange ──
	setStr(&cfg.Exchange.BaseURL, "ALPHADESK_EXCHANGE_BASE_URL")
	setStr(&cfg.Exchange.QuoteAsset, "ALPHADESK_EXCHANGE_QUOTE_ASSET")

	// ── Aggregator ──
	setStr(&cfg.Aggregator.BaseURL, "ALPHADESK_AGGREGATOR_BASE_URL")
	setStr(&cfg.Aggregator.APIKey, "ALPHADESK_AGGREGATOR_API_KEY")

	// ── Swap ──
	setStr(&cfg.Swap.ProxyRouter, "ALPHADESK_SWAP_PROXY_ROUTER")
	setStr(&cfg.Swap.DexRouter, "ALPHADESK_SWAP_DEX_ROUTER")
	setStr(&cfg.Swap.WrappedNative, "ALPHADESK_SWAP_WRAPPED_NATIVE")
	setInt64(&cfg.Swap.ChainID, "ALPHADESK_SWAP_CHAIN_ID")
	setStr(&cfg.Swap.DefaultSlippagePct, "ALPHADESK_SWAP_DEFAULT_SLIPPAGE_PCT")
	setStr(&cfg.Swap.DefaultVariant, "ALPHADESK_SWAP_DEFAULT_VARIANT")

	// ── Wallet ──
	setStr(&cfg.Wallet.PrivateKey, "ALPHADESK_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "ALPHADESK_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "ALPHADESK_WALLET_KEY_PASSWORD")
	setStr(&cfg.Wallet.RPCURL, "ALPHADESK_WALLET_RPC_URL")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ALPHADESK_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ALPHADESK_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ALPHADESK_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ALPHADESK_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ALPHADESK_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ALPHADESK_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ALPHADESK_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ALPHADESK_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ALPHADESK_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ALPHADESK_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ALPHADESK_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ALPHADESK_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ALPHADESK_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ALPHADESK_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ALPHADESK_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ALPHADESK_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "ALPHADESK_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ALPHADESK_S3_REGION")
	setStr(&cfg.S3.Bucket, "ALPHADESK_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ALPHADESK_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ALPHADESK_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ALPHADESK_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ALPHADESK_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ALPHADESK_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ALPHADESK_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ALPHADESK_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "ALPHADESK_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "ALPHADESK_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateLimitWindow, "ALPHADESK_SERVER_RATE_LIMIT_WINDOW")

	// ── Feed ──
	setBool(&cfg.Feed.Enabled, "ALPHADESK_FEED_ENABLED")
	setStringSlice(&cfg.Feed.Symbols, "ALPHADESK_FEED_SYMBOLS")
	setDuration(&cfg.Feed.Interval, "ALPHADESK_FEED_INTERVAL")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "ALPHADESK_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "ALPHADESK_ARCHIVE_RETENTION_DAYS")
	setBool(&cfg.Archive.Prune, "ALPHADESK_ARCHIVE_PRUNE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ALPHADESK_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ALPHADESK_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ALPHADESK_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "ALPHADESK_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "ALPHADESK_MODE")
	setStr(&cfg.LogLevel, "ALPHADESK_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
