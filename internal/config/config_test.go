package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestValidateCatchesBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Exchange.BaseURL = ""
	cfg.Swap.ProxyRouter = "not-an-address"
	cfg.Wallet.EncryptedKeyPath = "/keys/wallet.json"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "proxy_router")
	assert.Contains(t, err.Error(), "key_password")
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "serve"

[exchange]
base_url = "https://exchange.test"

[feed]
interval = "5s"
symbols = ["ALPHA_382USDT"]
`), 0o600))

	t.Setenv("ALPHADESK_REDIS_ADDR", "redis.test:6379")
	t.Setenv("ALPHADESK_SWAP_CHAIN_ID", "97")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "serve", cfg.Mode)
	assert.Equal(t, "https://exchange.test", cfg.Exchange.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Feed.Interval.Duration)
	assert.Equal(t, []string{"ALPHA_382USDT"}, cfg.Feed.Symbols)
	assert.Equal(t, "redis.test:6379", cfg.Redis.Addr)
	assert.Equal(t, int64(97), cfg.Swap.ChainID)

	// File values the env does not touch keep their defaults.
	assert.Equal(t, "USDT", cfg.Exchange.QuoteAsset)
	require.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Aggregator.APIKey = "secret-key"
	cfg.Wallet.PrivateKey = "0xdeadbeef"
	cfg.Postgres.Password = "hunter2"

	red := RedactedConfig(&cfg)
	assert.Equal(t, "***", red.Aggregator.APIKey)
	assert.Equal(t, "***", red.Wallet.PrivateKey)
	assert.Equal(t, "***", red.Postgres.Password)

	// Originals untouched.
	assert.Equal(t, "secret-key", cfg.Aggregator.APIKey)
}
