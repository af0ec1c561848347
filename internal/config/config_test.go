package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadPartialFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
log_level = "debug"

table {
  starting_balance = 5000
  bet_step         = 25
  min_bet          = 25
}

store {
  backend    = "redis"
  redis_addr = "cache:6379"
  redis_db   = 2
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5000, cfg.Table.StartingBalance)
	assert.Equal(t, 25, cfg.Table.BetStep)
	assert.Equal(t, 500, cfg.Table.MaxBet, "unset fields keep defaults")
	assert.Equal(t, ":8080", cfg.Server.Address, "missing block keeps defaults")
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	require.NoError(t, cfg.Validate())
}

func TestLoadInvalidHCL(t *testing.T) {
	t.Parallel()

	_, err := Load(writeFile(t, `table { starting_balance = `))
	require.Error(t, err)

	_, err = Load(writeFile(t, `unknown_attr = 1`))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"BLACKJACK_LOG_LEVEL":           "warn",
		"BLACKJACK_ADDRESS":             "127.0.0.1:9000",
		"BLACKJACK_STORE_BACKEND":       "memory",
		"BLACKJACK_STARTING_BALANCE":    "250",
		"BLACKJACK_DECISION_TIMEOUT_MS": "1500",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 250, cfg.Table.StartingBalance)
	assert.Equal(t, 1500*time.Millisecond, cfg.DecisionTimeout())

	bad := Default()
	err := bad.ApplyEnv(func(k string) string {
		if k == "BLACKJACK_REDIS_DB" {
			return "two"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLACKJACK_REDIS_DB")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero balance", func(c *Config) { c.Table.StartingBalance = 0 }},
		{"zero step", func(c *Config) { c.Table.BetStep = 0 }},
		{"min off step", func(c *Config) { c.Table.MinBet = 15 }},
		{"max below min", func(c *Config) { c.Table.MaxBet = 5 }},
		{"too many seats", func(c *Config) { c.Table.MaxSeats = 4 }},
		{"negative delay", func(c *Config) { c.Server.DealerDelayMS = -1 }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }},
		{"file without path", func(c *Config) { c.Store.Path = "" }},
		{"redis without addr", func(c *Config) { c.Store.Backend = "redis"; c.Store.RedisAddr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConversions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Len(t, cfg.TableOptions(), 3)
	opts := cfg.StoreOptions()
	assert.Equal(t, cfg.Store.Path, opts.Path)
	assert.Equal(t, "blackjack:", opts.Prefix)
	assert.Equal(t, 500*time.Millisecond, cfg.DealerDelay())
}
