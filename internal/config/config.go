// Package config loads blackjack settings from an HCL file, an optional .env
// file and BLACKJACK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
)

// Config is the complete configuration.
type Config struct {
	LogLevel string
	Table    TableSettings
	Server   ServerSettings
	Store    StoreSettings
}

// TableSettings configures every Table created by the commands.
type TableSettings struct {
	StartingBalance int `hcl:"starting_balance,optional"`
	BetStep         int `hcl:"bet_step,optional"`
	MinBet          int `hcl:"min_bet,optional"`
	MaxBet          int `hcl:"max_bet,optional"`
	MaxSeats        int `hcl:"max_seats,optional"`
}

// ServerSettings configures the WebSocket table server.
type ServerSettings struct {
	Address           string `hcl:"address,optional"`
	DecisionTimeoutMS int    `hcl:"decision_timeout_ms,optional"`
	DealerDelayMS     int    `hcl:"dealer_delay_ms,optional"`
}

// StoreSettings selects the persistence backend.
type StoreSettings struct {
	Backend       string `hcl:"backend,optional"`
	Path          string `hcl:"path,optional"`
	RedisAddr     string `hcl:"redis_addr,optional"`
	RedisPassword string `hcl:"redis_password,optional"`
	RedisDB       int    `hcl:"redis_db,optional"`
	Prefix        string `hcl:"prefix,optional"`
}

// fileConfig mirrors Config with optional blocks for decoding.
type fileConfig struct {
	LogLevel string          `hcl:"log_level,optional"`
	Table    *TableSettings  `hcl:"table,block"`
	Server   *ServerSettings `hcl:"server,block"`
	Store    *StoreSettings  `hcl:"store,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Table: TableSettings{
			StartingBalance: 1000,
			BetStep:         game.DefaultBetStep,
			MinBet:          game.DefaultMinBet,
			MaxBet:          500,
			MaxSeats:        game.DefaultMaxSeats,
		},
		Server: ServerSettings{
			Address:           ":8080",
			DecisionTimeoutMS: 30000,
			DealerDelayMS:     500,
		},
		Store: StoreSettings{
			Backend:   store.BackendFile,
			Path:      DefaultStorePath(),
			RedisAddr: "localhost:6379",
			Prefix:    "blackjack:",
		},
	}
}

// DefaultStorePath is the file store location under the user config dir.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".blackjack.json"
	}
	return filepath.Join(dir, "blackjack", "store.json")
}

// Load reads an HCL config file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Table != nil {
		mergeTable(&cfg.Table, *fc.Table)
	}
	if fc.Server != nil {
		mergeServer(&cfg.Server, *fc.Server)
	}
	if fc.Store != nil {
		mergeStore(&cfg.Store, *fc.Store)
	}
	return cfg, nil
}

// LoadAll loads .env (best effort), then filename, then applies the
// environment and validates the result.
func LoadAll(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Zero values in the file keep the defaults.
func mergeTable(dst *TableSettings, src TableSettings) {
	if src.StartingBalance != 0 {
		dst.StartingBalance = src.StartingBalance
	}
	if src.BetStep != 0 {
		dst.BetStep = src.BetStep
	}
	if src.MinBet != 0 {
		dst.MinBet = src.MinBet
	}
	if src.MaxBet != 0 {
		dst.MaxBet = src.MaxBet
	}
	if src.MaxSeats != 0 {
		dst.MaxSeats = src.MaxSeats
	}
}

func mergeServer(dst *ServerSettings, src ServerSettings) {
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.DecisionTimeoutMS != 0 {
		dst.DecisionTimeoutMS = src.DecisionTimeoutMS
	}
	if src.DealerDelayMS != 0 {
		dst.DealerDelayMS = src.DealerDelayMS
	}
}

func mergeStore(dst *StoreSettings, src StoreSettings) {
	if src.Backend != "" {
		dst.Backend = src.Backend
	}
	if src.Path != "" {
		dst.Path = src.Path
	}
	if src.RedisAddr != "" {
		dst.RedisAddr = src.RedisAddr
	}
	if src.RedisPassword != "" {
		dst.RedisPassword = src.RedisPassword
	}
	if src.RedisDB != 0 {
		dst.RedisDB = src.RedisDB
	}
	if src.Prefix != "" {
		dst.Prefix = src.Prefix
	}
}

// ApplyEnv overrides settings from BLACKJACK_* variables looked up with
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := getenv(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n
		return nil
	}

	str("BLACKJACK_LOG_LEVEL", &c.LogLevel)
	str("BLACKJACK_ADDRESS", &c.Server.Address)
	str("BLACKJACK_STORE_BACKEND", &c.Store.Backend)
	str("BLACKJACK_STORE_PATH", &c.Store.Path)
	str("BLACKJACK_REDIS_ADDR", &c.Store.RedisAddr)
	str("BLACKJACK_REDIS_PASSWORD", &c.Store.RedisPassword)

	return errors.Join(
		num("BLACKJACK_REDIS_DB", &c.Store.RedisDB),
		num("BLACKJACK_STARTING_BALANCE", &c.Table.StartingBalance),
		num("BLACKJACK_DECISION_TIMEOUT_MS", &c.Server.DecisionTimeoutMS),
	)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	t := c.Table
	switch {
	case t.StartingBalance <= 0:
		return fmt.Errorf("table.starting_balance must be positive, got %d", t.StartingBalance)
	case t.BetStep <= 0:
		return fmt.Errorf("table.bet_step must be positive, got %d", t.BetStep)
	case t.MinBet <= 0 || t.MinBet%t.BetStep != 0:
		return fmt.Errorf("table.min_bet %d must be a positive multiple of bet_step %d", t.MinBet, t.BetStep)
	case t.MaxBet < 0 || (t.MaxBet > 0 && t.MaxBet < t.MinBet):
		return fmt.Errorf("table.max_bet %d must be 0 or at least min_bet %d", t.MaxBet, t.MinBet)
	case t.MaxSeats < 1 || t.MaxSeats > game.MaxSeats:
		return fmt.Errorf("table.max_seats must be 1-%d, got %d", game.MaxSeats, t.MaxSeats)
	}

	if c.Server.DecisionTimeoutMS < 0 || c.Server.DealerDelayMS < 0 {
		return fmt.Errorf("server timings must not be negative")
	}

	switch c.Store.Backend {
	case store.BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file backend")
		}
	case store.BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	case store.BackendMemory:
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// TableOptions converts the table settings into game options.
func (c *Config) TableOptions() []game.Option {
	return []game.Option{
		game.WithBetStep(c.Table.BetStep),
		game.WithBetLimits(c.Table.MinBet, c.Table.MaxBet),
		game.WithMaxSeats(c.Table.MaxSeats),
	}
}

// StoreOptions converts the store settings for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Store.Backend,
		Path:          c.Store.Path,
		RedisAddr:     c.Store.RedisAddr,
		RedisPassword: c.Store.RedisPassword,
		RedisDB:       c.Store.RedisDB,
		Prefix:        c.Store.Prefix,
	}
}

// DecisionTimeout is how long the server waits for a player action.
func (c *Config) DecisionTimeout() time.Duration {
	return time.Duration(c.Server.DecisionTimeoutMS) * time.Millisecond
}

// DealerDelay is the pause between dealer cards in the terminal UI.
func (c *Config) DealerDelay() time.Duration {
	return time.Duration(c.Server.DealerDelayMS) * time.Millisecond
}
