package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	MnemonicFile string `envconfig:"FAUCET_MNEMONIC_FILE"`
	PrivateKey   string `envconfig:"FAUCET_PRIVATE_KEY"`
	DBPath       string `envconfig:"FAUCET_DB_PATH" default:"./data/faucetd.sqlite"`
	Port         int    `envconfig:"FAUCET_PORT" default:"8080"`
	LogLevel     string `envconfig:"FAUCET_LOG_LEVEL" default:"info"`
	LogDir       string `envconfig:"FAUCET_LOG_DIR" default:"./logs"`

	PassportAPIKey   string `envconfig:"FAUCET_PASSPORT_API_KEY"`
	PassportScorerID string `envconfig:"FAUCET_PASSPORT_SCORER_ID"`
	PassportBaseURL  string `envconfig:"FAUCET_PASSPORT_BASE_URL" default:"https://api.scorer.gitcoin.co/registry"`

	ScoreThreshold   float64 `envconfig:"FAUCET_SCORE_THRESHOLD" default:"10"`
	ClaimWindowHours int     `envconfig:"FAUCET_CLAIM_WINDOW_HOURS" default:"24"`
	GasBoostPercent  int     `envconfig:"FAUCET_GAS_BOOST_PERCENT" default:"20"`
	TrustClientScore bool    `envconfig:"FAUCET_TRUST_CLIENT_SCORE" default:"false"`

	NetworksFile  string         `envconfig:"FAUCET_NETWORKS_FILE"`
	RPCOverrides  RPCOverrideMap `envconfig:"FAUCET_RPC_OVERRIDES"`
	AdminToken    string         `envconfig:"FAUCET_ADMIN_TOKEN"`
	AllowedOrigin string         `envconfig:"FAUCET_ALLOWED_ORIGIN" default:"*"`

	ClaimsPerMinute int `envconfig:"FAUCET_CLAIMS_PER_MINUTE" default:"6"`
}

// RPCOverrideMap holds per-chain RPC URL overrides keyed by decimal chain id.
// Parsed from "chainId=url,chainId=url"; URLs contain colons, so the default
// envconfig map syntax cannot be used.
type RPCOverrideMap map[string]string

// Decode implements envconfig.Decoder.
func (m *RPCOverrideMap) Decode(value string) error {
	out := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			return fmt.Errorf("invalid RPC override %q, want chainId=url", pair)
		}
		out[pair[:idx]] = pair[idx+1:]
	}
	*m = out
	return nil
}

// Load reads configuration from .env file (if present) then from environment variables.
// Environment variables override .env values.
func Load() (*Config, error) {
	// godotenv does NOT override already-set env vars, so real environment
	// variables take precedence over .env values.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("failed to load .env file", "error", err)
		} else {
			slog.Info("loaded .env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be 1-65535, got %d", ErrInvalidConfig, c.Port)
	}
	if c.ScoreThreshold < 0 {
		return fmt.Errorf("%w: score threshold must be >= 0, got %g", ErrInvalidConfig, c.ScoreThreshold)
	}
	if c.ClaimWindowHours < 1 {
		return fmt.Errorf("%w: claim window must be >= 1 hour, got %d", ErrInvalidConfig, c.ClaimWindowHours)
	}
	if c.GasBoostPercent < 0 || c.GasBoostPercent > 100 {
		return fmt.Errorf("%w: gas boost must be 0-100 percent, got %d", ErrInvalidConfig, c.GasBoostPercent)
	}
	if c.ClaimsPerMinute < 1 {
		return fmt.Errorf("%w: claims per minute must be >= 1, got %d", ErrInvalidConfig, c.ClaimsPerMinute)
	}
	return nil
}

// SignerConfigured reports whether a faucet signing credential is present.
// Claims must fail with a server configuration error when it is not.
func (c *Config) SignerConfigured() bool {
	return c.MnemonicFile != "" || c.PrivateKey != ""
}
