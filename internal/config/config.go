// Package config loads server settings from defaults, an optional YAML file,
// a .env file, and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/creditledger/internal/credit"
)

// Config holds the server settings.
type Config struct {
	Addr      string        `yaml:"addr"`
	DBPath    string        `yaml:"db_path"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	LogLevel  string        `yaml:"log_level"`

	// BalancePolicy selects which transactions count towards balances.
	BalancePolicy credit.BalancePolicy `yaml:"balance_policy"`

	// RequestTTL is how long a requested transaction may wait for acceptance.
	// Zero keeps requests forever.
	RequestTTL     time.Duration `yaml:"request_ttl"`
	ExpiryInterval time.Duration `yaml:"expiry_interval"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DBPath:         "./data/ledger.db",
		TokenTTL:       24 * time.Hour,
		LogLevel:       "info",
		BalancePolicy:  credit.PolicyAccepted,
		ExpiryInterval: time.Minute,
	}
}

// Load builds the configuration. The YAML file named by CONFIG_FILE is read
// if set; a .env file in the working directory is read if present and never
// overrides variables already in the environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
		return nil
	}

	str("LEDGER_ADDR", &c.Addr)
	str("DB_PATH", &c.DBPath)
	str("JWT_SECRET", &c.JWTSecret)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("BALANCE_POLICY"); ok && v != "" {
		c.BalancePolicy = credit.BalancePolicy(strings.ToLower(v))
	}

	for key, dst := range map[string]*time.Duration{
		"TOKEN_TTL":       &c.TokenTTL,
		"REQUEST_TTL":     &c.RequestTTL,
		"EXPIRY_INTERVAL": &c.ExpiryInterval,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	policy, err := credit.ParseBalancePolicy(string(c.BalancePolicy))
	if err != nil {
		return err
	}
	c.BalancePolicy = policy
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.RequestTTL < 0 {
		return fmt.Errorf("request ttl must not be negative, got %s", c.RequestTTL)
	}
	if c.RequestTTL > 0 && c.ExpiryInterval <= 0 {
		return fmt.Errorf("expiry interval must be positive when request ttl is set, got %s", c.ExpiryInterval)
	}
	return nil
}
