package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/creditledger/internal/credit"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"LEDGER_ADDR":     ":9090",
		"DB_PATH":         "/tmp/l.db",
		"JWT_SECRET":      "s3cret",
		"TOKEN_TTL":       "2h",
		"BALANCE_POLICY":  "ALL",
		"REQUEST_TTL":     "72h",
		"EXPIRY_INTERVAL": "30s",
		"LOG_LEVEL":       "debug",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/l.db", cfg.DBPath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, credit.PolicyAll, cfg.BalancePolicy)
	assert.Equal(t, 72*time.Hour, cfg.RequestTTL)
	assert.Equal(t, 30*time.Second, cfg.ExpiryInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnvBadDuration(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{"REQUEST_TTL": "soon"}))
	assert.ErrorContains(t, err, "REQUEST_TTL")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.JWTSecret = "x"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with secret", func(*Config) {}, false},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"unknown policy", func(c *Config) { c.BalancePolicy = "some" }, true},
		{"empty policy selects accepted", func(c *Config) { c.BalancePolicy = "" }, false},
		{"negative request ttl", func(c *Config) { c.RequestTTL = -time.Second }, true},
		{"ttl without interval", func(c *Config) { c.RequestTTL = time.Hour; c.ExpiryInterval = 0 }, true},
		{"zero token ttl", func(c *Config) { c.TokenTTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, credit.PolicyAccepted, cfg.BalancePolicy)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7000"
jwt_secret: from-file
balance_policy: all
request_ttl: 48h
`), 0o600))

	// No .env in the temp dir.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	for _, key := range []string{"DB_PATH", "JWT_SECRET", "BALANCE_POLICY", "REQUEST_TTL", "TOKEN_TTL", "EXPIRY_INTERVAL"} {
		t.Setenv(key, "")
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LEDGER_ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7001", cfg.Addr, "environment overrides file")
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, credit.PolicyAll, cfg.BalancePolicy)
	assert.Equal(t, 48*time.Hour, cfg.RequestTTL)
	assert.Equal(t, "./data/ledger.db", cfg.DBPath, "default kept")
}
