package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "hunter.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://places.googleapis.com/v1", cfg.Google.BaseURL)
	assert.Equal(t, 10.0, cfg.Google.RatePerSecond)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/engine.db
log:
  level: debug
  format: console
server:
  port: 9090
google:
  rate_per_second: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/engine.db", cfg.Store.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3.0, cfg.Google.RatePerSecond)
	// Defaults still apply for unset values
	assert.Equal(t, "https://places.googleapis.com/v1", cfg.Google.BaseURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0644))

	t.Setenv("HUNTER_STORE_DRIVER", "postgres")
	t.Setenv("HUNTER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("HUNTER_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func validConfig() *Config {
	return &Config{
		Store:     StoreConfig{Driver: "postgres", DatabaseURL: "postgres://localhost/hunter"},
		Google:    GoogleConfig{Key: "goog-key"},
		Anthropic: AnthropicConfig{Key: "sk-ant-key", Model: "claude-haiku-4-5-20251001"},
		Server:    ServerConfig{Port: 8080},
	}
}

func TestValidateServe_AllPresent(t *testing.T) {
	assert.NoError(t, validConfig().Validate("serve"))
}

func TestValidateServe_MissingFields(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Driver: "postgres"}}

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.key is required")
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "anthropic.key is required")
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateCompete_SQLiteDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store = StoreConfig{Driver: "sqlite", SQLitePath: "hunter.db"}

	assert.NoError(t, cfg.Validate("compete"))
}

func TestValidateCompete_UnsupportedDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("compete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestValidateRank_NeedsGenerator(t *testing.T) {
	cfg := validConfig()
	cfg.Anthropic.Key = ""

	err := cfg.Validate("rank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidateSearch_OnlyNeedsPlaces(t *testing.T) {
	cfg := &Config{Google: GoogleConfig{Key: "goog-key"}}
	assert.NoError(t, cfg.Validate("search"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validConfig().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
