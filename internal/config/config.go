package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// AnthropicConfig holds Anthropic API settings for query generation.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// EngineConfig holds tunables for the selection and ranking engines.
type EngineConfig struct {
	CategoryOverridesPath string `yaml:"category_overrides_path" mapstructure:"category_overrides_path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "hunter.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google.rate_per_second", 10)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a given mode needs. All problems are
// aggregated into one error so operators can fix them in a single pass.
func (c *Config) Validate(mode string) error {
	var problems []string

	requirePlaces := func() {
		if c.Google.Key == "" {
			problems = append(problems, "google.key is required")
		}
	}
	requireStore := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required")
			}
		case "sqlite":
			if c.Store.SQLitePath == "" {
				problems = append(problems, "store.sqlite_path is required")
			}
		default:
			problems = append(problems, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
		}
	}
	requireGenerator := func() {
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	}

	switch mode {
	case "compete":
		requirePlaces()
		requireStore()
	case "search":
		requirePlaces()
	case "rank":
		requirePlaces()
		requireGenerator()
	case "serve":
		requirePlaces()
		requireStore()
		requireGenerator()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
