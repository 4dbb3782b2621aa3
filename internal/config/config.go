// Package config loads vizinho settings from config.yaml, .env and
// VIZINHO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmcdole/vizinho/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. VIZINHO_REPOSITORY_URL.
const EnvPrefix = "VIZINHO"

// Config holds all application configuration
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	User       UserConfig       `mapstructure:"user"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Filters    FiltersConfig    `mapstructure:"filters"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	DevServer  DevServerConfig  `mapstructure:"devserver"`
}

// RepositoryConfig holds the remote listing store connection
type RepositoryConfig struct {
	URL     string        `mapstructure:"url"` // Empty uses the built-in fixture repository
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UserConfig identifies the signed-in resident
type UserConfig struct {
	ID            string `mapstructure:"id"`
	CondominiumID string `mapstructure:"condominium_id"`
}

// RetryConfig holds listing retry policy
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

// FiltersConfig holds filter persistence settings
type FiltersConfig struct {
	StorePath       string  `mapstructure:"store_path"` // Empty keeps filters in memory
	DefaultMaxPrice float64 `mapstructure:"default_max_price"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // Empty logs to stderr
	Level string `mapstructure:"level"`
}

// DevServerConfig holds the fixture server settings
type DevServerConfig struct {
	Addr     string  `mapstructure:"addr"`
	FailRate float64 `mapstructure:"fail_rate"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			Timeout: 10 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
		Filters: FiltersConfig{
			StorePath:       defaultDataPath(),
			DefaultMaxPrice: domain.DefaultMaxPrice,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "vizinho.log"),
			Level: "INFO",
		},
		DevServer: DevServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "vizinho")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vizinho")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vizinho")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "vizinho")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("repository.url", d.Repository.URL)
	v.SetDefault("repository.token", d.Repository.Token)
	v.SetDefault("repository.timeout", d.Repository.Timeout)
	v.SetDefault("user.id", d.User.ID)
	v.SetDefault("user.condominium_id", d.User.CondominiumID)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.base_delay", d.Retry.BaseDelay)
	v.SetDefault("filters.store_path", d.Filters.StorePath)
	v.SetDefault("filters.default_max_price", d.Filters.DefaultMaxPrice)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("devserver.addr", d.DevServer.Addr)
	v.SetDefault("devserver.fail_rate", d.DevServer.FailRate)

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path, or from config.yaml in the default
// config directory or the working directory when path is empty. A .env
// file in the working directory is loaded into the environment first.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Filters.StorePath = expandHome(cfg.Filters.StorePath)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, or to the default config file when path
// is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	// Set fields individually to ensure correct key names (snake_case)
	v.Set("repository.url", cfg.Repository.URL)
	v.Set("repository.token", cfg.Repository.Token)
	v.Set("repository.timeout", cfg.Repository.Timeout.String())
	v.Set("user.id", cfg.User.ID)
	v.Set("user.condominium_id", cfg.User.CondominiumID)
	v.Set("retry.max_attempts", cfg.Retry.MaxAttempts)
	v.Set("retry.base_delay", cfg.Retry.BaseDelay.String())
	v.Set("filters.store_path", cfg.Filters.StorePath)
	v.Set("filters.default_max_price", cfg.Filters.DefaultMaxPrice)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("devserver.addr", cfg.DevServer.Addr)
	v.Set("devserver.fail_rate", cfg.DevServer.FailRate)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks value ranges. Errors wrap domain.ErrValidation.
func (c *Config) Validate() error {
	var errs []error
	if c.Repository.URL != "" {
		u, err := url.Parse(c.Repository.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("repository.url %q must be an http(s) URL", c.Repository.URL))
		}
	}
	if c.Repository.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("repository.timeout must be positive"))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must not be negative"))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry.base_delay must be positive"))
	}
	if c.Filters.DefaultMaxPrice <= 0 {
		errs = append(errs, fmt.Errorf("filters.default_max_price must be positive"))
	}
	if c.DevServer.FailRate < 0 || c.DevServer.FailRate > 1 {
		errs = append(errs, fmt.Errorf("devserver.fail_rate must be within [0, 1]"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return nil
}

// UsesFixtures reports whether no remote repository is configured.
func (c *Config) UsesFixtures() bool {
	return c.Repository.URL == ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
