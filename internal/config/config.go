package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StoreDriver identifies the local persistence backend
type StoreDriver string

const (
	StoreDriverBolt   StoreDriver = "bolt"
	StoreDriverSQLite StoreDriver = "sqlite"
)

// Config holds all application configuration
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Store    StoreConfig    `mapstructure:"store"`
	Enricher EnricherConfig `mapstructure:"enricher"`
	UI       UIConfig       `mapstructure:"ui"`
	Viewer   ViewerConfig   `mapstructure:"viewer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// APIConfig holds remote API configuration
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// StoreConfig holds local store configuration
type StoreConfig struct {
	Driver StoreDriver `mapstructure:"driver"` // "bolt" or "sqlite"
	Path   string      `mapstructure:"path"`   // Database file
}

// EnricherConfig holds episode enrichment configuration
type EnricherConfig struct {
	Concurrency int `mapstructure:"concurrency"` // Max parallel episode fetches
}

// UIConfig holds UI configuration
type UIConfig struct {
	PrefetchThreshold int `mapstructure:"prefetch_threshold"` // Rows from the end that trigger load-more
}

// ViewerConfig holds external image viewer configuration
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // Empty detects a viewer or uses the system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://rickandmortyapi.com/api",
			Timeout:   30 * time.Second,
			UserAgent: "rickdex",
		},
		Store: StoreConfig{
			Driver: StoreDriverBolt,
			Path:   filepath.Join(defaultDataPath(), "rickdex.db"),
		},
		Enricher: EnricherConfig{
			Concurrency: 8,
		},
		UI: UIConfig{
			PrefetchThreshold: 5,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "rickdex.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "rickdex")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "rickdex")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "rickdex")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "rickdex")
	}
}

// Load reads configuration from file and environment.
// An empty configFile searches the default locations; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides (RICKDEX_API_BASE_URL, ...)
	v.SetEnvPrefix("RICKDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.user_agent", d.API.UserAgent)

	v.SetDefault("store.driver", string(d.Store.Driver))
	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("enricher.concurrency", d.Enricher.Concurrency)

	v.SetDefault("ui.prefetch_threshold", d.UI.PrefetchThreshold)

	v.SetDefault("viewer.command", d.Viewer.Command)
	v.SetDefault("viewer.args", d.Viewer.Args)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverBolt, StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown store driver: %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if c.Enricher.Concurrency <= 0 {
		return fmt.Errorf("enricher.concurrency must be positive, got %d", c.Enricher.Concurrency)
	}
	if c.UI.PrefetchThreshold < 0 {
		return fmt.Errorf("ui.prefetch_threshold must not be negative, got %d", c.UI.PrefetchThreshold)
	}
	return nil
}

// FirstPageURL returns the well-known first page of the character listing
func (c *Config) FirstPageURL() string {
	return strings.TrimRight(c.API.BaseURL, "/") + "/character"
}

// ExpandHome expands a leading ~ in path
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
