package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/streed/smart-notes/internal/constants"
	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/provider"
)

const appName = "smart-notes"

type Config struct {
	DataDirectory string `json:"data_directory" mapstructure:"data_directory"`
	DatabasePath  string `json:"database_path,omitempty" mapstructure:"database_path"`

	// Language-model provider
	Provider               string `json:"provider" mapstructure:"provider"`
	ProviderEndpoint       string `json:"provider_endpoint,omitempty" mapstructure:"provider_endpoint"`
	APIKey                 string `json:"api_key,omitempty" mapstructure:"api_key"`
	Model                  string `json:"model,omitempty" mapstructure:"model"`
	Referer                string `json:"referer,omitempty" mapstructure:"referer"`
	AppTitle               string `json:"app_title,omitempty" mapstructure:"app_title"`
	ProviderTimeoutSeconds int    `json:"provider_timeout_seconds" mapstructure:"provider_timeout_seconds"`

	// Response cache; an empty directory disables it
	CacheDirectory  string `json:"cache_directory,omitempty" mapstructure:"cache_directory"`
	CacheTTLMinutes int    `json:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`

	Debug            bool `json:"debug" mapstructure:"debug"`
	BatchWorkers     int  `json:"batch_workers" mapstructure:"batch_workers"`
	MaxSearchResults int  `json:"max_search_results" mapstructure:"max_search_results"`
}

// getDefaultConfig returns a fresh copy of the default configuration
func getDefaultConfig() Config {
	return Config{
		DataDirectory:          "", // Will be set to ~/.local/share/smart-notes
		DatabasePath:           "", // Will be set to DataDirectory/notes.db
		Provider:               "openrouter",
		Referer:                provider.DefaultReferer,
		AppTitle:               provider.DefaultTitle,
		ProviderTimeoutSeconds: 30,
		CacheTTLMinutes:        24 * 60,
		BatchWorkers:           4,
		MaxSearchResults:       constants.DefaultSearchLimit,
	}
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, appName, "config.json"), nil
}

func GetDefaultDataDirectory() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "."+appName)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, appName)
}

// newViper registers defaults and environment bindings. Environment
// variables use the SMART_NOTES_ prefix; the API key, model and referer
// also honour their historical unprefixed names.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")

	defaults := getDefaultConfig()
	v.SetDefault("data_directory", defaults.DataDirectory)
	v.SetDefault("database_path", defaults.DatabasePath)
	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("provider_endpoint", defaults.ProviderEndpoint)
	v.SetDefault("api_key", defaults.APIKey)
	v.SetDefault("model", defaults.Model)
	v.SetDefault("referer", defaults.Referer)
	v.SetDefault("app_title", defaults.AppTitle)
	v.SetDefault("provider_timeout_seconds", defaults.ProviderTimeoutSeconds)
	v.SetDefault("cache_directory", defaults.CacheDirectory)
	v.SetDefault("cache_ttl_minutes", defaults.CacheTTLMinutes)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("batch_workers", defaults.BatchWorkers)
	v.SetDefault("max_search_results", defaults.MaxSearchResults)

	v.SetEnvPrefix("SMART_NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", "SMART_NOTES_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("model", "SMART_NOTES_MODEL", "AI_MODEL")
	_ = v.BindEnv("referer", "SMART_NOTES_REFERER", "API_REFERER")

	return v
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile reads the configuration at path. A missing file yields the
// defaults with environment overrides applied.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := getDefaultConfig()
	if c.DataDirectory == "" {
		c.DataDirectory = GetDefaultDataDirectory()
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDirectory, "notes.db")
	}
	if c.ProviderTimeoutSeconds <= 0 {
		c.ProviderTimeoutSeconds = defaults.ProviderTimeoutSeconds
	}
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = defaults.BatchWorkers
	}
	if c.MaxSearchResults <= 0 {
		c.MaxSearchResults = defaults.MaxSearchResults
	}
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(cfg, configPath)
}

func SaveFile(cfg *Config, configPath string) error {
	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if cfg.DataDirectory != "" {
		if err := os.MkdirAll(cfg.DataDirectory, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write config file with secure permissions, it may hold an API key
	if err := os.WriteFile(configPath, data, constants.ConfigFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func InitializeConfig(dataDir, providerKind, apiKey string) (*Config, error) {
	cfg := getDefaultConfig()

	if dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		cfg.DataDirectory = GetDefaultDataDirectory()
	}
	cfg.DatabasePath = filepath.Join(cfg.DataDirectory, "notes.db")
	cfg.CacheDirectory = filepath.Join(cfg.DataDirectory, "cache")

	if providerKind != "" {
		if _, err := provider.ParseKind(providerKind); err != nil {
			return nil, err
		}
		cfg.Provider = providerKind
	}
	cfg.APIKey = apiKey

	if err := Save(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) GetDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDirectory, "notes.db")
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// ResolveProviderKind parses the configured provider name.
func (c *Config) ResolveProviderKind() (provider.Kind, error) {
	return provider.ParseKind(c.Provider)
}

// ProviderConfig builds the provider settings. An OpenRouter configuration
// without an API key resolves to no provider so callers degrade to the
// rule-based paths instead of failing.
func (c *Config) ProviderConfig() (*provider.Config, error) {
	kind, err := c.ResolveProviderKind()
	if err != nil {
		return nil, err
	}
	if kind == provider.KindOpenRouter && c.APIKey == "" {
		kind = provider.KindNone
	}

	pc := provider.DefaultConfig()
	pc.Kind = kind
	pc.Endpoint = c.ProviderEndpoint
	pc.APIKey = c.APIKey
	pc.Model = c.Model
	if c.Referer != "" {
		pc.Referer = c.Referer
	}
	if c.AppTitle != "" {
		pc.Title = c.AppTitle
	}
	pc.Normalize()
	return pc, nil
}

// Keys lists the names accepted by Set and Get.
var Keys = []string{
	"data-dir",
	"provider",
	"provider-endpoint",
	"api-key",
	"model",
	"referer",
	"app-title",
	"provider-timeout",
	"cache-dir",
	"cache-ttl",
	"debug",
	"batch-workers",
	"max-search-results",
}

// Set assigns a configuration value by key, validating its type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "data-dir":
		c.DataDirectory = value
		c.DatabasePath = filepath.Join(value, "notes.db")
	case "provider":
		if _, err := provider.ParseKind(value); err != nil {
			return err
		}
		c.Provider = value
	case "provider-endpoint":
		c.ProviderEndpoint = value
	case "api-key":
		c.APIKey = value
	case "model":
		c.Model = value
	case "referer":
		c.Referer = value
	case "app-title":
		c.AppTitle = value
	case "provider-timeout":
		return setPositiveInt(&c.ProviderTimeoutSeconds, value)
	case "cache-dir":
		c.CacheDirectory = value
	case "cache-ttl":
		return setPositiveInt(&c.CacheTTLMinutes, value)
	case "debug":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		c.Debug = b
	case "batch-workers":
		return setPositiveInt(&c.BatchWorkers, value)
	case "max-search-results":
		return setPositiveInt(&c.MaxSearchResults, value)
	default:
		return fmt.Errorf("%w: %s", interrors.ErrUnknownConfigKey, key)
	}
	return nil
}

// Get returns a configuration value by key. The API key is masked.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "data-dir":
		return c.DataDirectory, nil
	case "provider":
		return c.Provider, nil
	case "provider-endpoint":
		return c.ProviderEndpoint, nil
	case "api-key":
		return maskSecret(c.APIKey), nil
	case "model":
		return c.Model, nil
	case "referer":
		return c.Referer, nil
	case "app-title":
		return c.AppTitle, nil
	case "provider-timeout":
		return strconv.Itoa(c.ProviderTimeoutSeconds), nil
	case "cache-dir":
		return c.CacheDirectory, nil
	case "cache-ttl":
		return strconv.Itoa(c.CacheTTLMinutes), nil
	case "debug":
		return strconv.FormatBool(c.Debug), nil
	case "batch-workers":
		return strconv.Itoa(c.BatchWorkers), nil
	case "max-search-results":
		return strconv.Itoa(c.MaxSearchResults), nil
	default:
		return "", fmt.Errorf("%w: %s", interrors.ErrUnknownConfigKey, key)
	}
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case constants.BoolTrue, constants.BoolOne, constants.BoolYes:
		return true, nil
	case constants.BoolFalse, constants.BoolZero, constants.BoolNo:
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", interrors.ErrInvalidBoolean, value)
}

func setPositiveInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: %s", interrors.ErrInvalidNumber, value)
	}
	*dst = n
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
