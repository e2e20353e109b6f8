package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	interrors "github.com/streed/smart-notes/internal/errors"
	"github.com/streed/smart-notes/internal/provider"
)

func TestGetDefaultDataDirectory(t *testing.T) {
	tests := []struct {
		name     string
		xdgHome  string
		expected string
	}{
		{
			name:     "With XDG_DATA_HOME set",
			xdgHome:  "/custom/data",
			expected: "/custom/data/smart-notes",
		},
		{
			name:    "Without XDG_DATA_HOME",
			xdgHome: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_DATA_HOME", tt.xdgHome)
			result := GetDefaultDataDirectory()

			expected := tt.expected
			if tt.xdgHome == "" {
				homeDir, _ := os.UserHomeDir()
				expected = filepath.Join(homeDir, ".local", "share", "smart-notes")
			}
			if result != expected {
				t.Errorf("Expected %s, got %s", expected, result)
			}
		})
	}
}

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SMART_NOTES_API_KEY", "OPENROUTER_API_KEY",
		"SMART_NOTES_MODEL", "AI_MODEL",
		"SMART_NOTES_REFERER", "API_REFERER",
		"SMART_NOTES_PROVIDER", "SMART_NOTES_DEBUG",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	clearProviderEnv(t)
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	configFile := filepath.Join(tempDir, "smart-notes", "config.json")

	dataDir := filepath.Join(tempDir, "test-data")
	testConfig := &Config{
		DataDirectory:          dataDir,
		DatabasePath:           filepath.Join(dataDir, "notes.db"),
		Provider:               "ollama",
		ProviderEndpoint:       "http://test:11434/v1",
		Model:                  "test-model",
		Referer:                "https://example.test",
		AppTitle:               "Test Notes",
		ProviderTimeoutSeconds: 12,
		CacheDirectory:         filepath.Join(dataDir, "cache"),
		CacheTTLMinutes:        5,
		Debug:                  true,
		BatchWorkers:           2,
		MaxSearchResults:       7,
	}

	if err := Save(testConfig); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configFile)
	if err != nil {
		t.Fatal("Config file was not created")
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected config mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if *loaded != *testConfig {
		t.Errorf("Loaded config mismatch:\n got  %+v\n want %+v", *loaded, *testConfig)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearProviderEnv(t)
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, "data"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load without a config file failed: %v", err)
	}

	expectedDir := filepath.Join(tempDir, "data", "smart-notes")
	if cfg.DataDirectory != expectedDir {
		t.Errorf("Expected DataDirectory %s, got %s", expectedDir, cfg.DataDirectory)
	}
	if cfg.GetDatabasePath() != filepath.Join(expectedDir, "notes.db") {
		t.Errorf("Unexpected database path %s", cfg.GetDatabasePath())
	}
	if cfg.Provider != "openrouter" {
		t.Errorf("Expected openrouter provider, got %s", cfg.Provider)
	}
	if cfg.ProviderTimeout() != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.ProviderTimeout())
	}
	if cfg.CacheTTL() != 24*time.Hour {
		t.Errorf("Expected 24h cache TTL, got %v", cfg.CacheTTL())
	}
	if cfg.BatchWorkers != 4 || cfg.MaxSearchResults != 10 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestLoadPartialFile(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"provider": "none", "max_search_results": 3}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Provider != "none" || cfg.MaxSearchResults != 3 {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.ProviderTimeoutSeconds != 30 {
		t.Errorf("Expected default timeout, got %d", cfg.ProviderTimeoutSeconds)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("Expected error for malformed config file")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"model": "from-file"}`), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENROUTER_API_KEY", "sk-legacy")
	t.Setenv("AI_MODEL", "legacy-model")
	t.Setenv("SMART_NOTES_PROVIDER", "ollama")
	t.Setenv("SMART_NOTES_DEBUG", "true")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.APIKey != "sk-legacy" {
		t.Errorf("Expected API key from OPENROUTER_API_KEY, got %q", cfg.APIKey)
	}
	if cfg.Model != "legacy-model" {
		t.Errorf("Expected model from AI_MODEL, got %q", cfg.Model)
	}
	if cfg.Provider != "ollama" || !cfg.Debug {
		t.Errorf("Prefixed overrides not applied: %+v", cfg)
	}

	t.Setenv("SMART_NOTES_API_KEY", "sk-prefixed")
	cfg, _ = LoadFile(path)
	if cfg.APIKey != "sk-prefixed" {
		t.Errorf("Prefixed variable should win, got %q", cfg.APIKey)
	}
}

func TestInitializeConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	dataDir := filepath.Join(tempDir, "data")
	cfg, err := InitializeConfig(dataDir, "ollama", "")
	if err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if cfg.DataDirectory != dataDir {
		t.Errorf("Expected DataDirectory %s, got %s", dataDir, cfg.DataDirectory)
	}
	if cfg.DatabasePath != filepath.Join(dataDir, "notes.db") {
		t.Errorf("Unexpected DatabasePath %s", cfg.DatabasePath)
	}
	if cfg.CacheDirectory != filepath.Join(dataDir, "cache") {
		t.Errorf("Unexpected CacheDirectory %s", cfg.CacheDirectory)
	}
	if cfg.Provider != "ollama" {
		t.Errorf("Expected ollama provider, got %s", cfg.Provider)
	}
	if _, err := os.Stat(dataDir); err != nil {
		t.Errorf("Data directory was not created: %v", err)
	}

	if _, err := InitializeConfig(dataDir, "bogus", ""); !errors.Is(err, interrors.ErrUnknownProvider) {
		t.Errorf("Expected ErrUnknownProvider, got %v", err)
	}
}

func TestGetDatabasePath(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name:     "Explicit database path",
			config:   Config{DataDirectory: "/data", DatabasePath: "/custom/notes.db"},
			expected: "/custom/notes.db",
		},
		{
			name:     "Derived from data directory",
			config:   Config{DataDirectory: "/data"},
			expected: "/data/notes.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.GetDatabasePath(); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestProviderConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantKind  provider.Kind
		wantModel string
		wantErr   bool
	}{
		{
			name:      "OpenRouter with key",
			config:    Config{Provider: "openrouter", APIKey: "sk-test"},
			wantKind:  provider.KindOpenRouter,
			wantModel: provider.DefaultModel,
		},
		{
			name:     "OpenRouter without key degrades to none",
			config:   Config{Provider: "openrouter"},
			wantKind: provider.KindNone,
		},
		{
			name:      "Ollama with model",
			config:    Config{Provider: "ollama", Model: "mistral"},
			wantKind:  provider.KindOllama,
			wantModel: "mistral",
		},
		{
			name:    "Unknown provider",
			config:  Config{Provider: "watson"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := tt.config.ProviderConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if pc.Kind != tt.wantKind {
				t.Errorf("Expected kind %v, got %v", tt.wantKind, pc.Kind)
			}
			if pc.Model != tt.wantModel {
				t.Errorf("Expected model %q, got %q", tt.wantModel, pc.Model)
			}
			if err := pc.Validate(); err != nil {
				t.Errorf("Resolved config should validate: %v", err)
			}
		})
	}
}

func TestSetAndGet(t *testing.T) {
	cfg := getDefaultConfig()

	valid := []struct {
		key, value, want string
	}{
		{"provider", "ollama", "ollama"},
		{"model", "llama3", "llama3"},
		{"debug", "yes", "true"},
		{"debug", "0", "false"},
		{"provider-timeout", "45", "45"},
		{"batch-workers", "8", "8"},
		{"api-key", "sk-or-1234567890", "sk-o...7890"},
		{"data-dir", "/tmp/notes", "/tmp/notes"},
	}
	for _, tt := range valid {
		if err := cfg.Set(tt.key, tt.value); err != nil {
			t.Errorf("Set(%s, %s) failed: %v", tt.key, tt.value, err)
			continue
		}
		if got, _ := cfg.Get(tt.key); got != tt.want {
			t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}
	if cfg.DatabasePath != "/tmp/notes/notes.db" {
		t.Errorf("data-dir should reset the database path, got %s", cfg.DatabasePath)
	}

	invalid := []struct {
		key, value string
		want       error
	}{
		{"debug", "maybe", interrors.ErrInvalidBoolean},
		{"batch-workers", "-1", interrors.ErrInvalidNumber},
		{"cache-ttl", "soon", interrors.ErrInvalidNumber},
		{"provider", "watson", interrors.ErrUnknownProvider},
		{"vector-dimensions", "384", interrors.ErrUnknownConfigKey},
	}
	for _, tt := range invalid {
		if err := cfg.Set(tt.key, tt.value); !errors.Is(err, tt.want) {
			t.Errorf("Set(%s, %s) = %v, want %v", tt.key, tt.value, err, tt.want)
		}
	}

	for _, key := range Keys {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%s) failed: %v", key, err)
		}
	}
}
