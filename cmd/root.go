package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/cache"
	"github.com/streed/smart-notes/internal/config"
	"github.com/streed/smart-notes/internal/database"
	"github.com/streed/smart-notes/internal/logger"
	"github.com/streed/smart-notes/internal/models"
	"github.com/streed/smart-notes/internal/provider"
	"github.com/streed/smart-notes/internal/services"
)

var (
	db            *database.DB
	svc           *services.Services
	appConfig     *config.Config
	responseCache *cache.Store
	debugFlag     bool
	Version       = "dev" // Version is set from main.go
)

var rootCmd = &cobra.Command{
	Use:     "smart-notes",
	Short:   "Take notes, summarize them and study them as flashcards",
	Version: Version,
	Long: heredoc.Doc(`
		smart-notes stores notes and flashcards, summarizes and tags text with an
		optional AI provider (OpenRouter or Ollama) and falls back to rule-based
		processing whenever the provider is unavailable.

		First time users should run 'smart-notes init' to set up the configuration.
	`),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initAppConfig(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeResources()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// skipsInitialization reports whether cmd works without a loaded
// configuration and open database. Subcommands inherit the decision of
// their top-level command.
func skipsInitialization(cmd *cobra.Command) bool {
	top := cmd
	for top.HasParent() && top.Parent() != cmd.Root() {
		top = top.Parent()
	}
	if !top.HasParent() {
		return true
	}
	switch top.Name() {
	case "init", "config", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return false
}

func initAppConfig(cmd *cobra.Command) error {
	if debugFlag {
		logger.SetDebugMode(true)
	}
	if skipsInitialization(cmd) {
		return nil
	}

	var err error
	appConfig, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w (run 'smart-notes init' to set it up)", err)
	}

	// Enable debug mode from flag or config
	if debugFlag || appConfig.Debug {
		logger.SetDebugMode(true)
		logger.Debug("Configuration loaded from: %s", func() string {
			path, _ := config.GetConfigPath()
			return path
		}())
		logger.Debug("Data directory: %s", appConfig.DataDirectory)
		logger.Debug("Provider: %s", appConfig.Provider)
		logger.Debug("Model: %s", appConfig.Model)
		logger.Debug("Cache directory: %s", appConfig.CacheDirectory)
	}

	db, err = database.New(appConfig)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	p, err := buildProvider(appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring AI provider: %v\n", err)
		fmt.Fprintf(os.Stderr, "Continuing with rule-based processing only.\n")
		p = provider.Disabled()
	}

	svc = services.NewServices(models.NewStore(db.Conn()), p, services.Options{
		ProviderTimeout: appConfig.ProviderTimeout(),
		Workers:         appConfig.BatchWorkers,
		SearchLimit:     appConfig.MaxSearchResults,
	})
	return nil
}

// buildProvider creates the configured provider, wrapped with the response
// cache when a cache directory is set.
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	pc, err := cfg.ProviderConfig()
	if err != nil {
		return nil, err
	}
	p, err := provider.New(pc)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using provider %s (model %q)", p.Kind(), p.Model())

	if cfg.CacheDirectory == "" || p.Kind() == provider.KindNone {
		return p, nil
	}
	store, err := cache.Open(cfg.CacheDirectory)
	if err != nil {
		logger.Warn("Response cache unavailable: %v", err)
		return p, nil
	}
	responseCache = store
	return provider.Cached(p, store, cfg.CacheTTL()), nil
}

func closeResources() error {
	var firstErr error
	if responseCache != nil {
		if err := responseCache.Close(); err != nil {
			firstErr = err
		}
		responseCache = nil
	}
	if db != nil {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		db = nil
	}
	return firstErr
}

// requireServices fails commands that need the database when initialization
// was skipped.
func requireServices() error {
	if svc == nil {
		return fmt.Errorf("smart-notes is not initialized, run 'smart-notes init' first")
	}
	return nil
}
