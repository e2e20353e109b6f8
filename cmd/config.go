package cmd

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage smart-notes configuration",
	Long: heredoc.Doc(`
		View and manage smart-notes configuration settings.

		Settings can also be overridden with SMART_NOTES_* environment variables,
		for example SMART_NOTES_PROVIDER=ollama. OPENROUTER_API_KEY is honored
		for the API key.
	`),
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: heredoc.Doc(`
		Set a specific configuration value.

		Available keys:
		  data-dir             Data directory for the notes database
		  provider             AI provider: openrouter, ollama or none
		  provider-endpoint    Provider base URL (defaults per provider)
		  api-key              OpenRouter API key
		  model                Model name sent to the provider
		  referer              HTTP-Referer header sent to OpenRouter
		  app-title            X-Title header sent to OpenRouter
		  provider-timeout     Seconds to wait for a provider response
		  cache-dir            Response cache directory (empty disables caching)
		  cache-ttl            Minutes a cached response stays valid
		  debug                Enable debug logging (true/false)
		  batch-workers        Notes analyzed concurrently by 'analyze'
		  max-search-results   Default search result limit
	`),
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println(heading("Smart Notes Configuration"))
	fmt.Println(label(fmt.Sprintf("%-19s", "config file"), configPath))
	fmt.Println(label(fmt.Sprintf("%-19s", "database"), cfg.GetDatabasePath()))
	for _, key := range config.Keys {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Println(label(fmt.Sprintf("%-19s", key), value))
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println(configPath)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if strings.HasSuffix(key, "-dir") && value != "" {
		value = expandPath(value)
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	shown, _ := cfg.Get(key)
	fmt.Printf("Configuration updated: %s = %s\n", key, shown)
	return nil
}
